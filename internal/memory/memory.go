// Package memory reads the agent's short- and long-term memory from the store,
// extracts identity facts from user messages, and writes periodic summaries.
package memory

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rcliao/persona-agent/internal/model"
	"github.com/rcliao/persona-agent/internal/store"
)

const (
	// ShortTermWindow is the number of recent exchanges shown in prompts.
	ShortTermWindow = 3
	// SummaryEvery is the exchange count period that triggers a summary.
	SummaryEvery = 10
	// SummaryLineLimit caps each side of a summary bullet, in characters.
	SummaryLineLimit = 120
	// SummaryHeader starts every stored summary.
	SummaryHeader = "Recent trajectory:"
)

type factPattern struct {
	key string
	re  *regexp.Regexp
}

// Trigger phrases match case-insensitively. The name capture stays
// case-sensitive so "I am tired" does not record a name.
var factPatterns = []factPattern{
	{"name", regexp.MustCompile(`\b(?i:my name is|i am|i'm)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)},
	{"location", regexp.MustCompile(`(?i)\b(?:i live in|i'm from|i am from)\s+([A-Za-z\s]+)`)},
	{"job", regexp.MustCompile(`(?i)\b(?:i work as|i am a|i'm a)\s+([A-Za-z\s]+)`)},
	{"likes", regexp.MustCompile(`(?i)\b(?:i like|i love)\s+([A-Za-z0-9\s,]+)`)},
}

var spaceRun = regexp.MustCompile(`\s+`)

// Manager is the agent's memory front end over a Store.
type Manager struct {
	store store.Store
	log   zerolog.Logger
}

// NewManager wraps st.
func NewManager(st store.Store, log zerolog.Logger) *Manager {
	return &Manager{store: st, log: log}
}

// ShortTerm returns the last few exchanges, oldest first.
func (m *Manager) ShortTerm(ctx context.Context) ([]model.Exchange, error) {
	return m.store.RecentExchanges(ctx, ShortTermWindow)
}

// IdentityFacts returns every known fact sorted by key.
func (m *Manager) IdentityFacts(ctx context.Context) ([]model.IdentityFact, error) {
	return m.store.IdentityFacts(ctx)
}

// LatestSummary returns the newest long-term summary or "".
func (m *Manager) LatestSummary(ctx context.Context) (string, error) {
	return m.store.LatestSummary(ctx)
}

// ExtractIdentityFacts pulls stable user facts out of a message. Each pattern
// yields at most one fact; a "favorite <thing>: <value>" message adds its
// own key.
func ExtractIdentityFacts(message string) map[string]string {
	text := strings.TrimSpace(message)
	facts := map[string]string{}

	for _, p := range factPatterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value := strings.Trim(spaceRun.ReplaceAllString(match[1], " "), " .,!?")
		if value != "" {
			facts[p.key] = value
		}
	}

	if strings.Contains(strings.ToLower(text), "favorite") {
		if left, right, ok := strings.Cut(text, ":"); ok {
			key := strings.ToLower(strings.TrimSpace(left))
			value := strings.TrimSpace(right)
			if strings.HasPrefix(key, "favorite") && value != "" {
				facts[strings.ReplaceAll(key, " ", "_")] = value
			}
		}
	}

	return facts
}

// MaybeStoreSummary stores and returns a summary of the last SummaryEvery
// exchanges when the exchange count is a positive multiple of SummaryEvery.
// Otherwise it returns "".
func (m *Manager) MaybeStoreSummary(ctx context.Context) (string, error) {
	count, err := m.store.ExchangeCount(ctx)
	if err != nil {
		return "", err
	}
	if count == 0 || count%SummaryEvery != 0 {
		return "", nil
	}

	exchanges, err := m.store.RecentExchanges(ctx, SummaryEvery)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(exchanges)+1)
	lines = append(lines, SummaryHeader)
	for _, e := range exchanges {
		lines = append(lines, fmt.Sprintf("- User: %s | Assistant: %s",
			summaryLine(e.UserMessage), summaryLine(e.AssistantReply)))
	}
	summary := strings.Join(lines, "\n")

	if err := m.store.AddSummary(ctx, summary, count); err != nil {
		return "", err
	}
	m.log.Info().Int("turn_end", count).Int("exchanges", len(exchanges)).Msg("stored long-term summary")
	return summary, nil
}

func summaryLine(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	if r := []rune(s); len(r) > SummaryLineLimit {
		s = string(r[:SummaryLineLimit])
	}
	return s
}
