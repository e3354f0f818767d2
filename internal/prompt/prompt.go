// Package prompt assembles the generation prompt from the identity document
// and the agent's memory.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/rcliao/persona-agent/internal/model"
)

// Placeholder lines rendered for empty sections.
const (
	NoFacts     = "- No stable facts yet."
	NoSummary   = "No long-term summary yet."
	NoShortTerm = "No recent exchange history."
	Instruction = "Respond helpfully and naturally."
)

// Input is everything a prompt is built from besides the identity document.
type Input struct {
	UserMessage string
	ShortTerm   []model.Exchange     // oldest first
	Facts       []model.IdentityFact // sorted by key
	Summary     string
}

// Builder renders prompts seeded with the identity document at IdentityPath.
type Builder struct {
	IdentityPath string
}

// IdentityCore returns the trimmed identity document.
func (b *Builder) IdentityCore() (string, error) {
	data, err := os.ReadFile(b.IdentityPath)
	if err != nil {
		return "", fmt.Errorf("read identity: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Build reads the identity document and renders the prompt.
func (b *Builder) Build(in Input) (string, error) {
	identity, err := b.IdentityCore()
	if err != nil {
		return "", err
	}
	return Render(identity, in), nil
}

// Render lays out the prompt. The layout is consumed verbatim by the
// generator and must stay stable.
func Render(identity string, in Input) string {
	var facts []string
	for _, f := range in.Facts {
		facts = append(facts, fmt.Sprintf("- %s: %s", f.Key, f.Value))
	}
	factsBlock := strings.Join(facts, "\n")
	if factsBlock == "" {
		factsBlock = NoFacts
	}

	summaryBlock := strings.TrimSpace(in.Summary)
	if summaryBlock == "" {
		summaryBlock = NoSummary
	}

	var stm []string
	for _, e := range in.ShortTerm {
		stm = append(stm, "User: "+e.UserMessage, "Assistant: "+e.AssistantReply)
	}
	shortTermBlock := strings.Join(stm, "\n")
	if shortTermBlock == "" {
		shortTermBlock = NoShortTerm
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(identity))
	sb.WriteString("\n\nKnown about user:\n")
	sb.WriteString(factsBlock)
	sb.WriteString("\n\nLong-term summary:\n")
	sb.WriteString(summaryBlock)
	sb.WriteString("\n\nShort-term memory:\n")
	sb.WriteString(shortTermBlock)
	sb.WriteString("\n\n")
	sb.WriteString(Instruction)
	sb.WriteString("\nUser: ")
	sb.WriteString(in.UserMessage)
	sb.WriteString("\nAssistant:")
	return sb.String()
}
