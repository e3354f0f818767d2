package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rcliao/persona-agent/internal/model"
)

// MemStore is an in-memory Store with the same observable semantics as
// SQLiteStore. Nothing survives Close.
type MemStore struct {
	mu        sync.Mutex
	exchanges []model.Exchange
	facts     map[string]model.IdentityFact
	summaries []model.Summary
	state     map[string]model.StateEntry
	closed    bool
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		facts: map[string]model.IdentityFact{},
		state: map[string]model.StateEntry{},
	}
}

func (m *MemStore) AddExchange(_ context.Context, user, assistant string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.exchanges = append(m.exchanges, model.Exchange{
		ID:             int64(len(m.exchanges) + 1),
		UserMessage:    user,
		AssistantReply: assistant,
		CreatedAt:      time.Now().UTC(),
	})
	return nil
}

func (m *MemStore) RecentExchanges(_ context.Context, limit int) ([]model.Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return nil, nil
	}
	start := len(m.exchanges) - limit
	if start < 0 {
		start = 0
	}
	out := make([]model.Exchange, len(m.exchanges)-start)
	copy(out, m.exchanges[start:])
	return out, nil
}

func (m *MemStore) ExchangeCount(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	return len(m.exchanges), nil
}

func (m *MemStore) UpsertIdentityFacts(_ context.Context, facts map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	ts := time.Now().UTC()
	for k, v := range facts {
		m.facts[k] = model.IdentityFact{Key: k, Value: v, UpdatedAt: ts}
	}
	return nil
}

func (m *MemStore) IdentityFacts(_ context.Context) ([]model.IdentityFact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	var facts []model.IdentityFact
	for _, f := range m.facts {
		facts = append(facts, f)
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].Key < facts[j].Key })
	return facts, nil
}

func (m *MemStore) AddSummary(_ context.Context, summary string, turnEnd int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.summaries = append(m.summaries, model.Summary{
		ID:        int64(len(m.summaries) + 1),
		Summary:   summary,
		TurnEnd:   turnEnd,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *MemStore) LatestSummary(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrClosed
	}
	if len(m.summaries) == 0 {
		return "", nil
	}
	return m.summaries[len(m.summaries)-1].Summary, nil
}

func (m *MemStore) SetState(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.state[key] = model.StateEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return nil
}

func (m *MemStore) GetState(_ context.Context, key, def string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrClosed
	}
	if e, ok := m.state[key]; ok {
		return e.Value, nil
	}
	return def, nil
}

// Summaries returns every stored summary in insertion order.
func (m *MemStore) Summaries() []model.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Summary, len(m.summaries))
	copy(out, m.summaries)
	return out
}

func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
