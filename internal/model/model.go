// Package model defines the persisted agent data types.
package model

import "time"

// Exchange is one stored user message and the assistant reply to it.
// IDs increase with insertion order and define recency.
type Exchange struct {
	ID             int64     `json:"id"`
	UserMessage    string    `json:"user_message"`
	AssistantReply string    `json:"assistant_reply"`
	CreatedAt      time.Time `json:"created_at"`
}

// IdentityFact is a stable fact learned about the user, unique by Key.
type IdentityFact struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is an append-only long-term summary of a window of exchanges.
type Summary struct {
	ID        int64     `json:"id"`
	Summary   string    `json:"summary"`
	TurnEnd   int       `json:"turn_end"`
	CreatedAt time.Time `json:"created_at"`
}

// StateEntry is a generic key/value row of process state.
type StateEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known process state keys.
const (
	StateEmotion    = "emotion"
	StateGoals      = "goals"
	StateReflection = "reflection"
)

// FactMap flattens facts into a key/value map.
func FactMap(facts []IdentityFact) map[string]string {
	m := make(map[string]string, len(facts))
	for _, f := range facts {
		m[f.Key] = f.Value
	}
	return m
}
