package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rcliao/persona-agent/internal/model"
	"github.com/rcliao/persona-agent/internal/store"
)

// Snapshot is the per-turn mutable state carried between turns.
type Snapshot struct {
	Emotion Emotion `json:"emotion"`
	Goals   Goals   `json:"goals"`
}

// Default returns the snapshot of a fresh agent.
func Default() Snapshot {
	return Snapshot{Emotion: DefaultEmotion(), Goals: DefaultGoals()}
}

// Load rehydrates the snapshot from process state. Missing entries fall back
// to defaults; entries that do not parse are an error.
func Load(ctx context.Context, st store.Store) (Snapshot, error) {
	snap := Default()

	raw, err := st.GetState(ctx, model.StateEmotion, "")
	if err != nil {
		return snap, err
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &snap.Emotion); err != nil {
			return snap, fmt.Errorf("load emotion state: %w", err)
		}
	}

	raw, err = st.GetState(ctx, model.StateGoals, "")
	if err != nil {
		return snap, err
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &snap.Goals); err != nil {
			return snap, fmt.Errorf("load goal state: %w", err)
		}
	}

	return snap, nil
}

// Save persists both halves of the snapshot.
func Save(ctx context.Context, st store.Store, snap Snapshot) error {
	b, err := json.Marshal(snap.Emotion)
	if err != nil {
		return fmt.Errorf("encode emotion state: %w", err)
	}
	if err := st.SetState(ctx, model.StateEmotion, string(b)); err != nil {
		return err
	}

	b, err = json.Marshal(snap.Goals)
	if err != nil {
		return fmt.Errorf("encode goal state: %w", err)
	}
	return st.SetState(ctx, model.StateGoals, string(b))
}
