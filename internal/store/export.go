package store

import (
	"context"
	"fmt"

	"github.com/rcliao/persona-agent/internal/model"
)

// Snapshot is a full dump of the four collections.
type Snapshot struct {
	Exchanges []model.Exchange     `json:"exchanges"`
	Facts     []model.IdentityFact `json:"facts"`
	Summaries []model.Summary      `json:"summaries"`
	State     []model.StateEntry   `json:"state"`
}

// Export returns every stored row, exchanges and summaries in id order.
func (s *SQLiteStore) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Exchanges: []model.Exchange{},
		Summaries: []model.Summary{},
		State:     []model.StateEntry{},
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_message, assistant_reply, created_at FROM exchanges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("export exchanges: %w", err)
	}
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		snap.Exchanges = append(snap.Exchanges, e)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("export exchanges: %w", err)
	}

	snap.Facts, err = s.IdentityFacts(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Facts == nil {
		snap.Facts = []model.IdentityFact{}
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, summary, turn_end, created_at FROM long_term_summaries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("export summaries: %w", err)
	}
	for rows.Next() {
		var sum model.Summary
		var createdAt string
		if err := rows.Scan(&sum.ID, &sum.Summary, &sum.TurnEnd, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		sum.CreatedAt = parseTime(createdAt)
		snap.Summaries = append(snap.Summaries, sum)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("export summaries: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT key, value, updated_at FROM state ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("export state: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e model.StateEntry
		var updatedAt string
		if err := rows.Scan(&e.Key, &e.Value, &updatedAt); err != nil {
			return nil, err
		}
		e.UpdatedAt = parseTime(updatedAt)
		snap.State = append(snap.State, e)
	}

	return snap, rows.Err()
}

// Import replays a snapshot into the store through the Store interface.
// Exchanges and summaries are appended in their original id order, so
// recency is preserved; facts and state are upserted. Returns rows written.
func Import(ctx context.Context, st Store, snap *Snapshot) (int, error) {
	imported := 0
	for _, e := range snap.Exchanges {
		if err := st.AddExchange(ctx, e.UserMessage, e.AssistantReply); err != nil {
			return imported, err
		}
		imported++
	}

	if len(snap.Facts) > 0 {
		if err := st.UpsertIdentityFacts(ctx, model.FactMap(snap.Facts)); err != nil {
			return imported, err
		}
		imported += len(snap.Facts)
	}

	for _, sum := range snap.Summaries {
		if err := st.AddSummary(ctx, sum.Summary, sum.TurnEnd); err != nil {
			return imported, err
		}
		imported++
	}

	for _, e := range snap.State {
		if err := st.SetState(ctx, e.Key, e.Value); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
