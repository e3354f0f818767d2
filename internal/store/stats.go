package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string `json:"db_path"`
	DBSizeBytes int64  `json:"db_size_bytes"`
	Exchanges   int    `json:"exchanges"`
	Facts       int    `json:"facts"`
	Summaries   int    `json:"summaries"`
	StateKeys   int    `json:"state_keys"`
	LastTurnEnd int    `json:"last_turn_end"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM exchanges`, &st.Exchanges},
		{`SELECT COUNT(*) FROM identity_memory`, &st.Facts},
		{`SELECT COUNT(*) FROM long_term_summaries`, &st.Summaries},
		{`SELECT COUNT(*) FROM state`, &st.StateKeys},
		{`SELECT COALESCE(MAX(turn_end), 0) FROM long_term_summaries`, &st.LastTurnEnd},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return st, err
		}
	}

	return st, nil
}
