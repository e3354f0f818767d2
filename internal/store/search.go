package store

import (
	"context"
	"fmt"

	"github.com/rcliao/persona-agent/internal/model"
)

// SearchExchanges finds exchanges whose user message or reply contains the
// query substring, newest first. Matching is ASCII case-insensitive.
func (s *SQLiteStore) SearchExchanges(ctx context.Context, query string, limit int) ([]model.Exchange, error) {
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_message, assistant_reply, created_at
		 FROM exchanges
		 WHERE user_message LIKE ? OR assistant_reply LIKE ?
		 ORDER BY id DESC
		 LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search exchanges: %w", err)
	}
	defer rows.Close()

	results := []model.Exchange{}
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}
