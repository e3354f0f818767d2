package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rcliao/persona-agent/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Single writer; one connection keeps statement order equal to commit order.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		user_message    TEXT NOT NULL,
		assistant_reply TEXT NOT NULL,
		created_at      TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS identity_memory (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS long_term_summaries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		summary    TEXT NOT NULL,
		turn_end   INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_turn_end ON long_term_summaries(turn_end);

	CREATE TABLE IF NOT EXISTS state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *SQLiteStore) AddExchange(ctx context.Context, user, assistant string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (user_message, assistant_reply, created_at) VALUES (?, ?, ?)`,
		user, assistant, now())
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentExchanges(ctx context.Context, limit int) ([]model.Exchange, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_message, assistant_reply, created_at
		 FROM exchanges ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []model.Exchange
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		exchanges = append(exchanges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}

	// Newest-first from the query; callers want chronological order.
	for i, j := 0, len(exchanges)-1; i < j; i, j = i+1, j-1 {
		exchanges[i], exchanges[j] = exchanges[j], exchanges[i]
	}
	return exchanges, nil
}

func (s *SQLiteStore) ExchangeCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exchanges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count exchanges: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) UpsertIdentityFacts(ctx context.Context, facts map[string]string) error {
	if len(facts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ts := now()
	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO identity_memory (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, facts[k], ts)
		if err != nil {
			return fmt.Errorf("upsert fact %q: %w", k, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) IdentityFacts(ctx context.Context) ([]model.IdentityFact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM identity_memory ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	var facts []model.IdentityFact
	for rows.Next() {
		var f model.IdentityFact
		var updatedAt string
		if err := rows.Scan(&f.Key, &f.Value, &updatedAt); err != nil {
			return nil, err
		}
		f.UpdatedAt = parseTime(updatedAt)
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

func (s *SQLiteStore) AddSummary(ctx context.Context, summary string, turnEnd int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO long_term_summaries (summary, turn_end, created_at) VALUES (?, ?, ?)`,
		summary, turnEnd, now())
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LatestSummary(ctx context.Context) (string, error) {
	var summary string
	err := s.db.QueryRowContext(ctx,
		`SELECT summary FROM long_term_summaries ORDER BY id DESC LIMIT 1`).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query summary: %w", err)
	}
	return summary, nil
}

func (s *SQLiteStore) SetState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now())
	if err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetState(ctx context.Context, key, def string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("get state %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanExchange(row scanner) (model.Exchange, error) {
	var e model.Exchange
	var createdAt string
	if err := row.Scan(&e.ID, &e.UserMessage, &e.AssistantReply, &createdAt); err != nil {
		return e, err
	}
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
