// Package store provides the agent state storage interface and its SQLite
// and in-memory implementations.
package store

import (
	"context"

	"github.com/rcliao/persona-agent/internal/model"
)

// Store defines the durable agent state. Every mutating call commits before
// it returns; errors are returned to the caller unretried.
type Store interface {
	// AddExchange appends a user/assistant pair to the exchange log.
	AddExchange(ctx context.Context, user, assistant string) error

	// RecentExchanges returns up to limit of the newest exchanges, oldest first.
	RecentExchanges(ctx context.Context, limit int) ([]model.Exchange, error)

	// ExchangeCount returns the total number of stored exchanges.
	ExchangeCount(ctx context.Context) (int, error)

	// UpsertIdentityFacts inserts or overwrites each fact by key.
	UpsertIdentityFacts(ctx context.Context, facts map[string]string) error

	// IdentityFacts returns all facts sorted by key.
	IdentityFacts(ctx context.Context) ([]model.IdentityFact, error)

	// AddSummary appends a long-term summary.
	AddSummary(ctx context.Context, summary string, turnEnd int) error

	// LatestSummary returns the newest summary text, or "" if none exists.
	LatestSummary(ctx context.Context) (string, error)

	// SetState upserts a process state value.
	SetState(ctx context.Context, key, value string) error

	// GetState returns the value stored under key, or def when absent.
	GetState(ctx context.Context, key, def string) (string, error)

	// Close closes the store.
	Close() error
}
