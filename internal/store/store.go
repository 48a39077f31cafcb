// Package store provides the memory storage interface and SQLite implementation.
package store

import (
	"context"

	"github.com/michimem/michimem/internal/model"
)

// Store defines the persistence interface shared by the Dispatcher, the
// tool server, and the lifecycle/compounding engine. All other components
// are stateless with respect to this boundary.
type Store interface {
	// Insert assigns an id, stamps created_at/updated_at, and writes the
	// record and its FTS index entry atomically.
	Insert(ctx context.Context, in model.MemoryInput) (*model.Memory, error)

	// GetByID is an exact lookup. Returns nil, nil if absent.
	GetByID(ctx context.Context, id string) (*model.Memory, error)

	// FindByTitle finds a record by case-insensitive title within a type.
	// Returns nil, nil if absent.
	FindByTitle(ctx context.Context, typ, title string) (*model.Memory, error)

	// Search runs an FTS5 query, ordered by rank ascending (best first).
	Search(ctx context.Context, query string, limit int) ([]model.SearchHit, error)

	// GetByType returns records of a type, newest-updated first.
	GetByType(ctx context.Context, typ string, limit int) ([]model.Memory, error)

	// GetByPriority returns records of a priority, newest-updated first.
	GetByPriority(ctx context.Context, priority int, limit int) ([]model.Memory, error)

	// GetExpired returns all records whose expires_at is in the past.
	GetExpired(ctx context.Context) ([]model.Memory, error)

	// GetUnprocessedDiaries returns diaries that do not appear in any
	// insight's source_ids, oldest created_at first.
	GetUnprocessedDiaries(ctx context.Context, limit int) ([]model.Memory, error)

	// Update applies a partial update and touches updated_at. Returns
	// whether a row changed.
	Update(ctx context.Context, id string, fields model.UpdateFields) (bool, error)

	// Delete removes a record and its FTS index entry.
	Delete(ctx context.Context, id string) error

	// Stats computes aggregate counts over the store.
	Stats(ctx context.Context) (*model.Stats, error)

	// RecordMetric appends a metric observation. Never fails the caller;
	// errors are logged, not propagated.
	RecordMetric(ctx context.Context, event string, data any)

	// Close releases the underlying database handle.
	Close() error
}
