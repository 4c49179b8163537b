// Package history persists apply runs and the applications they submit.
package history

import (
	"context"

	"github.com/google/uuid"
)

// Store records runs and applications. Implementations must be safe to call
// from the single agent goroutine; no concurrent use is required.
type Store interface {
	StartRun(ctx context.Context, run Run) error
	RecordApplication(ctx context.Context, runID uuid.UUID, app Application) error
	FinishRun(ctx context.Context, runID uuid.UUID, outcome Outcome) error
	// RecentApplications returns the latest submitted applications across runs, newest first.
	RecentApplications(ctx context.Context, limit int) ([]Application, error)
	Close()
}

// Open returns a PostgreSQL store for databaseURL, or a NopStore when it is empty.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NopStore{}, nil
	}
	store, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// NopStore discards everything
type NopStore struct{}

// StartRun does nothing
func (NopStore) StartRun(context.Context, Run) error { return nil }

// RecordApplication does nothing
func (NopStore) RecordApplication(context.Context, uuid.UUID, Application) error { return nil }

// FinishRun does nothing
func (NopStore) FinishRun(context.Context, uuid.UUID, Outcome) error { return nil }

// RecentApplications returns nothing
func (NopStore) RecentApplications(context.Context, int) ([]Application, error) { return nil, nil }

// Close does nothing
func (NopStore) Close() {}
