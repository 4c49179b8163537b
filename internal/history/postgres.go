package history

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// PGStore stores history in PostgreSQL
type PGStore struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PGStore{pool: pool}, nil
}

// Migrate creates the history tables if they do not exist
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// StartRun inserts a running run record
func (s *PGStore) StartRun(ctx context.Context, run Run) error {
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO apply_runs (id, provider, model, apply_limit, status, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Provider, run.Model, run.ApplyLimit, RunStatusRunning, startedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// RecordApplication stores one application for a run
func (s *PGStore) RecordApplication(ctx context.Context, runID uuid.UUID, app Application) error {
	recordedAt := app.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO applications (run_id, company, title, url, status, recorded_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`,
		runID, app.Company, app.Title, app.URL, app.Status, recordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record application at %s: %w", app.Company, err)
	}
	return nil
}

// FinishRun marks a run as completed with its outcome
func (s *PGStore) FinishRun(ctx context.Context, runID uuid.UUID, outcome Outcome) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE apply_runs
		 SET status = $1, stop_reason = $2, summary = $3, steps = $4, applied = $5, completed_at = NOW()
		 WHERE id = $6`,
		outcome.Status(), outcome.StopReason, outcome.Summary, outcome.Steps, outcome.Applied, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// RecentApplications returns the latest submitted applications, newest first
func (s *PGStore) RecentApplications(ctx context.Context, limit int) ([]Application, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT company, title, COALESCE(url, ''), status, recorded_at
		 FROM applications
		 WHERE status = $1
		 ORDER BY recorded_at DESC
		 LIMIT $2`,
		ApplicationSubmitted, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var app Application
		if err := rows.Scan(&app.Company, &app.Title, &app.URL, &app.Status, &app.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}
