// store.go — durable watch progress, one row per (viewer, content unit).
package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Record is a viewer's saved position for one content unit.
type Record struct {
	UserID          string    `json:"user_id"`
	ContentID       string    `json:"content_id"`
	ProgressSeconds int       `json:"progress_seconds"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Store persists watch progress. Implementations must make Upsert
// idempotent on (userID, contentID) — never a duplicate row.
type Store interface {
	// Get returns the record for (userID, contentID), or nil when none exists.
	Get(ctx context.Context, userID, contentID string) (*Record, error)
	// Upsert inserts or replaces the record for (userID, contentID).
	Upsert(ctx context.Context, userID, contentID string, progressSeconds int, completed bool) error
}

// PostgresStore backs Store with the watch_progress table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID, contentID string) (*Record, error) {
	rec := Record{UserID: userID, ContentID: contentID}
	err := s.db.QueryRowContext(ctx, `
		SELECT progress_seconds, completed, updated_at
		FROM watch_progress
		WHERE user_id = $1 AND content_id = $2`,
		userID, contentID,
	).Scan(&rec.ProgressSeconds, &rec.Completed, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query watch_progress: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, userID, contentID string, progressSeconds int, completed bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watch_progress (user_id, content_id, progress_seconds, completed, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, content_id)
		DO UPDATE SET progress_seconds = EXCLUDED.progress_seconds,
		              completed        = EXCLUDED.completed,
		              updated_at       = NOW()`,
		userID, contentID, progressSeconds, completed,
	)
	if err != nil {
		return fmt.Errorf("upsert watch_progress: %w", err)
	}
	return nil
}
