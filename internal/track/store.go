// store.go — persisted subtitle track references, one row per (content, language).
package track

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Track is a stored subtitle track reference. FileURL is what the playback
// controller consumes; ObjectKey is the R2 object behind it.
type Track struct {
	ID        string    `json:"id"`
	ContentID string    `json:"content_id"`
	Language  string    `json:"language"`
	FileURL   string    `json:"file_url"`
	ObjectKey string    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists track rows. A content unit has at most one track per
// language tag — Save replaces on that pair.
type Store interface {
	// ListByContent returns all tracks for a content unit, newest first.
	ListByContent(ctx context.Context, contentID string) ([]Track, error)
	// GetByLanguage returns the track for (contentID, language), or nil when none.
	GetByLanguage(ctx context.Context, contentID, language string) (*Track, error)
	// Save inserts or replaces the row for (t.ContentID, t.Language).
	Save(ctx context.Context, t Track) error
}

// PostgresStore backs Store with the subtitle_tracks table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListByContent(ctx context.Context, contentID string) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_id, language_tag, file_url, object_key, updated_at
		FROM subtitle_tracks
		WHERE content_id = $1
		ORDER BY updated_at DESC`,
		contentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query subtitle_tracks: %w", err)
	}
	defer rows.Close()

	var out []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(&t.ID, &t.ContentID, &t.Language, &t.FileURL, &t.ObjectKey, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan subtitle_tracks: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetByLanguage(ctx context.Context, contentID, language string) (*Track, error) {
	var t Track
	err := s.db.QueryRowContext(ctx, `
		SELECT id, content_id, language_tag, file_url, object_key, updated_at
		FROM subtitle_tracks
		WHERE content_id = $1 AND language_tag = $2`,
		contentID, language,
	).Scan(&t.ID, &t.ContentID, &t.Language, &t.FileURL, &t.ObjectKey, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query subtitle_tracks: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) Save(ctx context.Context, t Track) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subtitle_tracks (id, content_id, language_tag, file_url, object_key, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (content_id, language_tag)
		DO UPDATE SET file_url   = EXCLUDED.file_url,
		              object_key = EXCLUDED.object_key,
		              updated_at = NOW()`,
		t.ID, t.ContentID, t.Language, t.FileURL, t.ObjectKey,
	)
	if err != nil {
		return fmt.Errorf("upsert subtitle_tracks: %w", err)
	}
	return nil
}
