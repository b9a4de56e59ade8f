// fixtures.go — Test data seed helpers.
// Provides canonical test fixtures for watch progress and subtitle tracks.
package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// SeedProgress inserts a watch_progress row and returns the generated user ID.
func SeedProgress(t *testing.T, db *sql.DB, contentID string, progressSeconds int, completed bool) string {
	t.Helper()
	userID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO watch_progress (user_id, content_id, progress_seconds, completed)
		VALUES ($1, $2, $3, $4)`,
		userID, contentID, progressSeconds, completed,
	)
	if err != nil {
		t.Fatalf("seed watch_progress: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM watch_progress WHERE user_id = $1`, userID)
	})
	return userID
}

// SeedTrack inserts a subtitle_tracks row and returns its ID.
func SeedTrack(t *testing.T, db *sql.DB, contentID, language string) string {
	t.Helper()
	id := uuid.NewString()
	url := fmt.Sprintf("https://cdn.test/tracks/%s/%s-%d.vtt", contentID, language, time.Now().UnixNano())
	_, err := db.Exec(`
		INSERT INTO subtitle_tracks (id, content_id, language_tag, file_url, object_key)
		VALUES ($1, $2, $3, $4, $5)`,
		id, contentID, language, url, "tracks/"+id+".vtt",
	)
	if err != nil {
		t.Fatalf("seed subtitle_tracks: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM subtitle_tracks WHERE id = $1`, id)
	})
	return id
}
