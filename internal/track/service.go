// service.go — subtitle track upload under the replace-then-reference policy.
//
// Uploading a new version for an existing (content, language) pair is a
// non-atomic two-step: the new object is written first, the row is updated to
// reference it, and only then is the old object deleted, best-effort. A crash
// between the steps leaks an object but never dangles a reference. Last writer
// wins — there is no optimistic concurrency on track rows.
package track

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourflock/perch/internal/metrics"
	"github.com/yourflock/perch/internal/subtitle"
	"github.com/yourflock/perch/pkg/telemetry"
)

// ObjectStorage is the slice of the R2 client the service needs.
type ObjectStorage interface {
	UploadReader(bucket, key string, r io.Reader, contentType string) (string, error)
	DeleteObject(bucket, key string) error
}

// Service stores subtitle track files and their referencing rows.
type Service struct {
	store   Store
	objects ObjectStorage
	bucket  string
	log     *logrus.Logger
}

func NewService(store Store, objects ObjectStorage, bucket string, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, objects: objects, bucket: bucket, log: log}
}

// List returns the stored tracks for a content unit.
func (s *Service) List(ctx context.Context, contentID string) ([]Track, error) {
	return s.store.ListByContent(ctx, contentID)
}

// Upload validates, converts, and stores a subtitle file for (contentID, language).
//
// .srt and .vtt uploads are normalised to WebVTT before storage so the player
// always receives one format; .ass/.ssa are stored verbatim. Any other
// extension is rejected before parsing with subtitle.ErrUnsupportedExtension.
func (s *Service) Upload(ctx context.Context, contentID, language, filename string, data []byte) (*Track, error) {
	convertible, err := subtitle.ValidateUploadExtension(filename)
	if err != nil {
		metrics.TrackUploads.WithLabelValues("rejected").Inc()
		return nil, err
	}

	ext := strings.ToLower(path.Ext(filename))
	if convertible {
		out, _ := subtitle.ToWebVTT(string(data))
		data = []byte(out)
		ext = ".vtt"
	}

	// Capture the old object before the row is replaced.
	existing, err := s.store.GetByLanguage(ctx, contentID, language)
	if err != nil {
		metrics.TrackUploads.WithLabelValues("error").Inc()
		return nil, err
	}

	key := fmt.Sprintf("subtitles/%s/%s%s", contentID, uuid.NewString(), ext)
	url, err := s.objects.UploadReader(s.bucket, key, bytes.NewReader(data), "")
	if err != nil {
		metrics.TrackUploads.WithLabelValues("error").Inc()
		telemetry.CaptureError(err, map[string]string{
			"operation":  "track_upload",
			"content_id": contentID,
		})
		return nil, fmt.Errorf("upload track object: %w", err)
	}

	t := Track{
		ID:        uuid.NewString(),
		ContentID: contentID,
		Language:  language,
		FileURL:   url,
		ObjectKey: key,
	}
	if existing != nil {
		t.ID = existing.ID
	}
	if err := s.store.Save(ctx, t); err != nil {
		metrics.TrackUploads.WithLabelValues("error").Inc()
		// The new object is now orphaned; clean it up so a failed save does
		// not leak storage.
		if derr := s.objects.DeleteObject(s.bucket, key); derr != nil {
			s.log.WithError(derr).WithField("key", key).Warn("orphaned track object cleanup failed")
		}
		return nil, err
	}

	// Old object removal is best-effort — the row no longer references it.
	if existing != nil && existing.ObjectKey != "" && existing.ObjectKey != key {
		if derr := s.objects.DeleteObject(s.bucket, existing.ObjectKey); derr != nil {
			s.log.WithError(derr).WithFields(logrus.Fields{
				"content_id": contentID,
				"key":        existing.ObjectKey,
			}).Warn("stale track object delete failed")
		}
	}

	metrics.TrackUploads.WithLabelValues("ok").Inc()
	return &t, nil
}
