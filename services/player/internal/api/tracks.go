// tracks.go — subtitle track upload and listing.
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yourflock/perch/internal/auth"
	"github.com/yourflock/perch/internal/subtitle"
	"github.com/yourflock/perch/internal/track"
	"github.com/yourflock/perch/internal/validate"
)

type uploadTrackRequest struct {
	Language string `json:"language"`
	Filename string `json:"filename"`
	Document string `json:"document"`
}

type listTracksResponse struct {
	ContentID string        `json:"content_id"`
	Tracks    []track.Track `json:"tracks"`
}

func (s *Server) handleUploadTrack(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "content_id")
	viewerID := auth.ViewerIDFromContext(r.Context())
	if viewerID == uuid.Nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "Authentication required")
		return
	}

	if allowed, _ := s.Limiter.CheckTrackUpload(r.Context(), viewerID.String()); !allowed {
		writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many track uploads")
		return
	}

	var req uploadTrackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var verr validate.MultiError
	verr.Add(validate.IsAlphanumericSlug("content_id", contentID))
	verr.Add(validate.IsLanguageCode("language", req.Language))
	verr.Add(validate.NonEmptyString("filename", req.Filename))
	verr.Add(validate.NoPathTraversal("filename", req.Filename))
	verr.Add(validate.NonEmptyString("document", req.Document))
	if verr.HasErrors() {
		writeError(w, http.StatusBadRequest, "invalid_field", verr.Error())
		return
	}

	t, err := s.Tracks.Upload(r.Context(), contentID, req.Language, req.Filename, []byte(req.Document))
	if err != nil {
		if errors.Is(err, subtitle.ErrUnsupportedExtension) {
			writeError(w, http.StatusUnsupportedMediaType, "unsupported_extension", err.Error())
			return
		}
		s.serverError(w, "track_upload", err)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "content_id")

	tracks, err := s.Tracks.List(r.Context(), contentID)
	if err != nil {
		s.serverError(w, "track_list", err)
		return
	}
	if tracks == nil {
		tracks = []track.Track{}
	}
	writeJSON(w, http.StatusOK, listTracksResponse{ContentID: contentID, Tracks: tracks})
}
