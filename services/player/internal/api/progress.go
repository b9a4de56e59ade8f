// progress.go — watch progress read/write for the authenticated viewer.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yourflock/perch/internal/auth"
	"github.com/yourflock/perch/internal/metrics"
	"github.com/yourflock/perch/internal/progress"
	"github.com/yourflock/perch/internal/validate"
)

type progressResponse struct {
	ContentID       string                `json:"content_id"`
	ProgressSeconds int                   `json:"progress_seconds"`
	Completed       bool                  `json:"completed"`
	Resume          progress.ResumePrompt `json:"resume"`
}

type putProgressRequest struct {
	PositionSeconds int  `json:"position_seconds"`
	Completed       bool `json:"completed"`
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "content_id")
	viewerID := auth.ViewerIDFromContext(r.Context())
	if viewerID == uuid.Nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "Authentication required")
		return
	}

	rec, err := s.Progress.Get(r.Context(), viewerID.String(), contentID)
	if err != nil {
		s.serverError(w, "progress_get", err)
		return
	}

	resp := progressResponse{ContentID: contentID, Resume: progress.PromptFor(rec)}
	if rec != nil {
		resp.ProgressSeconds = rec.ProgressSeconds
		resp.Completed = rec.Completed
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePutProgress(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "content_id")
	viewerID := auth.ViewerIDFromContext(r.Context())
	if viewerID == uuid.Nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "Authentication required")
		return
	}

	if allowed, _ := s.Limiter.CheckProgressWrites(r.Context(), viewerID.String()); !allowed {
		writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many progress writes")
		return
	}

	var req putProgressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var verr validate.MultiError
	verr.Add(validate.IsAlphanumericSlug("content_id", contentID))
	// A week of runtime is beyond any single content unit.
	verr.Add(validate.IntInRange("position_seconds", req.PositionSeconds, 0, 7*86400))
	if verr.HasErrors() {
		writeError(w, http.StatusBadRequest, "invalid_field", verr.Error())
		return
	}

	if err := s.Progress.Upsert(r.Context(), viewerID.String(), contentID, req.PositionSeconds, req.Completed); err != nil {
		metrics.CheckpointWrites.WithLabelValues("error").Inc()
		s.serverError(w, "progress_put", err)
		return
	}
	metrics.CheckpointWrites.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
