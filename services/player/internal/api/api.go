// api.go — HTTP surface of the Perch player service.
//
// Routes:
//   POST /player/v1/subtitles/convert  — SRT⇄WebVTT conversion
//   POST /player/v1/subtitles/shift    — shift all timestamps by an offset
//   POST /player/v1/subtitles/replace  — bulk literal search/replace
//   POST /player/v1/subtitles/strip    — strip inline formatting directives
//   POST /player/v1/tracks/{content_id} — upload a subtitle track (Bearer auth)
//   GET  /player/v1/tracks/{content_id} — list stored tracks
//   GET  /player/v1/progress/{content_id} — saved position + resume prompt (Bearer auth)
//   PUT  /player/v1/progress/{content_id} — write a checkpoint (Bearer auth)
//   GET  /health
//   GET  /metrics
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourflock/perch/internal/auth"
	"github.com/yourflock/perch/internal/metrics"
	"github.com/yourflock/perch/internal/progress"
	"github.com/yourflock/perch/internal/ratelimit"
	"github.com/yourflock/perch/internal/track"
	"github.com/yourflock/perch/pkg/telemetry"
)

// Server bundles the player service dependencies.
type Server struct {
	Tracks   *track.Service
	Progress progress.Store
	Limiter  *ratelimit.Limiter
	Log      *logrus.Logger
}

// Router builds the chi router with all player routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(telemetry.PanicRecoveryMiddleware("player"))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/player/v1", func(r chi.Router) {
		r.Route("/subtitles", func(r chi.Router) {
			r.Use(s.limitSubtitleOps)
			r.Post("/convert", s.handleConvert)
			r.Post("/shift", s.handleShift)
			r.Post("/replace", s.handleReplace)
			r.Post("/strip", s.handleStrip)
		})

		r.Get("/tracks/{content_id}", s.handleListTracks)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Post("/tracks/{content_id}", s.handleUploadTrack)
			r.Get("/progress/{content_id}", s.handleGetProgress)
			r.Put("/progress/{content_id}", s.handlePutProgress)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "player"})
}

// limitSubtitleOps applies the per-caller transform rate limit. Keyed by
// viewer when a valid token is present, client IP otherwise.
func (s *Server) limitSubtitleOps(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ratelimit.ClientIP(r)
		if id := auth.ViewerIDFromContext(r.Context()); id != uuid.Nil {
			key = id.String()
		}
		if allowed, retry := s.Limiter.CheckSubtitleOps(r.Context(), key); !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many subtitle operations")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.Log.WithError(err).Error(op + " failed")
	telemetry.CaptureError(err, map[string]string{"operation": op})
	writeError(w, http.StatusInternalServerError, "internal_error", op+" failed")
}
