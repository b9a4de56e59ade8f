// subtitles.go — subtitle transform endpoints.
//
// All four endpoints are pure transforms: on error the response carries only
// the error and no partial document is returned.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/yourflock/perch/internal/metrics"
	"github.com/yourflock/perch/internal/subtitle"
)

const maxDocumentBytes = 4 << 20 // subtitle files are small; 4 MiB is generous

type convertRequest struct {
	Document string `json:"document"`
	Target   string `json:"target"` // "vtt" or "srt"
}

type convertResponse struct {
	Document  string `json:"document"`
	Converted bool   `json:"converted"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	switch req.Target {
	case "vtt":
		out, converted := subtitle.ToWebVTT(req.Document)
		metrics.SubtitleOperations.WithLabelValues("convert", "ok").Inc()
		writeJSON(w, http.StatusOK, convertResponse{Document: out, Converted: converted})
	case "srt":
		out := subtitle.ToSRT(req.Document)
		metrics.SubtitleOperations.WithLabelValues("convert", "ok").Inc()
		writeJSON(w, http.StatusOK, convertResponse{Document: out, Converted: true})
	default:
		metrics.SubtitleOperations.WithLabelValues("convert", "rejected").Inc()
		writeError(w, http.StatusBadRequest, "invalid_target", `target must be "vtt" or "srt"`)
	}
}

type shiftRequest struct {
	Document      string  `json:"document"`
	OffsetSeconds float64 `json:"offset_seconds"`
}

type shiftResponse struct {
	Document  string `json:"document"`
	Rewritten int    `json:"rewritten"`
}

func (s *Server) handleShift(w http.ResponseWriter, r *http.Request) {
	var req shiftRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, n := subtitle.Shift(req.Document, req.OffsetSeconds)
	metrics.SubtitleOperations.WithLabelValues("shift", "ok").Inc()
	writeJSON(w, http.StatusOK, shiftResponse{Document: out, Rewritten: n})
}

type replaceRequest struct {
	Document string `json:"document"`
	Search   string `json:"search"`
	Replace  string `json:"replace"`
}

type replaceResponse struct {
	Document string `json:"document"`
	Matches  int    `json:"matches"`
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Search == "" {
		writeError(w, http.StatusBadRequest, "empty_search", "search must not be empty")
		return
	}

	out, n := subtitle.SearchReplace(req.Document, req.Search, req.Replace)
	metrics.SubtitleOperations.WithLabelValues("replace", "ok").Inc()
	writeJSON(w, http.StatusOK, replaceResponse{Document: out, Matches: n})
}

type stripRequest struct {
	Document string `json:"document"`
}

type stripResponse struct {
	Document string `json:"document"`
}

func (s *Server) handleStrip(w http.ResponseWriter, r *http.Request) {
	var req stripRequest
	if !decodeBody(w, r, &req) {
		return
	}

	metrics.SubtitleOperations.WithLabelValues("strip", "ok").Inc()
	writeJSON(w, http.StatusOK, stripResponse{Document: subtitle.StripFormatting(req.Document)})
}

// decodeBody decodes a size-capped JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return false
	}
	return true
}
