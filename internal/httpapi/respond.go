package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fabroche/transcription-to-notion/internal/errinfo"
)

type successBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type healthBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type errorBody struct {
	StatusCode int      `json:"statusCode"`
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successBody{Success: true, Data: data})
}

func (s *Server) writeHealth(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, healthBody{
		Success:   true,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError maps any failure to the public error envelope. The
// wrapped cause is logged here and never serialized.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	info := errinfo.From(err)
	if cause := info.Unwrap(); cause != nil {
		s.logger.Error("http.request_failed",
			"path", r.URL.Path, "code", info.ErrorCode, "cause", cause.Error())
	} else {
		s.logger.Warn("http.request_failed",
			"path", r.URL.Path, "code", info.ErrorCode, "detail", info.Detail)
	}
	writeJSON(w, info.Status, errorBody{
		StatusCode: info.Status,
		Error:      http.StatusText(info.Status),
		Message:    info.Detail,
		Details:    info.Details,
	})
}
