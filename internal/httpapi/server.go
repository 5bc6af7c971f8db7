package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/fabroche/transcription-to-notion/internal/auth"
	"github.com/fabroche/transcription-to-notion/internal/config"
	"github.com/fabroche/transcription-to-notion/internal/errinfo"
	"github.com/fabroche/transcription-to-notion/internal/logging"
	"github.com/fabroche/transcription-to-notion/internal/notebook"
	"github.com/fabroche/transcription-to-notion/internal/transcribe"
)

const apiVersion = "1.0.0"

// Server wires the orchestration services to the HTTP surface.
type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	notebooks   *notebook.Client
	queries     *notebook.QueryService
	transcriber *transcribe.Service
	auth        *auth.Service
}

func NewServer(
	cfg *config.Config,
	notebooks *notebook.Client,
	queries *notebook.QueryService,
	transcriber *transcribe.Service,
	authService *auth.Service,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		cfg:         cfg,
		logger:      logger,
		notebooks:   notebooks,
		queries:     queries,
		transcriber: transcriber,
		auth:        authService,
	}
}

// Handler builds the routed handler, CORS included.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	transcription := r.PathPrefix("/transcription").Subrouter()
	transcription.HandleFunc("/transcribe", s.handleTranscribe).Methods(http.MethodPost)
	transcription.HandleFunc("/health", s.healthHandler("Transcription service is running")).Methods(http.MethodGet)

	nb := r.PathPrefix("/notebook").Subrouter()
	nb.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	nb.HandleFunc("/list", s.handleList).Methods(http.MethodGet)
	nb.HandleFunc("/health", s.healthHandler("Notebook query service is running")).Methods(http.MethodGet)

	authRoutes := r.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/reconnect", s.handleReconnect).Methods(http.MethodPost)
	authRoutes.HandleFunc("/health", s.healthHandler("Auth service is running")).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{s.cfg.CORSOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(s.logRequests(r))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http.request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "NotebookLM Query API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"transcribe":     "POST /transcription/transcribe",
			"notebookQuery":  "POST /notebook/query",
			"notebookList":   "GET /notebook/list",
			"authReconnect":  "POST /auth/reconnect",
			"notebookHealth": "GET /notebook/health",
		},
	})
}

func (s *Server) healthHandler(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.writeHealth(w, message)
	}
}

type queryRequest struct {
	NotebookTitle string `json:"notebookTitle"`
	Prompt        string `json:"prompt"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errinfo.BadRequest("Invalid JSON body"))
		return
	}
	details := validateNotebookTitle(req.NotebookTitle)
	details = append(details, validatePrompt(req.Prompt)...)
	if len(details) > 0 {
		s.writeError(w, r, errinfo.ValidationFailed(details))
		return
	}
	result, err := s.queries.QueryByName(r.Context(), req.NotebookTitle, req.Prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, result)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	notebooks, err := s.notebooks.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, map[string]any{
		"notebooks": notebooks,
		"count":     len(notebooks),
	})
}

type driveTranscribeRequest struct {
	DriveFileID string `json:"driveFileId"`
	Prompt      string `json:"prompt"`
}

// handleTranscribe serves both variants of the transcription endpoint:
// multipart requests carry a local audio upload, JSON requests carry a
// Drive file reference.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		s.handleTranscribeUpload(w, r)
		return
	}
	s.handleTranscribeDrive(w, r)
}

func (s *Server) handleTranscribeUpload(w http.ResponseWriter, r *http.Request) {
	path, prompt, err := s.receiveAudioUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.transcriber.ProcessAudioFile(r.Context(), path, prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, result)
}

func (s *Server) handleTranscribeDrive(w http.ResponseWriter, r *http.Request) {
	var req driveTranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errinfo.BadRequest("Invalid JSON body"))
		return
	}
	details := validateDriveFileID(req.DriveFileID)
	details = append(details, validatePrompt(req.Prompt)...)
	if len(details) > 0 {
		s.writeError(w, r, errinfo.ValidationFailed(details))
		return
	}
	result, err := s.transcriber.ProcessDriveFile(r.Context(), req.DriveFileID, req.Prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, result)
}

func (s *Server) handleReconnect(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http.reconnect_requested")
	result, err := s.auth.Reconnect(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, result)
}
