package auth

import (
	"context"
	"log/slog"

	"github.com/fabroche/transcription-to-notion/internal/errinfo"
	"github.com/fabroche/transcription-to-notion/internal/logging"
)

// Connection is the slice of the connection manager the recovery
// action needs.
type Connection interface {
	Connect(ctx context.Context) error
	Disconnect() error
}

// ReconnectResult acknowledges a successful manual recovery.
type ReconnectResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service exposes the one manual recovery action operators have:
// force a disconnect and reconnect of the shared tool connection after
// refreshing credentials out-of-band.
type Service struct {
	conn   Connection
	logger *slog.Logger
}

func NewService(conn Connection, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{conn: conn, logger: logger}
}

// Reconnect tears the shared connection down and brings it back up.
// The reconnect picks up whatever credentials the external tool has
// persisted on disk. If the sequence fails, a bare reconnect is
// attempted before surfacing the original failure.
func (s *Service) Reconnect(ctx context.Context) (*ReconnectResult, error) {
	s.logger.Info("auth.reconnect_started")
	if err := s.conn.Disconnect(); err != nil {
		return s.recoverFrom(ctx, err)
	}
	if err := s.conn.Connect(ctx); err != nil {
		return s.recoverFrom(ctx, err)
	}
	s.logger.Info("auth.reconnect_completed")
	return &ReconnectResult{
		Success: true,
		Message: "Notebook tool client reconnected successfully. New credentials loaded from auth.json",
	}, nil
}

func (s *Service) recoverFrom(ctx context.Context, cause error) (*ReconnectResult, error) {
	s.logger.Warn("auth.reconnect_failed", "error", cause.Error())
	// Best-effort fallback; its own failure is logged and swallowed so
	// the caller sees the original cause.
	if err := s.conn.Connect(ctx); err != nil {
		s.logger.Warn("auth.fallback_reconnect_failed", "error", err.Error())
	} else {
		s.logger.Info("auth.reconnected_despite_error")
	}
	return nil, errinfo.ReconnectFailed("Failed to reconnect the notebook tool client", cause)
}
