package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fabroche/transcription-to-notion/internal/errinfo"
	"github.com/fabroche/transcription-to-notion/internal/logging"
	"github.com/fabroche/transcription-to-notion/internal/notebook"
)

// The transcript query is fixed; the summary query is the caller's
// prompt. Two queries against the same ephemeral notebook, because the
// server answers very differently depending on instruction framing and
// re-uploading the content for a second notebook would be wasteful.
const transcriptPrompt = "Provide the complete, word-for-word transcription of the audio file. " +
	"Do not summarize, just transcribe everything that was said."

// Result is the outcome of one audio processing run.
type Result struct {
	Transcription string `json:"transcription"`
	Summary       string `json:"summary"`
	NotebookID    string `json:"notebookId,omitempty"`
	DriveFileID   string `json:"driveFileId,omitempty"`
}

// Service drives the ephemeral-notebook sequence: create, attach,
// wait for ingestion, query twice, delete. The notebook created for a
// run is always deleted by that run, success or failure.
type Service struct {
	notebooks     *notebook.Client
	logger        *slog.Logger
	ingestionWait time.Duration

	// wait is swappable so tests run with zero delay.
	wait func(ctx context.Context, d time.Duration)
}

func NewService(notebooks *notebook.Client, ingestionWait time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		notebooks:     notebooks,
		logger:        logger,
		ingestionWait: ingestionWait,
		wait:          sleepWait,
	}
}

// ProcessDriveFile runs the drive-reference variant: the server fetches
// and transcribes the Drive-hosted audio itself.
func (s *Service) ProcessDriveFile(ctx context.Context, driveFileID, prompt string) (*Result, error) {
	s.logger.Info("transcribe.drive_file", "drive_file_id", driveFileID)
	result, err := s.run(ctx, prompt, true, func(ctx context.Context, notebookID string) error {
		return s.notebooks.AddDriveFile(ctx, notebookID, driveFileID, "")
	})
	if err != nil {
		return nil, err
	}
	result.DriveFileID = driveFileID
	return result, nil
}

// ProcessAudioFile runs the local-file variant over an uploaded temp
// file. The file is removed when the run finishes, whatever the
// outcome.
func (s *Service) ProcessAudioFile(ctx context.Context, path, prompt string) (*Result, error) {
	defer s.removeTempFile(path)
	s.logger.Info("transcribe.audio_file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errinfo.ProcessingFailed("Failed to read the uploaded audio file", err)
	}
	title := filepath.Base(path)
	return s.run(ctx, prompt, false, func(ctx context.Context, notebookID string) error {
		// Attached as inline text: the server has no byte-upload
		// channel on this path, so ingestion quality depends on how
		// it handles raw audio content.
		return s.notebooks.AddText(ctx, notebookID, title, string(data))
	})
}

func (s *Service) run(ctx context.Context, prompt string, waitForIngestion bool, attach func(context.Context, string) error) (*Result, error) {
	name := fmt.Sprintf("Audio-Transcription-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	notebookID, err := s.notebooks.Create(ctx, name)
	if err != nil {
		return nil, s.wrapRunError(err)
	}
	if notebookID == "" {
		return nil, errinfo.CreationFailed("Failed to create notebook: no ID returned")
	}
	s.logger.Info("transcribe.notebook_created", "name", name, "id", notebookID)
	// From here on the notebook exists remotely and must be deleted on
	// every exit path, including the error returns below.
	defer s.cleanup(notebookID)

	if err := attach(ctx, notebookID); err != nil {
		return nil, s.wrapRunError(err)
	}

	if waitForIngestion && s.ingestionWait > 0 {
		s.logger.Info("transcribe.waiting_for_ingestion", "wait", s.ingestionWait.String())
		s.wait(ctx, s.ingestionWait)
	}

	transcriptResult, err := s.notebooks.Query(ctx, notebookID, transcriptPrompt)
	if err != nil {
		return nil, s.wrapRunError(err)
	}
	transcription := notebook.AnswerText(transcriptResult)
	s.logger.Info("transcribe.transcript_extracted", "len", len(transcription))

	summaryResult, err := s.notebooks.Query(ctx, notebookID, prompt)
	if err != nil {
		return nil, s.wrapRunError(err)
	}
	summary := notebook.AnswerText(summaryResult)
	s.logger.Info("transcribe.summary_extracted", "len", len(summary))

	if transcription == "" && summary == "" {
		return nil, errinfo.EmptyResponse("The notebook tool produced no usable content for this audio")
	}

	return &Result{
		Transcription: transcription,
		Summary:       summary,
		NotebookID:    notebookID,
	}, nil
}

// wrapRunError folds transport and tool failures into the single
// public processing error; the phase stays in the logs only.
func (s *Service) wrapRunError(err error) error {
	var info *errinfo.ErrorInfo
	if errors.As(err, &info) {
		switch info.ErrorCode {
		case errinfo.CodeCreationFailed, errinfo.CodeEmptyResponse:
			return err
		}
	}
	s.logger.Warn("transcribe.run_failed", "error", err.Error())
	return errinfo.ProcessingFailed("Failed to process audio with the notebook tool", err)
}

// cleanup deletes the ephemeral notebook on a fresh context: the run
// may be failing because the request context is already done, and the
// notebook still has to go.
func (s *Service) cleanup(notebookID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.notebooks.Delete(ctx, notebookID)
}

func (s *Service) removeTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("transcribe.temp_file_remove_failed", "path", path, "error", err.Error())
		return
	}
	s.logger.Debug("transcribe.temp_file_removed", "path", path)
}

func sleepWait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
