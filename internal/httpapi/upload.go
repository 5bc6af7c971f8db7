package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fabroche/transcription-to-notion/internal/errinfo"
)

const multipartMemoryLimit = 8 * 1024 * 1024

// receiveAudioUpload validates the multipart request and spools the
// audio file into the upload directory under a unique name. The caller
// owns the returned path; orchestration removes it when the run ends.
func (s *Server) receiveAudioUpload(w http.ResponseWriter, r *http.Request) (path, prompt string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			return "", "", errinfo.PayloadTooLarge(fmt.Sprintf(
				"File size exceeds the limit of %dMB", s.cfg.MaxUploadBytes/(1024*1024)))
		}
		return "", "", errinfo.BadRequest("Malformed multipart upload")
	}

	prompt = r.FormValue("prompt")
	if details := validatePrompt(prompt); len(details) > 0 {
		return "", "", errinfo.ValidationFailed(details)
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		return "", "", errinfo.BadRequest("Audio file is required")
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if parsed, _, parseErr := mime.ParseMediaType(mimeType); parseErr == nil {
		mimeType = parsed
	}
	if !s.cfg.MimeAllowed(mimeType) {
		return "", "", errinfo.BadRequest("Only audio files are allowed. Received: " + mimeType)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", "", errinfo.ProcessingFailed("Failed to store the uploaded file", err)
	}
	name := "audio-" + uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	path = filepath.Join(s.cfg.UploadDir, name)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", "", errinfo.ProcessingFailed("Failed to store the uploaded file", err)
	}
	written, err := io.Copy(dst, file)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", "", errinfo.ProcessingFailed("Failed to store the uploaded file", err)
	}
	s.logger.Info("http.upload_received",
		"file", header.Filename, "bytes", written, "mime", mimeType, "path", path)
	return path, prompt, nil
}
