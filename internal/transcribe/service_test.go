package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fabroche/transcription-to-notion/internal/errinfo"
	"github.com/fabroche/transcription-to-notion/internal/mcp"
	"github.com/fabroche/transcription-to-notion/internal/notebook"
)

func textResult(text string) mcp.ToolResult {
	return mcp.ToolResult{
		"content": []any{map[string]any{"type": "text", "text": text}},
	}
}

func newService(fake *mcp.Fake, wait time.Duration) *Service {
	service := NewService(notebook.NewClient(fake, nil), wait, nil)
	service.wait = func(context.Context, time.Duration) {}
	return service
}

func stubHappyPath(fake *mcp.Fake) {
	fake.Stub("notebook_create", textResult("nb-1"))
	fake.Stub("notebook_query",
		textResult("word for word transcript"),
		textResult("a short summary"),
	)
}

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio-upload.mp3")
	if err := os.WriteFile(path, []byte("fake audio bytes"), 0o600); err != nil {
		t.Fatalf("write temp audio: %v", err)
	}
	return path
}

func TestProcessDriveFile(t *testing.T) {
	fake := mcp.NewFake()
	stubHappyPath(fake)
	service := newService(fake, 15*time.Second)

	result, err := service.ProcessDriveFile(context.Background(), "abc123", "Summarize this recording in two sentences")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Transcription != "word for word transcript" || result.Summary != "a short summary" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.NotebookID != "nb-1" || result.DriveFileID != "abc123" {
		t.Fatalf("unexpected ids: %+v", result)
	}

	var tools []string
	for _, call := range fake.Calls() {
		tools = append(tools, call.Tool)
	}
	want := []string{"notebook_create", "notebook_add_drive", "notebook_query", "notebook_query", "notebook_delete"}
	if len(tools) != len(want) {
		t.Fatalf("expected sequence %v, got %v", want, tools)
	}
	for i := range want {
		if tools[i] != want[i] {
			t.Fatalf("step %d: expected %s, got %s (%v)", i, want[i], tools[i], tools)
		}
	}

	adds := fake.CallsFor("notebook_add_drive")
	if adds[0].Args["drive_file_id"] != "abc123" {
		t.Fatalf("unexpected attach args: %v", adds[0].Args)
	}
	deletes := fake.CallsFor("notebook_delete")
	if len(deletes) != 1 || deletes[0].Args["notebook_id"] != "nb-1" {
		t.Fatalf("notebook must be deleted exactly once: %+v", deletes)
	}
}

func TestProcessAudioFileRemovesTempFile(t *testing.T) {
	fake := mcp.NewFake()
	stubHappyPath(fake)
	service := newService(fake, 0)
	path := writeTempAudio(t)

	result, err := service.ProcessAudioFile(context.Background(), path, "Summarize this recording please")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Transcription == "" || result.NotebookID != "nb-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("temp file should be gone, stat err: %v", err)
	}
	adds := fake.CallsFor("notebook_add_text")
	if len(adds) != 1 || adds[0].Args["content"] != "fake audio bytes" {
		t.Fatalf("file content should be attached as text: %+v", adds)
	}
	// The local variant has no remote ingestion wait.
	if len(fake.CallsFor("notebook_delete")) != 1 {
		t.Fatalf("notebook must be deleted exactly once")
	}
}

func TestProcessAudioFileRemovesTempFileOnFailure(t *testing.T) {
	fake := mcp.NewFake()
	fake.Stub("notebook_create", textResult("nb-1"))
	fake.StubError("notebook_add_text", errors.New("attach exploded"))
	service := newService(fake, 0)
	path := writeTempAudio(t)

	_, err := service.ProcessAudioFile(context.Background(), path, "Summarize this recording please")
	if err == nil {
		t.Fatalf("expected failure")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("temp file should be gone after failure")
	}
	if len(fake.CallsFor("notebook_delete")) != 1 {
		t.Fatalf("notebook must still be cleaned up after attach failure")
	}
}

func TestCreateWithoutIDIsFatalAndSkipsCleanup(t *testing.T) {
	fake := mcp.NewFake()
	fake.Stub("notebook_create", mcp.ToolResult{})
	service := newService(fake, 0)

	_, err := service.ProcessDriveFile(context.Background(), "abc123", "Summarize this recording please")
	var info *errinfo.ErrorInfo
	if !errors.As(err, &info) || info.ErrorCode != errinfo.CodeCreationFailed {
		t.Fatalf("expected CREATION_FAILED, got %v", err)
	}
	if len(fake.CallsFor("notebook_delete")) != 0 {
		t.Fatalf("nothing was created, nothing to delete")
	}
}

func TestQueryFailureStillDeletesNotebook(t *testing.T) {
	fake := mcp.NewFake()
	fake.Stub("notebook_create", textResult("nb-1"))
	fake.StubError("notebook_query", errors.New("transport down"))
	service := newService(fake, 0)

	_, err := service.ProcessDriveFile(context.Background(), "abc123", "Summarize this recording please")
	var info *errinfo.ErrorInfo
	if !errors.As(err, &info) || info.ErrorCode != errinfo.CodeProcessingFailed {
		t.Fatalf("expected PROCESSING_FAILED, got %v", err)
	}
	if len(fake.CallsFor("notebook_delete")) != 1 {
		t.Fatalf("notebook must be deleted after query failure")
	}
}

func TestBothAnswersEmptyIsFatal(t *testing.T) {
	fake := mcp.NewFake()
	fake.Stub("notebook_create", textResult("nb-1"))
	fake.Stub("notebook_query", mcp.ToolResult{}, mcp.ToolResult{})
	service := newService(fake, 0)

	_, err := service.ProcessDriveFile(context.Background(), "abc123", "Summarize this recording please")
	var info *errinfo.ErrorInfo
	if !errors.As(err, &info) || info.ErrorCode != errinfo.CodeEmptyResponse {
		t.Fatalf("expected EMPTY_RESPONSE, got %v", err)
	}
	if len(fake.CallsFor("notebook_delete")) != 1 {
		t.Fatalf("notebook must be deleted after empty response")
	}
}

func TestOneEmptyAnswerSucceeds(t *testing.T) {
	fake := mcp.NewFake()
	fake.Stub("notebook_create", textResult("nb-1"))
	fake.Stub("notebook_query", mcp.ToolResult{}, textResult("only the summary came back"))
	service := newService(fake, 0)

	result, err := service.ProcessDriveFile(context.Background(), "abc123", "Summarize this recording please")
	if err != nil {
		t.Fatalf("one empty answer should not fail the run: %v", err)
	}
	if result.Transcription != "" || result.Summary != "only the summary came back" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestDeleteFailureDoesNotMaskSuccess(t *testing.T) {
	fake := mcp.NewFake()
	stubHappyPath(fake)
	fake.StubError("notebook_delete", errors.New("delete exploded"))
	service := newService(fake, 0)

	result, err := service.ProcessDriveFile(context.Background(), "abc123", "Summarize this recording please")
	if err != nil {
		t.Fatalf("cleanup failure must not fail the run: %v", err)
	}
	if result.Summary != "a short summary" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestDriveVariantWaitsForIngestion(t *testing.T) {
	fake := mcp.NewFake()
	stubHappyPath(fake)
	service := NewService(notebook.NewClient(fake, nil), 10*time.Second, nil)

	var waited time.Duration
	service.wait = func(_ context.Context, d time.Duration) { waited = d }

	if _, err := service.ProcessDriveFile(context.Background(), "abc123", "Summarize this recording please"); err != nil {
		t.Fatalf("process: %v", err)
	}
	if waited != 10*time.Second {
		t.Fatalf("expected the configured ingestion wait, got %v", waited)
	}
}

func TestUniqueNotebookNames(t *testing.T) {
	fake := mcp.NewFake()
	fake.Stub("notebook_create", textResult("nb-1"), textResult("nb-2"))
	fake.Stub("notebook_query",
		textResult("t1"), textResult("s1"),
		textResult("t2"), textResult("s2"),
	)
	service := newService(fake, 0)

	if _, err := service.ProcessDriveFile(context.Background(), "a", "Summarize this recording please"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := service.ProcessDriveFile(context.Background(), "b", "Summarize this recording please"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	creates := fake.CallsFor("notebook_create")
	if len(creates) != 2 {
		t.Fatalf("expected two creates, got %d", len(creates))
	}
	if creates[0].Args["name"] == creates[1].Args["name"] {
		t.Fatalf("notebook names must be unique per run: %v", creates[0].Args["name"])
	}
}
