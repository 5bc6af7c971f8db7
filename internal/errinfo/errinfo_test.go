package errinfo

import (
	"errors"
	"net/http"
	"testing"
)

func TestFromPassesThroughErrorInfo(t *testing.T) {
	original := NotFound(`Notebook "Lecture 1" not found`)
	wrapped := From(original)
	if wrapped != original {
		t.Fatalf("expected same ErrorInfo back")
	}
	if wrapped.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", wrapped.Status)
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("pipe closed")
	info := From(cause)
	if info.ErrorCode != CodeProcessingFailed {
		t.Fatalf("expected processing failure, got %s", info.ErrorCode)
	}
	if info.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", info.Status)
	}
	if info.Detail != "Internal server error" {
		t.Fatalf("internal detail must stay opaque, got %q", info.Detail)
	}
	if !errors.Is(info, cause) {
		t.Fatalf("expected wrapped cause to survive")
	}
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("spawn failed")
	err := ConnectionFailed("failed to connect to the notebook tool server", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find cause")
	}
	var info *ErrorInfo
	if !errors.As(error(err), &info) || info.ErrorCode != CodeConnectionFailed {
		t.Fatalf("expected errors.As to recover code")
	}
}
