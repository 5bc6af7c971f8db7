package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/fabroche/transcription-to-notion/internal/errinfo"
	"github.com/fabroche/transcription-to-notion/internal/mcp"
)

func TestReconnectSuccess(t *testing.T) {
	fake := mcp.NewFake()
	service := NewService(fake, nil)

	result, err := service.Reconnect(context.Background())
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if !result.Success || result.Message == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if fake.Disconnects() != 1 || fake.Connects() != 1 {
		t.Fatalf("expected one disconnect then one connect, got %d/%d", fake.Disconnects(), fake.Connects())
	}
}

func TestReconnectConnectFailureTriggersFallback(t *testing.T) {
	fake := mcp.NewFake()
	fake.ConnectErr = errors.New("credentials expired")
	service := NewService(fake, nil)

	_, err := service.Reconnect(context.Background())
	var info *errinfo.ErrorInfo
	if !errors.As(err, &info) || info.ErrorCode != errinfo.CodeReconnectFailed {
		t.Fatalf("expected RECONNECT_FAILED, got %v", err)
	}
	// Primary connect plus the fallback attempt.
	if fake.Connects() != 2 {
		t.Fatalf("expected fallback connect attempt, got %d connects", fake.Connects())
	}
}

func TestReconnectDisconnectFailureKeepsOriginalCause(t *testing.T) {
	fake := mcp.NewFake()
	cause := errors.New("transport wedged")
	fake.DisconnectErr = cause
	service := NewService(fake, nil)

	_, err := service.Reconnect(context.Background())
	if err == nil || !errors.Is(err, cause) {
		t.Fatalf("expected original cause to survive the fallback, got %v", err)
	}
	if fake.Connects() != 1 {
		t.Fatalf("expected the fallback connect, got %d", fake.Connects())
	}
}
