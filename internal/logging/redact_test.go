package logging

import (
	"strings"
	"testing"
)

func TestTrimArgs(t *testing.T) {
	content := strings.Repeat("a", 5000)
	args := map[string]any{
		"notebook_id": "nb-1",
		"content":     content,
		"token":       "super-secret-value",
		"count":       3,
	}
	out := TrimArgs(args)
	if out["notebook_id"] != "nb-1" {
		t.Fatalf("short strings should pass through, got %v", out["notebook_id"])
	}
	trimmed, _ := out["content"].(string)
	if len(trimmed) >= len(content) || !strings.Contains(trimmed, "5000 bytes") {
		t.Fatalf("expected truncated content, got %q", trimmed)
	}
	if out["token"] != "****alue" {
		t.Fatalf("expected masked token, got %v", out["token"])
	}
	if out["count"] != 3 {
		t.Fatalf("non-string values should pass through, got %v", out["count"])
	}
}
