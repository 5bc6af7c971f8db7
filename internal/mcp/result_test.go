package mcp

import "testing"

func TestFirstText(t *testing.T) {
	result := ToolResult{
		"content": []any{
			map[string]any{"type": "text", "text": "Key points: A, B, C"},
			map[string]any{"type": "text", "text": "second block"},
		},
	}
	if got := result.FirstText(); got != "Key points: A, B, C" {
		t.Fatalf("unexpected first text: %q", got)
	}
}

func TestFirstTextMissingContent(t *testing.T) {
	cases := []ToolResult{
		{},
		{"content": []any{}},
		{"content": "not a list"},
		{"content": []any{map[string]any{"type": "image"}}},
	}
	for i, result := range cases {
		if got := result.FirstText(); got != "" {
			t.Fatalf("case %d: expected empty text, got %q", i, got)
		}
	}
}

func TestFirstBlockValueStructured(t *testing.T) {
	structured := []any{map[string]any{"id": "w1", "title": "A"}}
	result := ToolResult{
		"content": []any{map[string]any{"type": "text", "text": structured}},
	}
	value, ok := result.FirstBlockValue()
	if !ok {
		t.Fatalf("expected a block value")
	}
	if _, isList := value.([]any); !isList {
		t.Fatalf("expected structured value to survive untouched, got %T", value)
	}
}

func TestStringField(t *testing.T) {
	result := ToolResult{"id": "nb-42", "count": 3}
	if got := result.StringField("id"); got != "nb-42" {
		t.Fatalf("unexpected id: %q", got)
	}
	if got := result.StringField("count"); got != "" {
		t.Fatalf("non-string fields should read empty, got %q", got)
	}
	if got := result.StringField("missing"); got != "" {
		t.Fatalf("missing fields should read empty, got %q", got)
	}
}

func TestIsError(t *testing.T) {
	if (ToolResult{}).IsError() {
		t.Fatalf("empty result should not be an error")
	}
	if !(ToolResult{"isError": true}).IsError() {
		t.Fatalf("flagged result should be an error")
	}
}
