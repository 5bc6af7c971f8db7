package notebook

import (
	"encoding/json"

	"github.com/fabroche/transcription-to-notion/internal/mcp"
)

// AnswerText extracts a query answer: first content block's text, then
// a direct "answer" field, then empty.
func AnswerText(result mcp.ToolResult) string {
	if text := result.FirstText(); text != "" {
		return text
	}
	return result.StringField("answer")
}

// decodeNotebooks normalizes the notebook_list result. Depending on
// the server build, the first content block's text is either a JSON
// string or an already-structured value, and the list is either the
// value itself or sits under a "notebooks" key. Anything unreadable
// decodes to an empty list rather than an error.
func decodeNotebooks(result mcp.ToolResult) []Notebook {
	value, ok := result.FirstBlockValue()
	if !ok {
		return []Notebook{}
	}
	if text, isString := value.(string); isString {
		var decoded any
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			return []Notebook{}
		}
		value = decoded
	}
	entries, ok := value.([]any)
	if !ok {
		wrapper, isMap := value.(map[string]any)
		if !isMap {
			return []Notebook{}
		}
		entries, ok = wrapper["notebooks"].([]any)
		if !ok {
			return []Notebook{}
		}
	}
	notebooks := make([]Notebook, 0, len(entries))
	for _, entry := range entries {
		fields, isMap := entry.(map[string]any)
		if !isMap {
			continue
		}
		nb := Notebook{}
		nb.ID, _ = fields["id"].(string)
		nb.Title, _ = fields["title"].(string)
		nb.URL, _ = fields["url"].(string)
		if nb.ID == "" && nb.Title == "" {
			continue
		}
		notebooks = append(notebooks, nb)
	}
	return notebooks
}
