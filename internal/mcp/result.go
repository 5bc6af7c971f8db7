package mcp

// ToolResult is the raw, shape-varying payload a tool call returns.
// The server is not consistent about where it puts data: sometimes a
// list of content blocks, sometimes direct fields. Consumers probe it
// through these accessors instead of assuming a layout.
type ToolResult map[string]any

// ContentBlocks returns the result's content block list, if any.
func (r ToolResult) ContentBlocks() []map[string]any {
	raw, ok := r["content"].([]any)
	if !ok {
		return nil
	}
	blocks := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if block, ok := entry.(map[string]any); ok {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// FirstText returns the text of the first content block, or "".
func (r ToolResult) FirstText() string {
	for _, block := range r.ContentBlocks() {
		if text, ok := block["text"].(string); ok {
			return text
		}
		break
	}
	return ""
}

// FirstBlockValue returns the first content block's "text" entry
// without assuming it is a string; some server builds put structured
// data there directly.
func (r ToolResult) FirstBlockValue() (any, bool) {
	blocks := r.ContentBlocks()
	if len(blocks) == 0 {
		return nil, false
	}
	value, ok := blocks[0]["text"]
	return value, ok
}

// StringField returns a top-level string field such as "id" or
// "answer", or "".
func (r ToolResult) StringField(key string) string {
	text, _ := r[key].(string)
	return text
}

// IsError reports whether the server flagged this result as a
// tool-level failure.
func (r ToolResult) IsError() bool {
	flagged, _ := r["isError"].(bool)
	return flagged
}
