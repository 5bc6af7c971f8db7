package notebook

import (
	"context"
	"log/slog"

	"github.com/fabroche/transcription-to-notion/internal/logging"
	"github.com/fabroche/transcription-to-notion/internal/mcp"
)

// Tool names exposed by the external notebook server.
const (
	toolCreate   = "notebook_create"
	toolList     = "notebook_list"
	toolAddText  = "notebook_add_text"
	toolAddDrive = "notebook_add_drive"
	toolQuery    = "notebook_query"
	toolDelete   = "notebook_delete"
)

// Invoker is the slice of the connection manager the client needs.
type Invoker interface {
	Invoke(ctx context.Context, tool string, args map[string]any) (mcp.ToolResult, error)
}

// Notebook is one remote notebook as reported by notebook_list.
type Notebook struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// Client wraps the raw tool calls in typed operations and hides the
// server's inconsistent response shapes from orchestrators.
type Client struct {
	invoker Invoker
	logger  *slog.Logger
}

func NewClient(invoker Invoker, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{invoker: invoker, logger: logger}
}

// Create makes a new notebook and returns its identifier, probing the
// first content block's text and then a direct "id" field. An empty id
// with a nil error means the server answered but returned no
// identifier; callers decide how fatal that is.
func (c *Client) Create(ctx context.Context, name string) (string, error) {
	result, err := c.invoker.Invoke(ctx, toolCreate, map[string]any{"name": name})
	if err != nil {
		return "", err
	}
	id := result.FirstText()
	if id == "" {
		id = result.StringField("id")
	}
	c.logger.Info("notebook.created", "name", name, "id", id)
	return id, nil
}

// Delete removes a notebook. It is cleanup: failures are logged and
// swallowed so they never mask the primary outcome of the caller.
func (c *Client) Delete(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if _, err := c.invoker.Invoke(ctx, toolDelete, map[string]any{"notebook_id": id}); err != nil {
		c.logger.Warn("notebook.delete_failed", "id", id, "error", err.Error())
		return
	}
	c.logger.Info("notebook.deleted", "id", id)
}

// List fetches every notebook visible to the connected account.
func (c *Client) List(ctx context.Context) ([]Notebook, error) {
	result, err := c.invoker.Invoke(ctx, toolList, map[string]any{})
	if err != nil {
		return nil, err
	}
	return decodeNotebooks(result), nil
}

// AddText attaches inline text content as a notebook source.
func (c *Client) AddText(ctx context.Context, id, title, content string) error {
	_, err := c.invoker.Invoke(ctx, toolAddText, map[string]any{
		"notebook_id": id,
		"title":       title,
		"content":     content,
	})
	if err != nil {
		return err
	}
	c.logger.Info("notebook.text_added", "id", id, "title", title, "bytes", len(content))
	return nil
}

// AddDriveFile attaches a Drive-hosted file as a notebook source; the
// server fetches and ingests the bytes itself.
func (c *Client) AddDriveFile(ctx context.Context, id, driveFileID, title string) error {
	args := map[string]any{
		"notebook_id":   id,
		"drive_file_id": driveFileID,
	}
	if title != "" {
		args["title"] = title
	}
	_, err := c.invoker.Invoke(ctx, toolAddDrive, args)
	if err != nil {
		return err
	}
	c.logger.Info("notebook.drive_file_added", "id", id, "drive_file_id", driveFileID)
	return nil
}

// Query asks the notebook a question and returns the raw result; the
// caller extracts the answer with AnswerText.
func (c *Client) Query(ctx context.Context, id, query string) (mcp.ToolResult, error) {
	result, err := c.invoker.Invoke(ctx, toolQuery, map[string]any{
		"notebook_id": id,
		"query":       query,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("notebook.queried", "id", id, "query", logging.TrimValue(query))
	return result, nil
}
