package notebook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fabroche/transcription-to-notion/internal/errinfo"
	"github.com/fabroche/transcription-to-notion/internal/logging"
)

// QueryResult is the outcome of a name-based notebook query.
type QueryResult struct {
	Answer        string `json:"answer"`
	NotebookID    string `json:"notebookId"`
	NotebookTitle string `json:"notebookTitle"`
}

// QueryService resolves notebooks by title and runs queries against
// them.
type QueryService struct {
	notebooks *Client
	logger    *slog.Logger
}

func NewQueryService(notebooks *Client, logger *slog.Logger) *QueryService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &QueryService{notebooks: notebooks, logger: logger}
}

// QueryByName finds the notebook whose title matches case-insensitively
// (exact equality, not substring) and queries it with the prompt.
func (s *QueryService) QueryByName(ctx context.Context, title, prompt string) (*QueryResult, error) {
	notebooks, err := s.notebooks.List(ctx)
	if err != nil {
		return nil, err
	}

	var match *Notebook
	for i := range notebooks {
		if strings.EqualFold(notebooks[i].Title, title) {
			match = &notebooks[i]
			break
		}
	}
	if match == nil {
		titles := make([]string, 0, len(notebooks))
		for _, nb := range notebooks {
			titles = append(titles, nb.Title)
		}
		return nil, errinfo.NotFound(fmt.Sprintf(
			"Notebook %q not found. Available notebooks: %s",
			title, strings.Join(titles, ", ")))
	}
	s.logger.Info("query.notebook_found", "title", match.Title, "id", match.ID)

	result, err := s.notebooks.Query(ctx, match.ID, prompt)
	if err != nil {
		return nil, err
	}
	answer := AnswerText(result)
	if answer == "" {
		return nil, errinfo.EmptyResponse(
			"The notebook returned an empty response. It may not have any sources, or the query may need to be more specific.")
	}
	s.logger.Info("query.answered", "id", match.ID, "answer_len", len(answer))

	resolvedTitle := match.Title
	if resolvedTitle == "" {
		resolvedTitle = title
	}
	return &QueryResult{
		Answer:        answer,
		NotebookID:    match.ID,
		NotebookTitle: resolvedTitle,
	}, nil
}
