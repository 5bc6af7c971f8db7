package httpapi

import "strings"

const (
	promptMinLen = 10
	promptMaxLen = 1000
	titleMaxLen  = 200
)

func validatePrompt(prompt string) []string {
	var details []string
	trimmed := strings.TrimSpace(prompt)
	switch {
	case trimmed == "":
		details = append(details, "Prompt is required")
	case len(trimmed) < promptMinLen:
		details = append(details, "Prompt must be at least 10 characters")
	case len(trimmed) > promptMaxLen:
		details = append(details, "Prompt cannot exceed 1000 characters")
	}
	return details
}

func validateNotebookTitle(title string) []string {
	var details []string
	trimmed := strings.TrimSpace(title)
	switch {
	case trimmed == "":
		details = append(details, "Notebook title is required")
	case len(trimmed) > titleMaxLen:
		details = append(details, "Notebook title cannot exceed 200 characters")
	}
	return details
}

func validateDriveFileID(id string) []string {
	if strings.TrimSpace(id) == "" {
		return []string{"Google Drive file ID is required"}
	}
	return nil
}
