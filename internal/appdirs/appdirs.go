package appdirs

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = "notebookd"

// UploadDir returns the directory for transient audio uploads.
func UploadDir() string {
	if override := os.Getenv("UPLOAD_DIR"); override != "" {
		return override
	}
	return filepath.Join(os.TempDir(), appDirName, "uploads")
}

// ExpandHome resolves a leading "~" against the current user's home
// directory. Paths such as ~/.notebooklm-mcp/auth.json come straight
// from configuration and are passed to the external tool as-is
// otherwise.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
