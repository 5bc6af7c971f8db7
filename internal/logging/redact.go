package logging

import (
	"fmt"
	"strings"
)

const maxLoggedValueLen = 120

var secretKeys = map[string]bool{
	"api_key":       true,
	"apikey":        true,
	"authorization": true,
	"token":         true,
	"secret":        true,
}

// TrimArgs prepares a tool-call argument map for logging: secrets are
// masked and bulky values (attached file content, long prompts) are
// truncated so a single upload does not flood the log.
func TrimArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for key, value := range args {
		if isSecretKey(key) {
			out[key] = mask(fmt.Sprint(value))
			continue
		}
		if text, ok := value.(string); ok {
			out[key] = TrimValue(text)
			continue
		}
		out[key] = value
	}
	return out
}

func TrimValue(value string) string {
	if len(value) <= maxLoggedValueLen {
		return value
	}
	return fmt.Sprintf("%s... (%d bytes)", value[:maxLoggedValueLen], len(value))
}

func isSecretKey(key string) bool {
	return secretKeys[strings.ToLower(strings.TrimSpace(key))]
}

func mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
