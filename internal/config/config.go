package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fabroche/transcription-to-notion/internal/appdirs"
	"github.com/fabroche/transcription-to-notion/internal/envutil"
)

const (
	defaultPort           = 3000
	defaultCORSOrigin     = "http://localhost:5173"
	defaultMaxUploadBytes = 50 * 1024 * 1024
	defaultServerCommand  = "notebooklm-mcp-server"
	defaultAuthPath       = "~/.notebooklm-mcp/auth.json"

	// Audio ingestion on the tool side has no readiness signal; this
	// is how long we give it before querying.
	defaultIngestionWait = 15 * time.Second
	defaultCallTimeout   = 2 * time.Minute
)

var defaultAllowedMimeTypes = []string{
	"audio/mpeg",
	"audio/mp3",
	"audio/wav",
	"audio/x-wav",
	"audio/mp4",
	"audio/m4a",
	"audio/x-m4a",
	"audio/ogg",
	"audio/webm",
}

type Config struct {
	Port             int
	CORSOrigin       string
	UploadDir        string
	MaxUploadBytes   int64
	AllowedMimeTypes []string
	ServerCommand    string
	ServerArgs       []string
	AuthPath         string
	IngestionWait    time.Duration
	CallTimeout      time.Duration
	Debug            bool
}

// fileConfig is the YAML-facing shape; durations are strings so the
// file can say "15s" rather than nanosecond integers.
type fileConfig struct {
	Port             *int     `yaml:"port"`
	CORSOrigin       string   `yaml:"cors_origin"`
	UploadDir        string   `yaml:"upload_dir"`
	MaxUploadBytes   *int64   `yaml:"max_upload_bytes"`
	AllowedMimeTypes []string `yaml:"allowed_mime_types"`
	ServerCommand    string   `yaml:"mcp_server_command"`
	ServerArgs       []string `yaml:"mcp_server_args"`
	AuthPath         string   `yaml:"mcp_auth_path"`
	IngestionWait    string   `yaml:"ingestion_wait"`
	CallTimeout      string   `yaml:"call_timeout"`
	Debug            *bool    `yaml:"debug"`
}

func Default() *Config {
	return &Config{
		Port:             defaultPort,
		CORSOrigin:       defaultCORSOrigin,
		UploadDir:        appdirs.UploadDir(),
		MaxUploadBytes:   defaultMaxUploadBytes,
		AllowedMimeTypes: defaultAllowedMimeTypes,
		ServerCommand:    defaultServerCommand,
		AuthPath:         defaultAuthPath,
		IngestionWait:    defaultIngestionWait,
		CallTimeout:      defaultCallTimeout,
	}
}

// Load builds the effective configuration: defaults, then the optional
// YAML file, then environment overrides. Read once at startup.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := applyFile(cfg, &file); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	cfg.AuthPath = appdirs.ExpandHome(cfg.AuthPath)
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("invalid max upload size %d", cfg.MaxUploadBytes)
	}
	return cfg, nil
}

func applyFile(cfg *Config, file *fileConfig) error {
	if file.Port != nil {
		cfg.Port = *file.Port
	}
	if file.CORSOrigin != "" {
		cfg.CORSOrigin = file.CORSOrigin
	}
	if file.UploadDir != "" {
		cfg.UploadDir = file.UploadDir
	}
	if file.MaxUploadBytes != nil {
		cfg.MaxUploadBytes = *file.MaxUploadBytes
	}
	if len(file.AllowedMimeTypes) > 0 {
		cfg.AllowedMimeTypes = file.AllowedMimeTypes
	}
	if file.ServerCommand != "" {
		cfg.ServerCommand = file.ServerCommand
	}
	if len(file.ServerArgs) > 0 {
		cfg.ServerArgs = file.ServerArgs
	}
	if file.AuthPath != "" {
		cfg.AuthPath = file.AuthPath
	}
	if file.IngestionWait != "" {
		wait, err := time.ParseDuration(file.IngestionWait)
		if err != nil {
			return fmt.Errorf("ingestion_wait: %w", err)
		}
		cfg.IngestionWait = wait
	}
	if file.CallTimeout != "" {
		timeout, err := time.ParseDuration(file.CallTimeout)
		if err != nil {
			return fmt.Errorf("call_timeout: %w", err)
		}
		cfg.CallTimeout = timeout
	}
	if file.Debug != nil {
		cfg.Debug = *file.Debug
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.Int("PORT", cfg.Port)
	cfg.CORSOrigin = envutil.String("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.UploadDir = envutil.String("UPLOAD_DIR", cfg.UploadDir)
	cfg.MaxUploadBytes = envutil.Int64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.AllowedMimeTypes = envutil.List("ALLOWED_MIME_TYPES", cfg.AllowedMimeTypes)
	cfg.ServerCommand = envutil.String("MCP_SERVER_COMMAND", cfg.ServerCommand)
	cfg.AuthPath = envutil.String("MCP_AUTH_PATH", cfg.AuthPath)
	cfg.IngestionWait = envutil.Duration("INGESTION_WAIT", cfg.IngestionWait)
	cfg.CallTimeout = envutil.Duration("CALL_TIMEOUT", cfg.CallTimeout)
	if envutil.Bool("DEBUG") {
		cfg.Debug = true
	}
}

// MimeAllowed reports whether an uploaded file's declared content type
// is on the audio allowlist.
func (c *Config) MimeAllowed(mimeType string) bool {
	for _, allowed := range c.AllowedMimeTypes {
		if allowed == mimeType {
			return true
		}
	}
	return false
}
