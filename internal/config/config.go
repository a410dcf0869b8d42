package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Fetcher   FetcherConfig   `yaml:"fetcher"`
	Whisper   WhisperConfig   `yaml:"whisper"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Limits    LimitsConfig    `yaml:"limits"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// FetcherConfig configures the yt-dlp audio fetcher.
type FetcherConfig struct {
	Binary     string        `yaml:"binary"`
	Format     string        `yaml:"format"`
	Codec      string        `yaml:"codec"`
	Quality    string        `yaml:"quality"`
	NoPlaylist bool          `yaml:"no_playlist"`
	ExtraArgs  []string      `yaml:"extra_args"`
	Timeout    time.Duration `yaml:"timeout"`
}

// WhisperConfig selects and configures the transcription engine.
type WhisperConfig struct {
	Engine    string        `yaml:"engine"`
	Command   string        `yaml:"command"`
	Model     string        `yaml:"model"`
	Language  string        `yaml:"language"`
	Device    string        `yaml:"device"`
	Threads   int           `yaml:"threads"`
	Endpoint  string        `yaml:"endpoint"`
	Normalize bool          `yaml:"normalize"`
	FFmpeg    string        `yaml:"ffmpeg"`
	Timeout   time.Duration `yaml:"timeout"`
}

// WorkspaceConfig controls where request workspaces live and how leftovers are swept.
type WorkspaceConfig struct {
	Root          string        `yaml:"root"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	MaxAge        time.Duration `yaml:"max_age"`
}

// ArchiveConfig controls archive contents.
type ArchiveConfig struct {
	IncludeManifest bool `yaml:"include_manifest"`
}

// LimitsConfig bounds request sizes.
type LimitsConfig struct {
	MaxURLs int `yaml:"max_urls"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	BufferLines int    `yaml:"buffer_lines"`
}

// Load reads the YAML file at path on top of Default(), applies .env and
// TRANSCRIBER_* environment overrides, and validates the result.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Host, "TRANSCRIBER_HOST")
	if raw := os.Getenv("TRANSCRIBER_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("TRANSCRIBER_PORT: invalid port %q", raw)
		}
		c.Server.Port = port
	}
	setString(&c.Logging.Level, "TRANSCRIBER_LOG_LEVEL")
	setString(&c.Logging.Format, "TRANSCRIBER_LOG_FORMAT")
	setString(&c.Workspace.Root, "TRANSCRIBER_WORKSPACE_ROOT")
	setString(&c.Whisper.Engine, "TRANSCRIBER_WHISPER_ENGINE")
	setString(&c.Whisper.Model, "TRANSCRIBER_WHISPER_MODEL")
	setString(&c.Whisper.Endpoint, "TRANSCRIBER_WHISPER_ENDPOINT")
	return nil
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func (c *Config) normalize() {
	c.Fetcher.Codec = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Fetcher.Codec), "."))
	c.Whisper.Engine = strings.ToLower(strings.TrimSpace(c.Whisper.Engine))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Workspace.Root = strings.TrimSpace(c.Workspace.Root)
}
