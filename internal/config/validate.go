package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/codebuildervaibhav/batch-transcription/internal/types"
)

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", c.Server.Port))
	}

	if strings.TrimSpace(c.Fetcher.Binary) == "" {
		errs = append(errs, errors.New("fetcher.binary: required"))
	}
	if !slices.Contains(types.SupportedAudioFormats, c.Fetcher.Codec) {
		errs = append(errs, fmt.Errorf("fetcher.codec: unsupported audio format %q", c.Fetcher.Codec))
	}
	if !validQuality(c.Fetcher.Quality) {
		errs = append(errs, fmt.Errorf("fetcher.quality: %q must be a positive number", c.Fetcher.Quality))
	}
	if c.Fetcher.Timeout < 0 {
		errs = append(errs, errors.New("fetcher.timeout: must not be negative"))
	}

	switch c.Whisper.Engine {
	case EngineCLI:
		if strings.TrimSpace(c.Whisper.Command) == "" {
			errs = append(errs, errors.New("whisper.command: required for cli engine"))
		}
	case EngineServer:
		if strings.TrimSpace(c.Whisper.Endpoint) == "" {
			errs = append(errs, errors.New("whisper.endpoint: required for server engine"))
		}
	default:
		errs = append(errs, fmt.Errorf("whisper.engine: unknown engine %q", c.Whisper.Engine))
	}
	if c.Whisper.Timeout < 0 {
		errs = append(errs, errors.New("whisper.timeout: must not be negative"))
	}
	if c.Whisper.Normalize && strings.TrimSpace(c.Whisper.FFmpeg) == "" {
		errs = append(errs, errors.New("whisper.ffmpeg: required when normalize is enabled"))
	}

	if c.Workspace.Root == "" {
		errs = append(errs, errors.New("workspace.root: required"))
	}
	if c.Workspace.SweepInterval < 0 || c.Workspace.MaxAge < 0 {
		errs = append(errs, errors.New("workspace: sweep_interval and max_age must not be negative"))
	}

	if c.Limits.MaxURLs < 0 {
		errs = append(errs, errors.New("limits.max_urls: must not be negative"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// yt-dlp accepts either a 0-10 VBR scale or a bitrate such as 192 or 192K.
func validQuality(q string) bool {
	q = strings.TrimSuffix(strings.TrimSpace(q), "K")
	if q == "" {
		return false
	}
	for _, r := range q {
		if r < '0' || r > '9' {
			return false
		}
	}
	return strings.Trim(q, "0") != ""
}
