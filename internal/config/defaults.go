package config

import (
	"os"
	"path/filepath"
	"time"
)

// Engine names accepted by whisper.engine.
const (
	EngineCLI    = "cli"
	EngineServer = "server"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ShutdownTimeout: 30 * time.Second,
		},
		Fetcher: FetcherConfig{
			Binary:  "yt-dlp",
			Format:  "bestaudio",
			Codec:   "mp3",
			Quality: "192",
			Timeout: 30 * time.Minute,
		},
		Whisper: WhisperConfig{
			Engine:  EngineCLI,
			Command: "python",
			Model:   "base",
			Device:  "cpu",
			FFmpeg:  "ffmpeg",
			Timeout: time.Hour,
		},
		Workspace: WorkspaceConfig{
			Root:          filepath.Join(os.TempDir(), "batch-transcription"),
			SweepInterval: 30 * time.Minute,
			MaxAge:        6 * time.Hour,
		},
		Limits: LimitsConfig{
			MaxURLs: 100,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "auto",
			BufferLines: 1000,
		},
	}
}
