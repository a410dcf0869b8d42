package main

import (
	"fmt"
	"log/slog"

	"github.com/codebuildervaibhav/batch-transcription/internal/config"
	"github.com/codebuildervaibhav/batch-transcription/internal/fetcher"
	"github.com/codebuildervaibhav/batch-transcription/internal/pipeline"
	"github.com/codebuildervaibhav/batch-transcription/internal/transcription"
	"github.com/codebuildervaibhav/batch-transcription/internal/workspace"
)

// services holds the long-lived components shared by every batch.
type services struct {
	transcriber *transcription.Transcriber
	workspaces  *workspace.Manager
	service     *pipeline.Service
}

func newServices(cfg *config.Config, logger *slog.Logger) (*services, error) {
	engine, err := newEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	transcriber := transcription.New(engine, cfg.Whisper.Timeout, logger)

	audio := fetcher.New(fetcher.Options{
		Binary:     cfg.Fetcher.Binary,
		Format:     cfg.Fetcher.Format,
		Codec:      cfg.Fetcher.Codec,
		Quality:    cfg.Fetcher.Quality,
		NoPlaylist: cfg.Fetcher.NoPlaylist,
		ExtraArgs:  cfg.Fetcher.ExtraArgs,
		Timeout:    cfg.Fetcher.Timeout,
	}, logger)

	workspaces := workspace.NewManager(cfg.Workspace.Root, logger)
	processor := pipeline.NewProcessor(audio, transcriber, logger)
	service := pipeline.NewService(workspaces, pipeline.NewOrchestrator(processor, logger), pipeline.ServiceOptions{
		MaxURLs:         cfg.Limits.MaxURLs,
		IncludeManifest: cfg.Archive.IncludeManifest,
	}, logger)

	return &services{transcriber: transcriber, workspaces: workspaces, service: service}, nil
}

func newEngine(cfg *config.Config, logger *slog.Logger) (transcription.Engine, error) {
	switch cfg.Whisper.Engine {
	case config.EngineCLI:
		return transcription.NewWhisperCLI(transcription.CLIOptions{
			Command:   cfg.Whisper.Command,
			Model:     cfg.Whisper.Model,
			Language:  cfg.Whisper.Language,
			Device:    cfg.Whisper.Device,
			Threads:   cfg.Whisper.Threads,
			Normalize: cfg.Whisper.Normalize,
			FFmpeg:    cfg.Whisper.FFmpeg,
		}, logger), nil
	case config.EngineServer:
		return transcription.NewWhisperServer(transcription.ServerOptions{
			Endpoint: cfg.Whisper.Endpoint,
			Model:    cfg.Whisper.Model,
			Language: cfg.Whisper.Language,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown whisper engine %q", cfg.Whisper.Engine)
	}
}
