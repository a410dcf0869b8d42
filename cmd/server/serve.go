package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/batch-transcription/internal/cleanup"
	"github.com/codebuildervaibhav/batch-transcription/internal/deps"
	"github.com/codebuildervaibhav/batch-transcription/internal/handlers"
	"github.com/codebuildervaibhav/batch-transcription/internal/logging"
)

// engineCheckTimeout bounds the startup probe of the transcription engine.
const engineCheckTimeout = 30 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP batch endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(cmdCtx context.Context, ctx *commandContext) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logBuffer := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		BufferLines: cfg.Logging.BufferLines,
	})
	logger.Info("initializing components", "engine", cfg.Whisper.Engine, "model", cfg.Whisper.Model)

	svc, err := newServices(cfg, logger)
	if err != nil {
		return err
	}

	for _, missing := range deps.Missing(deps.CheckBinaries(deps.Requirements(cfg))) {
		logger.Warn("dependency unavailable", "name", missing.Name, "command", missing.Command, "detail", missing.Detail)
	}

	checkCtx, checkCancel := context.WithTimeout(signalCtx, engineCheckTimeout)
	if err := svc.transcriber.Check(checkCtx); err != nil {
		logger.Warn("transcription engine not ready; items will fail at the transcribe stage", "error", err)
	} else {
		logger.Info("transcription engine ready", "model", svc.transcriber.Model())
	}
	checkCancel()

	sweeper := cleanup.NewScheduler(svc.workspaces.Base(), cfg.Workspace.SweepInterval, cfg.Workspace.MaxAge, logger).
		WithLive(svc.workspaces)
	sweeper.Start()
	defer sweeper.Stop()

	app := handlers.NewApp(
		handlers.NewBatchHandler(svc.service, logger),
		handlers.NewSystemHandler(version, svc.transcriber.Model(), logBuffer),
		logger,
	)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.Addr())
	}()
	logger.Info("server starting",
		"addr", cfg.Addr(),
		"endpoints", []string{"POST /transcribe", "GET /health", "GET /logs"},
	)

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-signalCtx.Done():
	}

	logger.Info("shutting down gracefully", "timeout", cfg.Server.ShutdownTimeout)
	if cfg.Server.ShutdownTimeout > 0 {
		err = app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout)
	} else {
		err = app.Shutdown()
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
