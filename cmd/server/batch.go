package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/batch-transcription/internal/logging"
	"github.com/codebuildervaibhav/batch-transcription/internal/pipeline"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "batch URL...",
		Short: "Transcribe URLs once and write the archive to disk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, _ := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				BufferLines: cfg.Logging.BufferLines,
				Output:      cmd.ErrOrStderr(),
			})
			svc, err := newServices(cfg, logger)
			if err != nil {
				return err
			}

			batch, err := svc.service.Run(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer batch.Release()

			if err := copyArchive(batch, output); err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), renderOutcomes(batch.Outcomes))
			summary := pipeline.Summarize(batch.Outcomes)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d of %d transcribed)\n", output, summary.Succeeded, summary.Total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "transcriptions.zip", "Where to write the archive")
	return cmd
}

func copyArchive(batch *pipeline.Batch, dest string) (err error) {
	src, _, err := batch.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	dst, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() {
		err = errors.Join(err, dst.Close())
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
