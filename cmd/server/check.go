package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/batch-transcription/internal/deps"
	"github.com/codebuildervaibhav/batch-transcription/internal/logging"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether external dependencies are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))

			svc, err := newServices(cfg, logging.Discard())
			if err != nil {
				return err
			}
			checkCtx, cancel := context.WithTimeout(cmd.Context(), engineCheckTimeout)
			defer cancel()
			engineErr := svc.transcriber.Check(checkCtx)

			fmt.Fprintln(cmd.OutOrStdout(), renderDependencies(statuses, svc.transcriber.Model(), engineErr))

			unavailable := len(deps.Missing(statuses))
			if engineErr != nil {
				unavailable++
			}
			if unavailable > 0 {
				return fmt.Errorf("%d required dependencies unavailable", unavailable)
			}
			return nil
		},
	}
}
