package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/codebuildervaibhav/batch-transcription/internal/workspace"
)

// ItemProcessor processes a single item of a batch.
type ItemProcessor interface {
	Process(ctx context.Context, index int, url string, ws *workspace.Workspace) Outcome
}

// Orchestrator runs every URL of a batch, one at a time, in input order.
type Orchestrator struct {
	processor ItemProcessor
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(processor ItemProcessor, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{processor: processor, logger: logger}
}

// Run attempts every URL regardless of earlier failures and returns one
// outcome per URL, in input order. Failed items are not retried.
func (o *Orchestrator) Run(ctx context.Context, urls []string, ws *workspace.Workspace) []Outcome {
	start := time.Now()
	outcomes := make([]Outcome, 0, len(urls))

	for i, url := range urls {
		o.logger.Debug("processing item", "workspace", ws.ID, "item", i+1, "of", len(urls), "url", url)
		outcomes = append(outcomes, o.processor.Process(ctx, i, url, ws))
	}

	summary := Summarize(outcomes)
	o.logger.Info("batch processed",
		"workspace", ws.ID,
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return outcomes
}
