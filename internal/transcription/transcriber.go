// Package transcription owns the process-wide speech-to-text engine and
// guarantees that at most one transcription runs at a time.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/codebuildervaibhav/batch-transcription/internal/types"
)

// Transcriber is the single shared entry point to an Engine. Construct it
// once at startup and pass it to every request handler.
type Transcriber struct {
	engine  Engine
	sem     *semaphore.Weighted
	timeout time.Duration
	logger  *slog.Logger
}

// New wraps engine. timeout bounds each call once it holds the engine; zero disables it.
func New(engine Engine, timeout time.Duration, logger *slog.Logger) *Transcriber {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transcriber{
		engine:  engine,
		sem:     semaphore.NewWeighted(1),
		timeout: timeout,
		logger:  logger,
	}
}

// Model returns the engine's model name.
func (t *Transcriber) Model() string {
	return t.engine.Name()
}

// Check verifies the engine is usable.
func (t *Transcriber) Check(ctx context.Context) error {
	return t.engine.Check(ctx)
}

// Transcribe converts one audio file into text. Calls from any number of
// goroutines are executed one at a time.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
	if !ValidateAudioFormat(audioPath) {
		return nil, &TranscriptionError{AudioPath: audioPath, Err: errors.New("unsupported audio format")}
	}

	waitStart := time.Now()
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, &TranscriptionError{AudioPath: audioPath, Err: fmt.Errorf("waiting for engine: %w", err)}
	}
	defer t.sem.Release(1)

	if waited := time.Since(waitStart); waited > time.Second {
		t.logger.Debug("waited for transcription engine", "audio", audioPath, "waited", waited.Round(time.Millisecond))
	}

	callCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := t.engine.Transcribe(callCtx, audioPath)
	if err != nil {
		if ctxErr := callCtx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, &TranscriptionError{AudioPath: audioPath, Err: err}
	}
	if result == nil {
		return nil, &TranscriptionError{AudioPath: audioPath, Err: errors.New("engine returned no result")}
	}

	result.Elapsed = time.Since(start)
	result.WordCount = len(strings.Fields(result.Text))
	if result.Model == "" {
		result.Model = t.engine.Name()
	}

	t.logger.Info("transcription completed",
		"audio", audioPath,
		"words", result.WordCount,
		"audio_seconds", result.Duration,
		"elapsed", result.Elapsed.Round(time.Millisecond),
	)
	return result, nil
}
