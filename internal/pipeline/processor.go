package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/codebuildervaibhav/batch-transcription/internal/storage"
	"github.com/codebuildervaibhav/batch-transcription/internal/types"
	"github.com/codebuildervaibhav/batch-transcription/internal/workspace"
)

// ErrNoOutput means the fetcher reported success but left no matching audio file.
var ErrNoOutput = errors.New("no audio file found after fetch")

// Fetcher downloads the audio for one URL into a directory without reporting the file it wrote.
type Fetcher interface {
	Fetch(ctx context.Context, url, targetDir string) error
	Extension() string
}

// Transcriber converts one audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error)
}

// Processor drives one URL through fetch, locate, transcribe, store and
// cleanup. It never returns an error or panics: every failure becomes an Outcome.
type Processor struct {
	fetcher     Fetcher
	transcriber Transcriber
	logger      *slog.Logger
}

// NewProcessor creates a processor.
func NewProcessor(fetcher Fetcher, transcriber Transcriber, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{fetcher: fetcher, transcriber: transcriber, logger: logger}
}

// Process handles the item at index.
func (p *Processor) Process(ctx context.Context, index int, url string, ws *workspace.Workspace) (out Outcome) {
	start := time.Now()
	stage := StageWorkspace
	logger := p.logger.With("item", index+1, "url", url)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic processing item", "stage", stage, "panic", r, "stack", string(debug.Stack()))
			out = failed(index, url, stage, fmt.Errorf("panic: %v", r))
		}
		out.Elapsed = time.Since(start)
		if out.Err != nil {
			logger.Warn("item failed", "stage", out.Stage, "error", out.Err)
		}
	}()

	itemDir, err := ws.ItemDir(index)
	if err != nil {
		return failed(index, url, stage, err)
	}

	stage = StageFetch
	if err := p.fetcher.Fetch(ctx, url, itemDir); err != nil {
		return failed(index, url, stage, err)
	}

	stage = StageLocate
	audioPath, err := LocateOutput(itemDir, p.fetcher.Extension(), logger)
	if err != nil {
		return failed(index, url, stage, err)
	}

	stage = StageTranscribe
	result, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return failed(index, url, stage, err)
	}

	stage = StageStore
	transcriptPath, err := storage.NewLocalStorage(ws.TranscriptDir).SaveTranscript(audioPath, result)
	if err != nil {
		return failed(index, url, stage, err)
	}

	// Source audio is no longer needed; the item dir holds nothing else of value.
	if err := os.RemoveAll(itemDir); err != nil {
		logger.Warn("failed to remove staged audio", "path", itemDir, "error", err)
	}

	logger.Info("item transcribed",
		"audio", filepath.Base(audioPath),
		"transcript", filepath.Base(transcriptPath),
		"words", result.WordCount,
	)
	return transcribed(index, url, filepath.Base(audioPath), transcriptPath, result)
}

// LocateOutput returns the first regular file in dir whose extension matches
// ext, in lexical name order. Additional matches are logged and ignored.
func LocateOutput(dir, ext string, logger *slog.Logger) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", dir, err)
	}

	var matches []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			matches = append(matches, entry.Name())
		}
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no %s file in %s", ErrNoOutput, ext, dir)
	}
	if len(matches) > 1 && logger != nil {
		logger.Warn("fetch produced several audio files, using the first",
			"chosen", matches[0],
			"ignored", matches[1:],
		)
	}
	return filepath.Join(dir, matches[0]), nil
}
