package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/codebuildervaibhav/batch-transcription/internal/archive"
	"github.com/codebuildervaibhav/batch-transcription/internal/workspace"
)

// Validation errors: the batch is rejected before any workspace exists.
var (
	ErrEmptyBatch    = errors.New("no URLs provided")
	ErrBatchTooLarge = errors.New("too many URLs")
	ErrBlankURL      = errors.New("blank URL")
)

// IsValidation reports whether err is a client error from Validate.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyBatch) || errors.Is(err, ErrBatchTooLarge) || errors.Is(err, ErrBlankURL)
}

// ServiceOptions configures batch execution.
type ServiceOptions struct {
	MaxURLs         int
	IncludeManifest bool
}

// Service runs a whole batch: validate, acquire a workspace, process every
// item, and build the archive.
type Service struct {
	workspaces   *workspace.Manager
	orchestrator *Orchestrator
	opts         ServiceOptions
	logger       *slog.Logger
}

// NewService creates a batch service.
func NewService(workspaces *workspace.Manager, orchestrator *Orchestrator, opts ServiceOptions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{workspaces: workspaces, orchestrator: orchestrator, opts: opts, logger: logger}
}

// Validate checks a batch request.
func (s *Service) Validate(urls []string) error {
	if len(urls) == 0 {
		return ErrEmptyBatch
	}
	if s.opts.MaxURLs > 0 && len(urls) > s.opts.MaxURLs {
		return fmt.Errorf("%w: %d submitted, limit is %d", ErrBatchTooLarge, len(urls), s.opts.MaxURLs)
	}
	for i, u := range urls {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("%w at position %d", ErrBlankURL, i+1)
		}
	}
	return nil
}

// Run executes the batch. On success the caller owns the returned Batch and
// must Release it (directly or by closing the reader from Open). On error no
// workspace is left behind.
func (s *Service) Run(ctx context.Context, urls []string) (*Batch, error) {
	if err := s.Validate(urls); err != nil {
		return nil, err
	}

	ws, err := s.workspaces.Acquire()
	if err != nil {
		return nil, err
	}

	batch := &Batch{workspace: ws, manager: s.workspaces}
	ok := false
	defer func() {
		if !ok {
			_ = batch.Release()
		}
	}()

	batch.Outcomes = s.orchestrator.Run(ctx, urls, ws)

	var extras []archive.Entry
	if s.opts.IncludeManifest {
		data, err := Manifest(batch.Outcomes)
		if err != nil {
			return nil, fmt.Errorf("render manifest: %w", err)
		}
		extras = append(extras, archive.Entry{Name: ManifestName, Data: data})
	}

	batch.Archive, err = archive.Build(ws.TranscriptDir, ws.ArchivePath(), extras...)
	if err != nil {
		return nil, &workspace.Error{Op: "build archive", Path: ws.ArchivePath(), Err: err}
	}

	summary := Summarize(batch.Outcomes)
	s.logger.Info("archive ready",
		"workspace", ws.ID,
		"transcripts", summary.Succeeded,
		"failed", summary.Failed,
		"bytes", batch.Archive.Size,
	)
	ok = true
	return batch, nil
}

// Batch is a completed batch whose workspace is still alive.
type Batch struct {
	Outcomes []Outcome
	Archive  archive.Result

	workspace *workspace.Workspace
	manager   *workspace.Manager
}

// Release deletes the batch's workspace. It is safe to call more than once.
func (b *Batch) Release() error {
	return b.manager.Release(b.workspace)
}

// Open returns the archive contents and size. Closing the reader releases the workspace.
func (b *Batch) Open() (io.ReadCloser, int64, error) {
	f, err := os.Open(b.Archive.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("open archive: %w", err)
	}
	return &releasingReader{File: f, release: b.Release}, b.Archive.Size, nil
}

// releasingReader tears the workspace down once the response body is done with it.
type releasingReader struct {
	*os.File
	release func() error
	once    sync.Once
	err     error
}

func (r *releasingReader) Close() error {
	r.once.Do(func() {
		r.err = errors.Join(r.File.Close(), r.release())
	})
	return r.err
}
