// Package fetcher downloads the audio track of a remote media URL with yt-dlp.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// OutputTemplate names the produced file after the media title.
const OutputTemplate = "%(title)s.%(ext)s"

// maxOutputLen bounds how much subprocess output is kept on a FetchError.
const maxOutputLen = 2000

// Options is the fixed fetch profile for the process.
type Options struct {
	Binary     string
	Format     string
	Codec      string
	Quality    string
	NoPlaylist bool
	ExtraArgs  []string
	Timeout    time.Duration
}

// FetchError reports a failed download, unsupported source, or transcoding failure.
type FetchError struct {
	URL    string
	Output string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v: %s", e.URL, e.Err, e.Output)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// YtDlp fetches audio by shelling out to yt-dlp.
type YtDlp struct {
	opts   Options
	run    Runner
	logger *slog.Logger
}

// New creates a fetcher for the given profile.
func New(opts Options, logger *slog.Logger) *YtDlp {
	if opts.Binary == "" {
		opts.Binary = "yt-dlp"
	}
	if opts.Format == "" {
		opts.Format = "bestaudio"
	}
	opts.Codec = strings.TrimPrefix(strings.ToLower(opts.Codec), ".")
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &YtDlp{opts: opts, run: execRunner, logger: logger}
}

// WithRunner replaces the command runner (for testing).
func (f *YtDlp) WithRunner(run Runner) *YtDlp {
	f.run = run
	return f
}

// Extension is the file extension of the audio files this fetcher produces.
func (f *YtDlp) Extension() string {
	return "." + f.opts.Codec
}

// Fetch downloads the audio for url into targetDir. It does not report the
// produced path; callers locate it by listing targetDir.
func (f *YtDlp) Fetch(ctx context.Context, url, targetDir string) error {
	if strings.TrimSpace(url) == "" {
		return &FetchError{URL: url, Err: errors.New("empty url")}
	}
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	args := BuildArgs(f.opts, url, targetDir)
	f.logger.Info("fetching audio", "url", url, "codec", f.opts.Codec, "quality", f.opts.Quality)

	start := time.Now()
	output, err := f.run(ctx, f.opts.Binary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return &FetchError{URL: url, Output: trimOutput(output), Err: err}
	}

	f.logger.Info("audio fetched", "url", url, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// BuildArgs builds the yt-dlp argument list for one URL.
func BuildArgs(opts Options, url, targetDir string) []string {
	args := []string{
		"-f", opts.Format,
		"-x",
		"--audio-format", opts.Codec,
	}
	if opts.Quality != "" {
		args = append(args, "--audio-quality", opts.Quality)
	}
	if opts.NoPlaylist {
		args = append(args, "--no-playlist")
	}
	args = append(args,
		"--no-progress",
		"-o", filepath.Join(targetDir, OutputTemplate),
	)
	args = append(args, opts.ExtraArgs...)
	return append(args, "--", url)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

func trimOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutputLen {
		s = "..." + s[len(s)-maxOutputLen:]
	}
	return s
}
