package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codebuildervaibhav/batch-transcription/internal/types"
)

// CLIOptions configures the Python Whisper command line engine.
type CLIOptions struct {
	Command   string
	Model     string
	Language  string
	Device    string
	Threads   int
	Normalize bool
	FFmpeg    string
}

// WhisperCLI wraps Python's OpenAI Whisper for transcription
type WhisperCLI struct {
	opts   CLIOptions
	run    Runner
	logger *slog.Logger
}

// NewWhisperCLI creates an engine that runs `python -m whisper`.
func NewWhisperCLI(opts CLIOptions, logger *slog.Logger) *WhisperCLI {
	if opts.Command == "" {
		opts.Command = "python"
	}
	if opts.Model == "" {
		opts.Model = "base"
	}
	if opts.FFmpeg == "" {
		opts.FFmpeg = "ffmpeg"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &WhisperCLI{opts: opts, run: execRunner, logger: logger}
}

// WithRunner replaces the command runner (for testing).
func (w *WhisperCLI) WithRunner(run Runner) *WhisperCLI {
	w.run = run
	return w
}

// Name returns the model identifier.
func (w *WhisperCLI) Name() string {
	return "whisper-" + w.opts.Model
}

// Check verifies the interpreter can import whisper.
func (w *WhisperCLI) Check(ctx context.Context) error {
	out, err := w.run(ctx, w.opts.Command, "-c", "import whisper")
	if err != nil {
		return fmt.Errorf("whisper not importable with %s: %w: %s", w.opts.Command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Transcribe processes an audio file and returns the transcript.
// Intermediate files are written next to the audio file and removed afterwards.
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
	absAudioPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	outputDir, err := os.MkdirTemp(filepath.Dir(absAudioPath), "whisper-*")
	if err != nil {
		return nil, fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	input := absAudioPath
	if w.opts.Normalize {
		input, err = NormalizeAudio(ctx, w.run, w.opts.FFmpeg, absAudioPath, outputDir)
		if err != nil {
			return nil, err
		}
	}

	args := w.buildArgs(input, outputDir)
	w.logger.Debug("running whisper", "audio", audioPath, "model", w.opts.Model)

	output, err := w.run(ctx, w.opts.Command, args...)
	if err != nil {
		return nil, fmt.Errorf("whisper failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	baseName := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	jsonData, err := os.ReadFile(filepath.Join(outputDir, baseName+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper output: %w", err)
	}

	result, err := parseWhisperJSON(jsonData)
	if err != nil {
		return nil, err
	}
	result.Model = w.Name()
	return result, nil
}

func (w *WhisperCLI) buildArgs(audioPath, outputDir string) []string {
	args := []string{"-m", "whisper",
		audioPath,
		"--model", w.opts.Model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--verbose", "False",
	}
	if lang := normalizeLanguage(w.opts.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	if w.opts.Device != "" {
		args = append(args, "--device", w.opts.Device)
		if w.opts.Device == "cpu" {
			args = append(args, "--fp16", "False")
		}
	}
	if w.opts.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(w.opts.Threads))
	}
	return args
}

// WhisperOutput matches Whisper's JSON output format
type WhisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []WhisperSegment `json:"segments"`
}

// WhisperSegment represents a timestamped segment from Whisper
type WhisperSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func parseWhisperJSON(data []byte) (*types.TranscriptionResult, error) {
	var out WhisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisper JSON: %w", err)
	}

	segments := make([]types.Segment, len(out.Segments))
	for i, seg := range out.Segments {
		segments[i] = types.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		}
	}

	duration := out.Duration
	if duration == 0 && len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	return &types.TranscriptionResult{
		Text:     strings.TrimSpace(out.Text),
		Language: out.Language,
		Duration: duration,
		Segments: segments,
	}, nil
}

// normalizeLanguage maps "auto" and empty language to no CLI override.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}
