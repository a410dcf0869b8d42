package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/batch-transcription/internal/types"
)

// ServerOptions configures a remote whisper ASR web service.
type ServerOptions struct {
	Endpoint string
	Model    string
	Language string
}

// WhisperServer sends audio to a long-running whisper ASR service, which
// keeps the model loaded between requests.
type WhisperServer struct {
	opts   ServerOptions
	logger *slog.Logger
}

// asrResponse matches the service's JSON output.
type asrResponse struct {
	Task     string           `json:"task"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []WhisperSegment `json:"segments"`
	Text     string           `json:"text"`
}

// NewWhisperServer creates an engine for the given endpoint, e.g. http://localhost:9000/asr.
func NewWhisperServer(opts ServerOptions, logger *slog.Logger) *WhisperServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &WhisperServer{opts: opts, logger: logger}
}

// Name returns the model identifier.
func (s *WhisperServer) Name() string {
	if s.opts.Model == "" {
		return "whisper-server"
	}
	return "whisper-" + s.opts.Model
}

// Check verifies the service answers on its root URL.
func (s *WhisperServer) Check(ctx context.Context) error {
	root, err := rootURL(s.opts.Endpoint)
	if err != nil {
		return err
	}

	agent := fiber.Get(root)
	applyDeadline(ctx, agent)
	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("whisper server unreachable: %w", errors.Join(errs...))
	}
	if code >= fiber.StatusInternalServerError {
		return fmt.Errorf("whisper server unhealthy: status %d", code)
	}
	return nil
}

// Transcribe uploads the audio file and parses the JSON transcript.
func (s *WhisperServer) Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
	query := url.Values{}
	query.Set("task", "transcribe")
	query.Set("output", "json")
	if lang := normalizeLanguage(s.opts.Language); lang != "" {
		query.Set("language", lang)
	}

	agent := fiber.Post(s.opts.Endpoint)
	applyDeadline(ctx, agent)
	agent.QueryString(query.Encode())
	agent.SendFile(audioPath, "audio_file").MultipartForm(nil)

	start := time.Now()
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("whisper server request failed: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("whisper server returned status %d: %s", code, truncate(string(body), 500))
	}

	var resp asrResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse whisper server response: %w", err)
	}

	segments := make([]types.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = types.Segment{Start: seg.Start, End: seg.End, Text: strings.TrimSpace(seg.Text)}
	}

	s.logger.Debug("whisper server responded", "audio", audioPath, "elapsed", time.Since(start).Round(time.Millisecond))
	return &types.TranscriptionResult{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Duration: resp.Duration,
		Segments: segments,
		Model:    s.Name(),
	}, nil
}

// fasthttp has no context support; carry the deadline over as a timeout.
func applyDeadline(ctx context.Context, agent *fiber.Agent) {
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	}
}

func rootURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid whisper endpoint %q", endpoint)
	}
	return u.Scheme + "://" + u.Host + "/", nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
