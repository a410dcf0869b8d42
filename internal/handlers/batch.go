package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/batch-transcription/internal/pipeline"
	"github.com/codebuildervaibhav/batch-transcription/internal/workspace"
)

// ArchiveFilename is the attachment name of every batch response.
const ArchiveFilename = "transcriptions.zip"

// BatchHandler turns a list of media URLs into a zip of transcripts.
type BatchHandler struct {
	service *pipeline.Service
	logger  *slog.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(service *pipeline.Service, logger *slog.Logger) *BatchHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BatchHandler{service: service, logger: logger}
}

// BatchRequest represents the request body
type BatchRequest struct {
	URLs []string `json:"urls"`
}

// Handle runs the whole batch and streams the archive back. Per-item failures
// never change the status; the archive simply holds fewer transcripts.
func (h *BatchHandler) Handle(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if err := h.service.Validate(req.URLs); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  validationCode(err),
		})
	}

	c.Locals(localsLongRunning, true)

	// The batch keeps running if the client goes away; the workspace is
	// released either when the stream closes or on the error paths below.
	ctx := context.WithoutCancel(c.UserContext())
	batch, err := h.service.Run(ctx, req.URLs)
	if err != nil {
		return h.fail(c, err)
	}

	body, size, err := batch.Open()
	if err != nil {
		_ = batch.Release()
		return h.fail(c, err)
	}

	c.Attachment(ArchiveFilename)
	c.Set(fiber.HeaderContentType, "application/zip")
	return c.SendStream(body, int(size))
}

func (h *BatchHandler) fail(c *fiber.Ctx, err error) error {
	if pipeline.IsValidation(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  validationCode(err),
		})
	}

	h.logger.Error("batch failed", "error", err)

	code := "ERR_INTERNAL"
	var wsErr *workspace.Error
	if errors.As(err, &wsErr) {
		code = "ERR_WORKSPACE"
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to process batch",
		"code":  code,
	})
}

func validationCode(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrEmptyBatch):
		return "ERR_NO_URLS"
	case errors.Is(err, pipeline.ErrBatchTooLarge):
		return "ERR_TOO_MANY_URLS"
	case errors.Is(err, pipeline.ErrBlankURL):
		return "ERR_BLANK_URL"
	default:
		return "ERR_INVALID_REQUEST"
	}
}
