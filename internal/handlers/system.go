package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/batch-transcription/internal/logging"
)

// SystemHandler serves health and recent log lines.
type SystemHandler struct {
	version string
	model   string
	logs    *logging.Buffer
}

// NewSystemHandler creates a system handler. logs may be nil.
func NewSystemHandler(version, model string, logs *logging.Buffer) *SystemHandler {
	return &SystemHandler{version: version, model: model, logs: logs}
}

// Health reports liveness.
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"version": h.version,
		"model":   h.model,
	})
}

// Logs returns the buffered log lines, oldest first.
func (h *SystemHandler) Logs(c *fiber.Ctx) error {
	lines := []string{}
	if h.logs != nil {
		lines = h.logs.Lines()
	}
	return c.JSON(fiber.Map{
		"logs": lines,
	})
}
