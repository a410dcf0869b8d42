package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderRequestID carries the per-request id on responses.
const HeaderRequestID = "X-Request-ID"

// slowRequestThreshold is the duration above which short requests are logged at WARN level.
const slowRequestThreshold = time.Second

// localsLongRunning marks requests that are expected to exceed slowRequestThreshold.
const localsLongRunning = "long_running"

// RequestLogger returns middleware that logs every request with timing.
// 5xx responses are logged at ERROR, 4xx and slow requests at WARN.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		attrs := []any{
			"request_id", id,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", duration.Milliseconds(),
		}
		longRunning, _ := c.Locals(localsLongRunning).(bool)

		switch {
		case status >= fiber.StatusInternalServerError:
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			logger.Error("request failed", attrs...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request rejected", attrs...)
		case duration > slowRequestThreshold && !longRunning:
			logger.Warn("slow request", attrs...)
		default:
			logger.Info("request completed", attrs...)
		}
		return err
	}
}
