// Package handlers exposes the batch pipeline over HTTP.
package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the fiber application with middleware and routes.
func NewApp(batch *BatchHandler, system *SystemHandler, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	app := fiber.New(fiber.Config{
		AppName:               "batch-transcription",
		DisableStartupMessage: true,
	})

	app.Use(RequestLogger(logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept",
		ExposeHeaders: "Content-Disposition, " + HeaderRequestID,
	}))

	app.Get("/health", system.Health)
	app.Get("/logs", system.Logs)

	app.Post("/transcribe", batch.Handle)
	app.Post("/transcribir", batch.Handle)

	return app
}
