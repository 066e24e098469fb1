package bootstrap

import (
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/app"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/config"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for the serverless entry point, which imports this
// package rather than internal.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.CreateApp(cfg)
}
