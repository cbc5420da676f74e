// Package home renders the landing page listing the configured providers.
package home

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pyromage/micro-oidc/internal/auth"
	"github.com/pyromage/micro-oidc/internal/config"
	"github.com/pyromage/micro-oidc/internal/web/handler"
)

// Path is the path to the landing page.
const Path = handler.RootPath

// Service is the landing page handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	registry *auth.Registry
}

// Handler is the landing page handler.
var Handler = Service{}

// Init initializes the landing page handler.
func (s *Service) Init(app *fiber.App, deps handler.Deps) error {
	if app == nil || deps.Config == nil || deps.Registry == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = deps.Config
	s.registry = deps.Registry

	app.Get(Path, s.Get)

	return nil
}

// Get renders the provider list with each provider's availability.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(handler.TemplateIndex, fiber.Map{
		"Title":     s.cfg.Title,
		"Providers": s.registry.Providers(),
	}, handler.BaseLayout)
}
