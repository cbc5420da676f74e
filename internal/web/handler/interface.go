package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pyromage/micro-oidc/internal/auth"
	"github.com/pyromage/micro-oidc/internal/config"
	"github.com/pyromage/micro-oidc/internal/web/session"
)

// Deps are the collaborators handlers are built from.
type Deps struct {
	Config   *config.Config
	Registry *auth.Registry
	Sessions *session.Store
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps Deps) error
}
