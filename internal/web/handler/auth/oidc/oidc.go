package oidc

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/pyromage/micro-oidc/internal/auth"
	"github.com/pyromage/micro-oidc/internal/config"
	"github.com/pyromage/micro-oidc/internal/web/handler"
	"github.com/pyromage/micro-oidc/internal/web/session"
)

const (
	// LoginPath redirects to the first configured provider.
	LoginPath = handler.RootPath + "auth"

	// ProviderPath starts a flow for one provider.
	ProviderPath = LoginPath + "/:provider"

	// CallbackPath is where providers redirect back to.
	CallbackPath = config.CallbackPath
)

// Service is the OIDC handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	registry  *auth.Registry
	sessions  *session.Store
	initiator *auth.Initiator
	callback  *auth.CallbackHandler
}

// Handler is the OIDC handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, deps handler.Deps) error {
	if app == nil || deps.Config == nil || deps.Registry == nil || deps.Sessions == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.cfg = deps.Config
	s.registry = deps.Registry
	s.sessions = deps.Sessions
	s.initiator = auth.NewInitiator(deps.Registry)
	s.callback = auth.NewCallbackHandler(deps.Registry)

	// order matters: /auth/callback must win over /auth/:provider
	app.Get(CallbackPath, s.Callback)
	app.Get(LoginPath, s.Login)
	app.Get(ProviderPath, s.Begin)

	return nil
}

// Login redirects to the first configured provider.
func (s *Service) Login(c *fiber.Ctx) error {
	providers := s.registry.Providers()
	if len(providers) == 0 {
		return fiber.ErrNotFound
	}

	return c.Redirect(LoginPath+"/"+providers[0].ID, fiber.StatusFound)
}

// Begin starts the flow for the provider in the path.
func (s *Service) Begin(c *fiber.Ctx) error {
	providerID := c.Params("provider")

	flow, err := s.sessions.Flow(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to load session")
		return handler.RenderError(c, fiber.StatusInternalServerError,
			"Authentication Error", "Failed to start authentication.")
	}

	authURL, err := s.initiator.Begin(providerID, flow)
	if err != nil {
		return s.fail(c, err)
	}

	if err = flow.Save(); err != nil {
		log.Error().Err(err).Str("provider", providerID).Msg("failed to save session")
		return handler.RenderError(c, fiber.StatusInternalServerError,
			"Authentication Error", "Failed to start authentication.")
	}

	return c.Redirect(authURL, fiber.StatusFound)
}

// Callback completes the flow and renders the identity.
func (s *Service) Callback(c *fiber.Ctx) error {
	params := auth.CallbackParams{
		Code:             c.Query("code"),
		State:            c.Query("state"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
	}

	flow, err := s.sessions.Flow(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to load session")
		return handler.RenderError(c, fiber.StatusInternalServerError,
			"Authentication Error", "Failed to complete authentication.")
	}

	identity, err := s.callback.Handle(c.UserContext(), params, flow)
	if err != nil {
		return s.fail(c, err)
	}

	if err = flow.Save(); err != nil {
		log.Error().Err(err).Str("provider", identity.Provider).Msg("failed to save session")
	}

	rawClaims, err := json.MarshalIndent(identity.RawClaims, "", "  ")
	if err != nil {
		log.Error().Err(err).Str("provider", identity.Provider).Msg("failed to encode claims")
		return handler.RenderError(c, fiber.StatusInternalServerError,
			"Template Error", "Failed to generate success page.")
	}

	return c.Render(handler.TemplateSuccess, fiber.Map{
		"Title":     "Authentication Successful",
		"Identity":  identity,
		"Initial":   Initial(identity.Name),
		"Provider":  s.displayName(identity.Provider),
		"RawClaims": string(rawClaims),
	}, handler.BaseLayout)
}

// StatusCode maps a flow error to its HTTP status.
func StatusCode(err error) int {
	switch auth.KindOf(err) {
	case auth.KindInvalidProvider, auth.KindOAuthProvider, auth.KindNoSessionFlow,
		auth.KindMissingState, auth.KindStateMismatch:
		return fiber.StatusBadRequest
	case auth.KindProviderUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// fail renders err. Only the kind, provider and IdP error fields reach the page.
func (s *Service) fail(c *fiber.Ctx, err error) error {
	status := StatusCode(err)

	var ae *auth.Error
	if !errors.As(err, &ae) {
		log.Error().Err(err).Msg("unexpected authentication error")
		return handler.RenderError(c, status, "Authentication Error", "Failed to complete authentication.")
	}

	switch ae.Kind {
	case auth.KindProviderUnavailable:
		prefix := config.EnvPrefix(ae.Provider)

		return c.Status(status).Render(handler.TemplateUnavailable, fiber.Map{
			"Title":           s.displayName(ae.Provider) + " Not Available",
			"Provider":        s.displayName(ae.Provider),
			"ClientIDEnv":     prefix + "_CLIENT_ID",
			"ClientSecretEnv": prefix + "_CLIENT_SECRET",
		}, handler.BaseLayout)
	case auth.KindInvalidProvider:
		return c.Status(status).Render(handler.TemplateError, fiber.Map{
			"Title":     "Invalid Provider",
			"Status":    status,
			"Message":   "Unknown provider \"" + ae.Provider + "\".",
			"Providers": s.registry.Providers(),
		}, handler.BaseLayout)
	case auth.KindOAuthProvider:
		description := ae.Description
		if description == "" {
			description = "Authentication failed"
		}

		return handler.RenderError(c, status, "OAuth Error", ae.Code+": "+description)
	case auth.KindNoSessionFlow:
		return handler.RenderError(c, status, "Session Expired",
			"No sign-in is in progress for this session. Please start again.")
	case auth.KindMissingState:
		return handler.RenderError(c, status, "Invalid Request", "Missing state parameter.")
	case auth.KindStateMismatch:
		return handler.RenderError(c, status, "Invalid Request", "Invalid state parameter.")
	case auth.KindInitiation:
		return handler.RenderError(c, status, "Authentication Error", "Failed to start authentication.")
	default:
		return handler.RenderError(c, status, "Authentication Error", "Failed to complete authentication.")
	}
}

func (s *Service) displayName(providerID string) string {
	for _, p := range s.registry.Providers() {
		if p.ID == providerID {
			return p.DisplayName
		}
	}

	return providerID
}

// Initial returns the upper-cased first letter of name, "U" if empty.
func Initial(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return "U"
	}

	return strings.ToUpper(string(r))
}
