// Package daemon wires configuration, the provider registry, the session
// store and the web service together.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pyromage/micro-oidc/internal/auth"
	"github.com/pyromage/micro-oidc/internal/config"
	"github.com/pyromage/micro-oidc/internal/web"
	"github.com/pyromage/micro-oidc/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	registry   *auth.Registry
	webService *web.Service
}

// Start serves until SIGINT or SIGTERM and a graceful shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// Registry returns the initialized provider registry.
func (d *Daemon) Registry() *auth.Registry {
	return d.registry
}

// ProviderConfigs converts the configured providers for the registry.
func ProviderConfigs(cfg *config.Config) []auth.ProviderConfig {
	out := make([]auth.ProviderConfig, 0, len(cfg.Providers))

	for _, p := range cfg.Providers {
		out = append(out, auth.ProviderConfig{
			ID:              p.ID,
			DisplayName:     p.DisplayName,
			ClientID:        p.ClientID,
			ClientSecret:    p.ClientSecret,
			IssuerURL:       p.IssuerURL,
			Scope:           p.Scope,
			RedirectURI:     p.RedirectURI,
			Required:        p.Required,
			SkipIssuerCheck: p.SkipIssuerCheck,
			HTTPTimeout:     p.HTTPTimeout,
		})
	}

	return out
}

// New creates a new Daemon instance with the provided configuration. It fails
// if a required provider can't be initialized or the session storage is
// unreachable.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	registry, err := auth.NewRegistry(ctx, ProviderConfigs(cfg))
	if err != nil {
		return nil, fmt.Errorf("initialize providers: %w", err)
	}

	storage, err := session.NewStorage(cfg.Webserver.Session)
	if err != nil {
		return nil, err
	}

	sessions := session.New(cfg.Webserver.Session, !cfg.DevMode, storage)

	for _, p := range registry.Providers() {
		log.Info().
			Str("provider", p.ID).
			Bool("required", p.Required).
			Bool("available", p.Available).
			Msg("provider status")
	}

	return &Daemon{
		cfg:        cfg,
		registry:   registry,
		webService: web.New(cfg, registry, sessions),
	}, nil
}
