package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Discoverer builds the Client for one provider. NewOIDCClient is the default.
type Discoverer func(ctx context.Context, config ProviderConfig) (Client, error)

func discoverOIDC(ctx context.Context, config ProviderConfig) (Client, error) {
	client, err := NewOIDCClient(ctx, config)
	if err != nil {
		return nil, err
	}

	return client, nil
}

var errNoClient = errors.New("discoverer returned no client")

// ProviderStatus describes one configured provider.
type ProviderStatus struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Required    bool   `json:"required"`
	Available   bool   `json:"available"`
}

// Registry holds one Client per successfully initialized provider. It is
// immutable once NewRegistry returns and safe for concurrent use.
type Registry struct {
	configs []ProviderConfig
	clients map[string]Client
}

// RegistryOption customizes NewRegistry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	discover Discoverer
}

// WithDiscoverer replaces OIDC discovery, e.g. with test doubles.
func WithDiscoverer(d Discoverer) RegistryOption {
	return func(o *registryOptions) {
		o.discover = d
	}
}

// NewRegistry initializes every configured provider in order. The configured
// ids form the supported-provider set.
//
// A required provider that fails returns an error and no registry. An optional
// provider that fails is logged and left unavailable.
func NewRegistry(ctx context.Context, configs []ProviderConfig, opts ...RegistryOption) (*Registry, error) {
	o := registryOptions{discover: discoverOIDC}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		configs: make([]ProviderConfig, 0, len(configs)),
		clients: make(map[string]Client, len(configs)),
	}

	seen := make(map[string]bool, len(configs))

	for _, cfg := range configs {
		if seen[cfg.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProvider, cfg.ID)
		}

		seen[cfg.ID] = true
		r.configs = append(r.configs, cfg)

		client, err := o.discover(ctx, cfg)
		if err == nil && client == nil {
			err = errNoClient
		}

		if err != nil {
			providerAvailable.WithLabelValues(cfg.ID).Set(0)

			if cfg.Required {
				log.Error().Err(err).Str("provider", cfg.ID).Msg("required OIDC provider failed to initialize")
				return nil, fmt.Errorf("provider %s: %w", cfg.ID, err)
			}

			log.Warn().Err(err).Str("provider", cfg.ID).
				Msg("optional OIDC provider failed to initialize - it will be unavailable")

			continue
		}

		r.clients[cfg.ID] = client
		providerAvailable.WithLabelValues(cfg.ID).Set(1)

		log.Info().Str("provider", cfg.ID).Str("issuer", cfg.IssuerURL).Msg("OIDC client configured")
	}

	return r, nil
}

// IsSupported reports whether id is one of the configured providers.
func (r *Registry) IsSupported(id string) bool {
	for _, cfg := range r.configs {
		if cfg.ID == id {
			return true
		}
	}

	return false
}

// IsAvailable reports whether a Client exists for id.
func (r *Registry) IsAvailable(id string) bool {
	_, ok := r.clients[id]
	return ok
}

// GetClient returns the Client for id, or nil if the provider is unknown or
// failed to initialize. nil is a definite unavailability signal.
func (r *Registry) GetClient(id string) Client {
	return r.clients[id]
}

// Providers lists every configured provider in configuration order.
func (r *Registry) Providers() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(r.configs))

	for _, cfg := range r.configs {
		out = append(out, ProviderStatus{
			ID:          cfg.ID,
			DisplayName: cfg.name(),
			Required:    cfg.Required,
			Available:   r.IsAvailable(cfg.ID),
		})
	}

	return out
}
