package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// DefaultScope is requested when a provider config leaves Scope empty.
const DefaultScope = oidc.ScopeOpenID + " profile email"

// DefaultHTTPTimeout bounds discovery, JWKS and token endpoint calls.
const DefaultHTTPTimeout = 10 * time.Second

// ProviderConfig holds the settings of one OpenID Connect identity provider.
type ProviderConfig struct {
	// ID is the provider id used in routes and in the session (e.g. "microsoft").
	ID string
	// DisplayName is shown by the presentation layer; defaults to ID.
	DisplayName string
	// ClientID is the OAuth2 client identifier.
	ClientID string
	// ClientSecret is the OAuth2 client secret.
	ClientSecret string
	// IssuerURL is the issuer used for discovery (e.g. "https://accounts.google.com").
	IssuerURL string
	// Scope is the space separated scope string (default "openid profile email").
	Scope string
	// RedirectURI is the callback URL registered with the provider.
	RedirectURI string
	// Required providers abort startup when they cannot be initialized.
	Required bool
	// SkipIssuerCheck accepts discovery documents and ID tokens whose issuer differs
	// from IssuerURL. Needed for multi-tenant endpoints such as Microsoft "common".
	SkipIssuerCheck bool
	// HTTPTimeout bounds every call to the provider (default 10s).
	HTTPTimeout time.Duration
}

func (c ProviderConfig) name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}

	return c.ID
}

func (c ProviderConfig) scopes() []string {
	if s := strings.Fields(c.Scope); len(s) > 0 {
		return s
	}

	return strings.Fields(DefaultScope)
}

func (c ProviderConfig) httpClient() *http.Client {
	timeout := c.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	return &http.Client{Timeout: timeout}
}

// Client is the per-provider handle built once at startup and shared read-only
// by all requests.
type Client interface {
	// AuthCodeURL returns the authorization endpoint URL carrying state and the
	// S256 code challenge.
	AuthCodeURL(state, codeChallenge string) string

	// Exchange redeems code with the PKCE verifier at the token endpoint, verifies
	// the returned ID token and returns its claims.
	Exchange(ctx context.Context, code, codeVerifier string) (map[string]any, error)
}

// OIDCClient is a Client backed by issuer discovery.
type OIDCClient struct {
	config     ProviderConfig
	provider   *oidc.Provider
	verifier   *oidc.IDTokenVerifier
	oauth2     oauth2.Config
	httpClient *http.Client
}

// NewOIDCClient discovers the issuer metadata and builds a client.
func NewOIDCClient(ctx context.Context, config ProviderConfig) (*OIDCClient, error) {
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	httpClient := config.httpClient()
	ctx = oidc.ClientContext(ctx, httpClient)

	if config.SkipIssuerCheck {
		ctx = oidc.InsecureIssuerURLContext(ctx, config.IssuerURL)
	}

	provider, err := oidc.NewProvider(ctx, config.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider %s: %w", config.IssuerURL, err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID:        config.ClientID,
		SkipIssuerCheck: config.SkipIssuerCheck,
	})

	return &OIDCClient{
		config:     config,
		provider:   provider,
		verifier:   verifier,
		httpClient: httpClient,
		oauth2: oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURI,
			Endpoint:     provider.Endpoint(),
			Scopes:       config.scopes(),
		},
	}, nil
}

// AuthCodeURL implements Client.
func (c *OIDCClient) AuthCodeURL(state, codeChallenge string) string {
	return c.oauth2.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", CodeChallengeMethod),
	)
}

// Exchange implements Client.
func (c *OIDCClient) Exchange(ctx context.Context, code, codeVerifier string) (map[string]any, error) {
	ctx = oidc.ClientContext(ctx, c.httpClient)

	oauth2Token, err := c.oauth2.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrNoIDToken
	}

	// issuer, audience, signature and expiry
	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims map[string]any
	if err = idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	return claims, nil
}

// Endpoint returns the discovered authorization and token endpoints.
func (c *OIDCClient) Endpoint() oauth2.Endpoint {
	return c.provider.Endpoint()
}
