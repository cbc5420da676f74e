// Package oidc exposes the authorization code flow over HTTP.
//
// Routes:
//
//	GET /auth/callback  - complete the flow and render the identity
//	GET /auth           - redirect to the first configured provider
//	GET /auth/:provider - start a flow and redirect to the provider
//
// The callback route is registered before /auth/:provider so "callback" is
// never taken for a provider id.
//
// Example usage:
//
//	_ = oidc.Handler.Init(app, handler.Deps{Config: cfg, Registry: registry, Sessions: sessions})
package oidc
