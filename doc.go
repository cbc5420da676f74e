// Package main provides the entry point for micro-oidc, a web service that
// signs users in with one of several OpenID Connect identity providers using
// the authorization code flow with PKCE.
//
// Usage:
//
//	micro-oidc start --config ./etc/ [--dev]
//	micro-oidc check --config ./etc/ [--dump]
package main
