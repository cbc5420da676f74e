// Package uniuri generates cryptographically secure random strings without modulo bias.
// It is used for PKCE code verifiers, whose alphabet is the RFC 7636 unreserved set.
package uniuri
