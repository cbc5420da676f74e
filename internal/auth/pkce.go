package auth

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/oauth2"

	"github.com/pyromage/micro-oidc/internal/uniuri"
)

// CodeChallengeMethod is the only PKCE method this package sends.
const CodeChallengeMethod = "S256"

// stateBytes is the number of random bytes behind a state token (256 bits).
const stateBytes = 32

// GenerateCodeVerifier returns a fresh PKCE code verifier.
func GenerateCodeVerifier() (string, error) {
	return uniuri.NewVerifier()
}

// CodeChallenge derives the S256 challenge BASE64URL(SHA256(verifier)).
func CodeChallenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// GenerateStateToken generates a random state token for CSRF protection.
func GenerateStateToken() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
