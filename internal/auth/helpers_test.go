package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testClientID = "test-client"
	testKeyID    = "test-key"
	testCode     = "good-code"
)

var errDiscovery = errors.New("discovery failed")

// stubClient is a Client test double.
type stubClient struct {
	claims map[string]any
	err    error

	mu          sync.Mutex
	exchanges   int
	gotCode     string
	gotVerifier string
	panicOnURL  bool
}

func (c *stubClient) AuthCodeURL(state, codeChallenge string) string {
	if c.panicOnURL {
		panic("broken client")
	}

	v := url.Values{
		"response_type":         {"code"},
		"state":                 {state},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {CodeChallengeMethod},
	}

	return "https://idp.example.com/authorize?" + v.Encode()
}

func (c *stubClient) Exchange(_ context.Context, code, codeVerifier string) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.exchanges++
	c.gotCode = code
	c.gotVerifier = codeVerifier

	return c.claims, c.err
}

// newStubRegistry builds a Registry from clients; ids listed in failing are
// configured as optional providers whose discovery fails.
func newStubRegistry(t *testing.T, clients map[string]Client, failing ...string) *Registry {
	t.Helper()

	var configs []ProviderConfig
	for id := range clients {
		configs = append(configs, ProviderConfig{ID: id})
	}

	for _, id := range failing {
		configs = append(configs, ProviderConfig{ID: id})
	}

	r, err := NewRegistry(context.Background(), configs, WithDiscoverer(
		func(_ context.Context, cfg ProviderConfig) (Client, error) {
			if c, ok := clients[cfg.ID]; ok {
				return c, nil
			}

			return nil, errDiscovery
		}))
	require.NoError(t, err)

	return r
}

// fakeIssuer is a minimal OpenID provider: discovery, JWKS and token endpoint.
type fakeIssuer struct {
	srv *httptest.Server
	key *rsa.PrivateKey

	mu sync.Mutex
	// advertisedIssuer overrides the issuer in the discovery document.
	advertisedIssuer string
	// tokenIssuer and audience override iss and aud in issued ID tokens.
	tokenIssuer string
	audience    string
	claims      map[string]any
	omitIDToken bool
	// signingKey, when set, signs ID tokens instead of key while the JWKS
	// keeps publishing key.
	signingKey *rsa.PrivateKey
	lastForm    url.Values
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fakeIssuer{key: key, claims: map[string]any{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", f.discovery)
	mux.HandleFunc("/keys", f.keys)
	mux.HandleFunc("/token", f.token)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeIssuer) URL() string {
	return f.srv.URL
}

func (f *fakeIssuer) config(id string) ProviderConfig {
	return ProviderConfig{
		ID:           id,
		ClientID:     testClientID,
		ClientSecret: "secret",
		IssuerURL:    f.URL(),
		Scope:        "openid profile email",
		RedirectURI:  "http://localhost:3000/auth/callback",
		HTTPTimeout:  5 * time.Second,
	}
}

// set mutates the issuer under its lock.
func (f *fakeIssuer) set(fn func(f *fakeIssuer)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fn(f)
}

func (f *fakeIssuer) form() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastForm
}

func (f *fakeIssuer) discovery(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	issuer := f.advertisedIssuer
	f.mu.Unlock()

	if issuer == "" {
		issuer = f.URL()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                issuer,
		"authorization_endpoint":                f.URL() + "/authorize",
		"token_endpoint":                        f.URL() + "/token",
		"jwks_uri":                              f.URL() + "/keys",
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (f *fakeIssuer) keys(w http.ResponseWriter, _ *http.Request) {
	pub := f.key.PublicKey

	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKeyID,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func (f *fakeIssuer) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastForm = r.PostForm

	if r.PostForm.Get("code") != testCode {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}

	resp := map[string]any{
		"access_token": "access-token",
		"token_type":   "Bearer",
		"expires_in":   3600,
	}

	if !f.omitIDToken {
		resp["id_token"] = f.signIDToken()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (f *fakeIssuer) signIDToken() string {
	iss := f.tokenIssuer
	if iss == "" {
		iss = f.URL()
	}

	aud := f.audience
	if aud == "" {
		aud = testClientID
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": iss,
		"aud": aud,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}

	for k, v := range f.claims {
		claims[k] = v
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKeyID

	key := f.key
	if f.signingKey != nil {
		key = f.signingKey
	}

	signed, err := tok.SignedString(key)
	if err != nil {
		panic(err)
	}

	return signed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
