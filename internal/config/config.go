// Package config handles input from etc/main.toml, the environment and .env files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvConfigJSON holds a JSON document merged over the file configuration.
	EnvConfigJSON = "MICRO_OIDC_CONFIG_JSON"

	// CallbackPath is appended to Webserver.URL for providers without RedirectURI.
	CallbackPath = "/auth/callback"

	// DefaultScope is requested from providers without Scope.
	DefaultScope = "openid profile email"

	// Session storages.
	StorageMemory   = "memory"
	StorageMySQL    = "mysql"
	StoragePostgres = "postgres"

	defaultShutDownTime  = 5
	defaultSessionExpiry = 24 * time.Hour
	defaultCookieName    = "micro_oidc_session"
	defaultSessionTable  = "sessions"
	defaultHTTPTimeout   = 10 * time.Second

	secretMask = "********"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into
// the environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return pkgerrors.Wrapf(err, "failed to load %s", f)
		}
	}

	return nil
}

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")

	if err = v.ReadInConfig(); err != nil {
		return Config{}, pkgerrors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, pkgerrors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	applyDefaults(&c)

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, pkgerrors.Wrap(err, "failed to read "+EnvConfigJSON)
	}

	return c, nil
}

// EnvPrefix returns the environment variable prefix for a provider id,
// e.g. "azure-ad" -> "AZURE_AD".
func EnvPrefix(id string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(id))
}

// applyDefaults fills unset values, including provider credentials from the
// environment.
func applyDefaults(c *Config) {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	s := &c.Webserver.Session
	if s.ExpiryTime == 0 {
		s.ExpiryTime = defaultSessionExpiry
	}

	if s.CookieName == "" {
		s.CookieName = defaultCookieName
	}

	if s.Storage == "" {
		s.Storage = StorageMemory
	}

	if s.Table == "" {
		s.Table = defaultSessionTable
	}

	baseURL := strings.TrimRight(c.Webserver.URL, "/")

	for i := range c.Providers {
		p := &c.Providers[i]

		if p.DisplayName == "" {
			p.DisplayName = p.ID
		}

		if p.Scope == "" {
			p.Scope = DefaultScope
		}

		if p.RedirectURI == "" && baseURL != "" {
			p.RedirectURI = baseURL + CallbackPath
		}

		if p.HTTPTimeout == 0 {
			p.HTTPTimeout = defaultHTTPTimeout
		}

		prefix := EnvPrefix(p.ID)

		if p.ClientID == "" {
			p.ClientID = os.Getenv(prefix + "_CLIENT_ID")
		}

		if p.ClientSecret == "" {
			p.ClientSecret = os.Getenv(prefix + "_CLIENT_SECRET")
		}
	}
}

// DumpConfigJSON config as JSON String. Client secrets are masked.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(masked(c)); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

func masked(c *Config) Config {
	out := *c
	out.Providers = make([]Provider, len(c.Providers))

	copy(out.Providers, c.Providers)

	if out.Webserver.Session.DB.Password != "" {
		out.Webserver.Session.DB.Password = secretMask
	}

	if out.Webserver.Session.ConnectionURI != "" {
		out.Webserver.Session.ConnectionURI = secretMask
	}

	for i := range out.Providers {
		if out.Providers[i].ClientSecret != "" {
			out.Providers[i].ClientSecret = secretMask
		}
	}

	return out
}

// validate minimal config settings.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return pkgerrors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return pkgerrors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch s := c.Webserver.Session; s.Storage {
	case StorageMemory:
	case StorageMySQL, StoragePostgres:
		if s.ConnectionURI == "" && s.DB.Host == "" {
			return pkgerrors.Wrap(ErrNoSessionDatabase, invalidErrMessage)
		}
	default:
		return pkgerrors.Wrap(ErrUnknownSessionStorage, invalidErrMessage)
	}

	if len(c.Providers) == 0 {
		return pkgerrors.Wrap(ErrNoProviders, invalidErrMessage)
	}

	v := validator.New()
	seen := make(map[string]bool, len(c.Providers))

	for _, p := range c.Providers {
		if err := v.Struct(p); err != nil {
			return pkgerrors.Wrapf(err, "%s: provider %q", invalidErrMessage, p.ID)
		}

		if seen[p.ID] {
			return pkgerrors.Wrapf(ErrDuplicateProvider, "%s: provider %q", invalidErrMessage, p.ID)
		}

		seen[p.ID] = true
	}

	return nil
}
