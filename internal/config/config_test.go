package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectConfigPath(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	t.Setenv("MICROSOFT_CLIENT_ID", "ms-id")
	t.Setenv("MICROSOFT_CLIENT_SECRET", "ms-secret")

	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL)
	assert.Equal(t, 24*time.Hour, cfg.Webserver.Session.ExpiryTime)
	assert.Equal(t, StorageMemory, cfg.Webserver.Session.Storage)

	require.Len(t, cfg.Providers, 2)

	ms := cfg.Providers[0]
	assert.Equal(t, "microsoft", ms.ID)
	assert.False(t, ms.Required)
	assert.True(t, ms.SkipIssuerCheck)
	assert.Equal(t, "ms-id", ms.ClientID)
	assert.Equal(t, "ms-secret", ms.ClientSecret)
	assert.Equal(t, strings.TrimRight(cfg.Webserver.URL, "/")+CallbackPath, ms.RedirectURI)
	assert.Equal(t, 10*time.Second, ms.HTTPTimeout)

	google := cfg.Providers[1]
	assert.Equal(t, "google", google.ID)
	assert.False(t, google.Required)
	assert.Equal(t, "https://accounts.google.com", google.IssuerURL)
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":"Test Override","Webserver":{"Port":9090}}`)

	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(file, []byte("MICRO_OIDC_TEST_VALUE=from-dotenv\n"), 0o600))

	t.Setenv("MICRO_OIDC_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("MICRO_OIDC_TEST_VALUE"))

	require.NoError(t, LoadDotEnv(file, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("MICRO_OIDC_TEST_VALUE"))
}

func TestEnvPrefix(t *testing.T) {
	assert.Equal(t, "MICROSOFT", EnvPrefix("microsoft"))
	assert.Equal(t, "AZURE_AD", EnvPrefix("azure-ad"))
	assert.Equal(t, "MY_IDP", EnvPrefix("my idp"))
}

func validConfig() Config {
	return Config{
		Webserver: Webserver{
			Port:    8080,
			URL:     "http://localhost:8080",
			Session: Session{Storage: StorageMemory},
		},
		Providers: []Provider{
			{ID: "google", IssuerURL: "https://accounts.google.com"},
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
		invalid bool
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:    "missing port",
			modify:  func(c *Config) { c.Webserver.Port = 0 },
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name:    "missing URL",
			modify:  func(c *Config) { c.Webserver.URL = "" },
			wantErr: ErrEmptyURL,
		},
		{
			name:    "unknown session storage",
			modify:  func(c *Config) { c.Webserver.Session.Storage = "etcd" },
			wantErr: ErrUnknownSessionStorage,
		},
		{
			name:    "database storage without connection",
			modify:  func(c *Config) { c.Webserver.Session.Storage = StoragePostgres },
			wantErr: ErrNoSessionDatabase,
		},
		{
			name: "database storage with host",
			modify: func(c *Config) {
				c.Webserver.Session.Storage = StorageMySQL
				c.Webserver.Session.DB.Host = "db"
			},
		},
		{
			name:    "no providers",
			modify:  func(c *Config) { c.Providers = nil },
			wantErr: ErrNoProviders,
		},
		{
			name: "duplicate provider",
			modify: func(c *Config) {
				c.Providers = append(c.Providers, c.Providers[0])
			},
			wantErr: ErrDuplicateProvider,
		},
		{
			name:    "provider without issuer",
			modify:  func(c *Config) { c.Providers[0].IssuerURL = "" },
			invalid: true,
		},
		{
			name:    "provider id with slash",
			modify:  func(c *Config) { c.Providers[0].ID = "auth/callback" },
			invalid: true,
		},
		{
			name:    "provider with invalid redirect",
			modify:  func(c *Config) { c.Providers[0].RedirectURI = "not a url" },
			invalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)

			err := validate(&cfg)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.invalid:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "env-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "env-secret")

	cfg := Config{
		Webserver: Webserver{URL: "https://portal.example.com/"},
		Providers: []Provider{
			{ID: "google", ClientID: "file-id"},
		},
	}

	applyDefaults(&cfg)

	p := cfg.Providers[0]
	assert.Equal(t, "file-id", p.ClientID)
	assert.Equal(t, "env-secret", p.ClientSecret)
	assert.Equal(t, "https://portal.example.com/auth/callback", p.RedirectURI)
	assert.Equal(t, DefaultScope, p.Scope)
	assert.Equal(t, "google", p.DisplayName)
	assert.Equal(t, defaultShutDownTime, cfg.Webserver.ShutDownTime)
	assert.Equal(t, defaultCookieName, cfg.Webserver.Session.CookieName)
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := validConfig()
	cfg.Title = "Test"
	cfg.Providers[0].ClientSecret = "super-secret"
	cfg.Webserver.Session.DB.Password = "db-secret"

	jsonStr, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)

	assert.Contains(t, jsonStr, "Test")
	assert.Contains(t, jsonStr, secretMask)
	assert.NotContains(t, jsonStr, "super-secret")
	assert.NotContains(t, jsonStr, "db-secret")
	assert.Equal(t, "super-secret", cfg.Providers[0].ClientSecret)
}
