package config

import (
	"time"

	"github.com/pyromage/micro-oidc/internal/logger"
)

// DB holds the session database settings, used when Session.ConnectionURI is empty.
type DB struct {
	Extras   string // query string appended to the DSN, e.g. "sslmode=disable"
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// Session settings.
type Session struct {
	ExpiryTime    time.Duration // lifetime of the session cookie and stored session
	CookieName    string        // name of the session cookie
	Storage       string        // memory, mysql or postgres
	ConnectionURI string        // DSN for the mysql and postgres storages
	DB            DB            // alternative to ConnectionURI
	Table         string        // table for the mysql and postgres storages
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Log       logger.Log
	Title     string
	Webserver Webserver
	Providers []Provider
}

// Webserver implement webserver settings.
type Webserver struct {
	Port         int     // listening port for the webserver
	ShutDownTime int     // wait time for shutdown
	URL          string  // base url for the webserver
	Session      Session // session settings
}

// Provider is one OpenID Connect identity provider.
type Provider struct {
	ID              string        `validate:"required,excludesall=/?#&% "`
	DisplayName     string        // shown on the landing page; defaults to ID
	ClientID        string        // falls back to env <ID>_CLIENT_ID
	ClientSecret    string        // falls back to env <ID>_CLIENT_SECRET
	IssuerURL       string        `validate:"required,url"`
	Scope           string        // space separated; default "openid profile email"
	RedirectURI     string        `validate:"omitempty,url"` // default Webserver.URL + /auth/callback
	Required        bool          // abort startup if this provider can't be initialized
	SkipIssuerCheck bool          // multi-tenant issuers such as Microsoft "common"
	HTTPTimeout     time.Duration // discovery and token endpoint timeout
}
