// Package dsn provides Data Source Name construction utilities for the
// session storage databases.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/pyromage/micro-oidc/internal/config"
)

// Create builds the Data Source Name for storage from db. Storages other than
// mysql and postgres have none.
func Create(storage string, db config.DB) string {
	switch storage {
	case config.StorageMySQL:
		out := fmt.Sprintf("%s:%s@tcp(%s)/%s",
			db.User,
			db.Password,
			net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
			db.Name,
		)

		if db.Extras != "" {
			out += "?" + db.Extras
		}

		return out
	case config.StoragePostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(db.User, db.Password),
			Host:     net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
			Path:     "/" + db.Name,
			RawQuery: db.Extras,
		}

		return u.String()
	default:
		return ""
	}
}

// ConnectionURI returns s.ConnectionURI if set, otherwise the DSN built from s.DB.
func ConnectionURI(s config.Session) string {
	if s.ConnectionURI != "" {
		return s.ConnectionURI
	}

	return Create(s.Storage, s.DB)
}
