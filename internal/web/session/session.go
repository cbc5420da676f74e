// Package session carries the authorization FlowState across the redirect
// round trip in a fiber session cookie.
package session

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/mysql/v2"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"

	"github.com/pyromage/micro-oidc/internal/auth"
	"github.com/pyromage/micro-oidc/internal/config"
	"github.com/pyromage/micro-oidc/internal/db/dsn"
)

// Store hands out per-request sessions.
type Store struct {
	store   *session.Store
	storage fiber.Storage
}

// New creates the session store. storage nil keeps sessions in memory.
// Cookies are HTTP-only and SameSite=Lax; secure is false only for local
// development over plain http.
func New(cfg config.Session, secure bool, storage fiber.Storage) *Store {
	return &Store{
		storage: storage,
		store: session.New(session.Config{
			Expiration:     cfg.ExpiryTime,
			Storage:        storage,
			KeyLookup:      "cookie:" + cfg.CookieName,
			CookiePath:     "/",
			CookieSecure:   secure,
			CookieHTTPOnly: true,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
		}),
	}
}

// NewStorage returns the backend configured in cfg.Storage. The memory
// backend is nil, which fiber's session middleware treats as in-process.
func NewStorage(cfg config.Session) (storage fiber.Storage, err error) {
	// both storage drivers panic if the database is unreachable
	defer func() {
		if r := recover(); r != nil {
			storage = nil
			err = fmt.Errorf("%s session storage: %v", cfg.Storage, r)
		}
	}()

	switch cfg.Storage {
	case config.StorageMemory, "":
		return nil, nil
	case config.StorageMySQL:
		return mysql.New(mysql.Config{
			ConnectionURI: dsn.ConnectionURI(cfg),
			Table:         cfg.Table,
		}), nil
	case config.StoragePostgres:
		return postgres.New(postgres.Config{
			ConnectionURI: dsn.ConnectionURI(cfg),
			Table:         cfg.Table,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSessionStorage, cfg.Storage)
	}
}

// Flow opens the session of c.
func (s *Store) Flow(c *fiber.Ctx) (*Flow, error) {
	sess, err := s.store.Get(c)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	return &Flow{sess: sess}, nil
}

// Close releases the storage backend.
func (s *Store) Close() error {
	if s.storage == nil {
		return nil
	}

	if err := s.storage.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close session storage")
		return err //nolint:wrapcheck
	}

	return nil
}

// Flow is one request's session. It implements auth.Session; changes are
// persisted by Save.
type Flow struct {
	sess    *session.Session
	changed bool
}

var _ auth.Session = (*Flow)(nil)

// Get returns a string field.
func (f *Flow) Get(field string) (string, bool) {
	v, ok := f.sess.Get(field).(string)
	return v, ok
}

// Set stores a string field.
func (f *Flow) Set(field, value string) {
	f.sess.Set(field, value)
	f.changed = true
}

// Delete removes a field. Deleting a missing field is a no-op.
func (f *Flow) Delete(field string) {
	if f.sess.Get(field) == nil {
		return
	}

	f.sess.Delete(field)
	f.changed = true
}

// Save persists the session and sets the cookie if anything changed. The
// Flow must not be used afterwards.
func (f *Flow) Save() error {
	if !f.changed {
		return nil
	}

	if err := f.sess.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}
