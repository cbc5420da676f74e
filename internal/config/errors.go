package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrNoProviders error if no identity provider is configured.
	ErrNoProviders = errors.New("config providers can not be empty")

	// ErrDuplicateProvider error if two providers share an id.
	ErrDuplicateProvider = errors.New("config providers contain a duplicate id")

	// ErrUnknownSessionStorage error if webserver.session.storage is not supported.
	ErrUnknownSessionStorage = errors.New("config webserver.session.storage must be memory, mysql or postgres")

	// ErrNoSessionDatabase error if a database storage has neither ConnectionURI nor DB.Host.
	ErrNoSessionDatabase = errors.New("config webserver.session needs ConnectionURI or DB.Host for database storage")
)
