package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")
)

// WriteErrorHandler is installed as zerolog.ErrorHandler by Init.
// A failed event write is counted and reported on stderr, since the logger itself can't be trusted anymore.
func WriteErrorHandler(err error) {
	if writeFailures != nil {
		writeFailures.Inc()
	}

	_, _ = fmt.Fprintf(os.Stderr, "oidc logger: dropped log event: %v\n", err)
}
