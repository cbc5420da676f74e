package auth

import (
	"errors"
	"fmt"
)

// Kind names a terminal failure of the authentication flow.
type Kind string

// Failure kinds, one per terminal step of initiation and callback.
const (
	KindInvalidProvider     Kind = "invalid_provider"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindOAuthProvider       Kind = "oauth_provider_error"
	KindNoSessionFlow       Kind = "no_session_flow"
	KindMissingState        Kind = "missing_state"
	KindStateMismatch       Kind = "state_mismatch"
	KindTokenExchange       Kind = "token_exchange_failure"
	KindClaimsNormalization Kind = "claims_normalization_failure"
	KindInitiation          Kind = "initiation_failure"
)

// Error is returned by the Initiator and the CallbackHandler.
//
// Only Kind, Provider, Code and Description are meant for the caller. The wrapped
// cause carries upstream detail and is reachable through Unwrap for server-side
// logging; it is never part of Error().
type Error struct {
	Kind     Kind
	Provider string

	// Code and Description are the IdP supplied error and error_description.
	Code        string
	Description string

	cause error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindOAuthProvider && e.Description != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Code, e.Description)
	case e.Kind == KindOAuthProvider:
		return fmt.Sprintf("%s: %s", e.Kind, e.Code)
	case e.Provider != "":
		return fmt.Sprintf("%s: provider %q", e.Kind, e.Provider)
	default:
		return string(e.Kind)
	}
}

// Unwrap returns the internal cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same kind, so the sentinels
// below can be used with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidProvider            = &Error{Kind: KindInvalidProvider}
	ErrProviderUnavailable        = &Error{Kind: KindProviderUnavailable}
	ErrOAuthProvider              = &Error{Kind: KindOAuthProvider}
	ErrNoSessionFlow              = &Error{Kind: KindNoSessionFlow}
	ErrMissingState               = &Error{Kind: KindMissingState}
	ErrStateMismatch              = &Error{Kind: KindStateMismatch}
	ErrTokenExchangeFailure       = &Error{Kind: KindTokenExchange}
	ErrClaimsNormalizationFailure = &Error{Kind: KindClaimsNormalization}
	ErrInitiationFailure          = &Error{Kind: KindInitiation}
)

var (
	// ErrNoIDToken is returned when the token response doesn't contain an ID token.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrMissingCredentials is returned for a provider without client id or secret.
	ErrMissingCredentials = errors.New("client id or client secret not configured")

	// ErrDuplicateProvider is returned when two provider configs share an id.
	ErrDuplicateProvider = errors.New("duplicate provider id")

	// ErrNoClaims is returned when a provider yields no claim set at all.
	ErrNoClaims = errors.New("no claims in id token")
)

func newError(kind Kind, provider string, cause error) *Error {
	return &Error{Kind: kind, Provider: provider, cause: cause}
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}
