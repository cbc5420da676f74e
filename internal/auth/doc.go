// Package auth implements the OpenID Connect authorization code flow with PKCE
// against several configured identity providers.
//
// # Provider Registry
//
// NewRegistry discovers each configured issuer once at startup and keeps one
// Client per provider. A provider marked Required aborts startup if discovery or
// its configuration fails; any other provider is logged and left unavailable.
//
// # Flow
//
// Initiator.Begin validates the provider id, generates a PKCE code verifier and
// an independent state token, stores both in the caller's Session as a FlowState
// and returns the authorization URL (code_challenge_method=S256).
//
// CallbackHandler.Handle checks, in order: an IdP error parameter, a FlowState in
// the session, the state parameter and its match, the provider client. It then
// exchanges the code with the verifier, verifies the ID token and normalizes the
// claims into IdentityClaims. The FlowState is removed only on success.
//
// Every failure is an *Error whose Kind names the failed step; use errors.Is with
// the Err* sentinels. Error() never includes upstream detail.
//
// Example usage:
//
//	registry, err := auth.NewRegistry(ctx, providers)
//	initiator := auth.NewInitiator(registry)
//	callback := auth.NewCallbackHandler(registry)
//
//	url, err := initiator.Begin("microsoft", sess)
//	// ... user agent returns from the IdP ...
//	identity, err := callback.Handle(ctx, auth.CallbackParams{Code: code, State: state}, sess)
package auth
