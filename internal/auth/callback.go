package auth

import (
	"context"
	"crypto/subtle"

	"github.com/rs/zerolog/log"
)

// CallbackParams are the query parameters the IdP redirects back with.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackHandler completes authorization code flows.
type CallbackHandler struct {
	registry *Registry
}

// NewCallbackHandler returns a CallbackHandler backed by registry.
func NewCallbackHandler(registry *Registry) *CallbackHandler {
	return &CallbackHandler{registry: registry}
}

// Handle validates params against the FlowState in sess, exchanges the code
// and returns the normalized identity.
//
// Checks run in a fixed order and the first failure ends the request. The
// FlowState is removed only on success; on failure sess is left as it was.
func (h *CallbackHandler) Handle(ctx context.Context, params CallbackParams, sess Session) (*IdentityClaims, error) {
	// IdP errors are reported before the session is looked at.
	if params.Error != "" {
		log.Warn().Str("error", params.Error).Msg("OAuth error returned by provider")
		observe("", stageCallback, ErrOAuthProvider)

		return nil, &Error{
			Kind:        KindOAuthProvider,
			Code:        params.Error,
			Description: params.ErrorDescription,
		}
	}

	flow, ok := LoadFlowState(sess)
	if !ok {
		log.Warn().Msg("callback without a flow in session")
		observe("", stageCallback, ErrNoSessionFlow)

		return nil, newError(KindNoSessionFlow, "", nil)
	}

	claims, err := h.complete(ctx, params, flow)
	observe(flow.ProviderID, stageCallback, err)

	if err != nil {
		return nil, err
	}

	ClearFlowState(sess)

	log.Info().Str("provider", flow.ProviderID).Msg("authentication successful")

	return claims, nil
}

func (h *CallbackHandler) complete(ctx context.Context, params CallbackParams, flow FlowState) (*IdentityClaims, error) {
	provider := flow.ProviderID

	if params.State == "" {
		log.Warn().Str("provider", provider).Msg("callback without state parameter")
		return nil, newError(KindMissingState, provider, nil)
	}

	if subtle.ConstantTimeCompare([]byte(params.State), []byte(flow.State)) != 1 {
		log.Warn().Str("provider", provider).Msg("callback state mismatch")
		return nil, newError(KindStateMismatch, provider, nil)
	}

	client := h.registry.GetClient(provider)
	if client == nil {
		log.Warn().Str("provider", provider).Msg("callback for unavailable provider")
		return nil, newError(KindProviderUnavailable, provider, nil)
	}

	raw, err := client.Exchange(ctx, params.Code, flow.CodeVerifier)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("token exchange failed")
		return nil, newError(KindTokenExchange, provider, err)
	}

	identity, err := NormalizeClaims(raw)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("claims normalization failed")
		return nil, newError(KindClaimsNormalization, provider, err)
	}

	identity.Provider = provider

	return &identity, nil
}
