package auth

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Initiator starts authorization code flows.
type Initiator struct {
	registry    *Registry
	newVerifier func() (string, error)
	newState    func() (string, error)
}

// NewInitiator returns an Initiator backed by registry.
func NewInitiator(registry *Registry) *Initiator {
	return &Initiator{
		registry:    registry,
		newVerifier: GenerateCodeVerifier,
		newState:    GenerateStateToken,
	}
}

// Begin starts a flow for providerID: it stores a fresh FlowState in sess,
// replacing any flow already in progress, and returns the authorization URL
// to redirect the user agent to.
//
// Unsupported ids fail with ErrInvalidProvider before sess or the registry are
// touched. Providers without a client fail with ErrProviderUnavailable.
func (i *Initiator) Begin(providerID string, sess Session) (authURL string, err error) {
	if !i.registry.IsSupported(providerID) {
		log.Warn().Str("provider", providerID).Msg("auth request for invalid provider")
		observe("", stageInitiate, ErrInvalidProvider)

		return "", newError(KindInvalidProvider, providerID, nil)
	}

	defer func() {
		observe(providerID, stageInitiate, err)
	}()

	if !i.registry.IsAvailable(providerID) {
		log.Warn().Str("provider", providerID).Msg("auth request for unavailable provider")
		return "", newError(KindProviderUnavailable, providerID, nil)
	}

	flow, authURL, err := i.prepare(providerID)
	if err != nil {
		log.Error().Err(err).Str("provider", providerID).Msg("auth initiation failed")
		return "", newError(KindInitiation, providerID, err)
	}

	flow.Store(sess)

	log.Debug().Str("provider", providerID).Msg("auth flow initiated")

	return authURL, nil
}

// prepare generates the PKCE pair and state and builds the authorization URL.
// Panics from the client are turned into errors.
func (i *Initiator) prepare(providerID string) (flow FlowState, authURL string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	client := i.registry.GetClient(providerID)
	if client == nil {
		return FlowState{}, "", errNoClient
	}

	verifier, err := i.newVerifier()
	if err != nil {
		return FlowState{}, "", fmt.Errorf("generate code verifier: %w", err)
	}

	state, err := i.newState()
	if err != nil {
		return FlowState{}, "", fmt.Errorf("generate state: %w", err)
	}

	authURL = client.AuthCodeURL(state, CodeChallenge(verifier))

	return FlowState{
		CodeVerifier: verifier,
		State:        state,
		ProviderID:   providerID,
	}, authURL, nil
}
