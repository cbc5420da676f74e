package auth

// Session field names holding the in-progress FlowState.
const (
	FieldCodeVerifier = "codeVerifier"
	FieldState        = "state"
	FieldProvider     = "provider"
)

// Session is the narrow view of one browser session the flow needs. It is
// implemented by the session store collaborator; last write per field wins.
type Session interface {
	Get(field string) (string, bool)
	Set(field, value string)
	Delete(field string)
}

// FlowState is the session-bound record of one in-progress authorization.
// A session holds at most one; a new initiation overwrites it.
type FlowState struct {
	CodeVerifier string
	State        string
	ProviderID   string
}

// LoadFlowState reads the FlowState from sess. ok is false if no provider is
// recorded, which means no flow is in progress.
func LoadFlowState(sess Session) (fs FlowState, ok bool) {
	fs.ProviderID, ok = sess.Get(FieldProvider)
	if !ok || fs.ProviderID == "" {
		return FlowState{}, false
	}

	fs.CodeVerifier, _ = sess.Get(FieldCodeVerifier)
	fs.State, _ = sess.Get(FieldState)

	return fs, true
}

// Store writes all three fields, replacing any previous flow.
func (fs FlowState) Store(sess Session) {
	sess.Set(FieldCodeVerifier, fs.CodeVerifier)
	sess.Set(FieldState, fs.State)
	sess.Set(FieldProvider, fs.ProviderID)
}

// ClearFlowState removes the FlowState fields from sess. It is idempotent.
func ClearFlowState(sess Session) {
	sess.Delete(FieldCodeVerifier)
	sess.Delete(FieldState)
	sess.Delete(FieldProvider)
}
