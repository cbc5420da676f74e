package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// IdentityClaims is the normalized identity produced by a successful callback.
type IdentityClaims struct {
	Provider string `json:"provider"`
	Subject  string `json:"subject"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	// Picture is empty when no source claim carried one.
	Picture   string         `json:"picture,omitempty"`
	RawClaims map[string]any `json:"rawClaims"`
}

type claimTarget int

const (
	targetSubject claimTarget = iota
	targetName
	targetEmail
	targetPicture
)

// claimSource maps one provider claim, addressed by a path into nested
// objects, onto one IdentityClaims field.
type claimSource struct {
	path   []string
	target claimTarget
}

// claimSources is evaluated in order; the first present value for a target
// wins. The order decides which field wins across providers, so keep it.
var claimSources = []claimSource{ //nolint:gochecknoglobals
	{[]string{"name"}, targetName},
	{[]string{"given_name"}, targetName},
	{[]string{"displayName"}, targetName},

	{[]string{"email"}, targetEmail},
	{[]string{"mail"}, targetEmail},
	{[]string{"userPrincipalName"}, targetEmail},

	{[]string{"sub"}, targetSubject},
	{[]string{"id"}, targetSubject},
	{[]string{"oid"}, targetSubject},

	{[]string{"picture"}, targetPicture},
	{[]string{"photo", "url"}, targetPicture},
}

// Defaults for targets no source filled. Picture has none.
const (
	DefaultName    = "User"
	DefaultEmail   = "No email provided"
	DefaultSubject = "Unknown ID"
)

var claimDefaults = map[claimTarget]string{ //nolint:gochecknoglobals
	targetName:    DefaultName,
	targetEmail:   DefaultEmail,
	targetSubject: DefaultSubject,
}

// NormalizeClaims maps a raw provider claim set onto IdentityClaims. Missing
// or false claims fall back to the next source, then to defaults; a claim of
// unexpected type at a source position is an error. raw is kept as RawClaims untouched.
func NormalizeClaims(raw map[string]any) (IdentityClaims, error) {
	if raw == nil {
		return IdentityClaims{}, ErrNoClaims
	}

	values := make(map[claimTarget]string, len(claimDefaults)+1)

	for _, src := range claimSources {
		if _, done := values[src.target]; done {
			continue
		}

		v, ok, err := lookupClaim(raw, src.path)
		if err != nil {
			return IdentityClaims{}, err
		}

		if ok {
			values[src.target] = v
		}
	}

	for target, def := range claimDefaults {
		if _, ok := values[target]; !ok {
			values[target] = def
		}
	}

	return IdentityClaims{
		Subject:   values[targetSubject],
		Name:      values[targetName],
		Email:     values[targetEmail],
		Picture:   values[targetPicture],
		RawClaims: raw,
	}, nil
}

// lookupClaim walks path through nested objects. A missing key or a
// non-object intermediate yields ok=false.
func lookupClaim(raw map[string]any, path []string) (string, bool, error) {
	var cur any = raw

	for _, key := range path {
		obj, isObj := cur.(map[string]any)
		if !isObj {
			return "", false, nil
		}

		cur, isObj = obj[key]
		if !isObj {
			return "", false, nil
		}
	}

	return claimString(path, cur)
}

// claimString converts a claim value to text. null, false, "" and 0 count
// as absent so the next source is tried.
func claimString(path []string, v any) (string, bool, error) {
	switch val := v.(type) {
	case nil:
		return "", false, nil
	case bool:
		if !val {
			return "", false, nil
		}

		return "", false, fmt.Errorf("claim %v has unexpected type %T", path, v)
	case string:
		return val, val != "", nil
	case float64:
		if val == 0 {
			return "", false, nil
		}

		return strconv.FormatFloat(val, 'f', -1, 64), true, nil
	case json.Number:
		if f, err := val.Float64(); err == nil && f == 0 {
			return "", false, nil
		}

		return val.String(), true, nil
	case int:
		return strconv.Itoa(val), val != 0, nil
	case int64:
		return strconv.FormatInt(val, 10), val != 0, nil
	default:
		return "", false, fmt.Errorf("claim %v has unexpected type %T", path, v)
	}
}
