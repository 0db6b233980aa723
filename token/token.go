package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrMalformed is returned by Parse when the header or payload segment
// cannot be decoded.
var ErrMalformed = errors.New("malformed jwt")

// Token is an immutable view over a decoded JWT. It keeps the original
// compact serialization so that the signature can be verified later on.
type Token struct {
	raw    string
	header map[string]any
	claims map[string]any
}

// Parse decodes the header and payload of a compact serialized JWT.
//
// The signature segment is neither required nor checked here. Verifying the
// number of segments and the signature itself is left to the signature
// validator, which reports a structural problem as a validation failure.
func Parse(raw string) (*Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrMalformed)
	}

	parts := strings.Split(raw, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: token does not contain a payload segment", ErrMalformed)
	}

	header, err := decodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode header: %w", ErrMalformed, err)
	}

	claims, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode payload: %w", ErrMalformed, err)
	}

	return &Token{raw: raw, header: header, claims: claims}, nil
}

func decodeSegment(segment string) (map[string]any, error) {
	// tolerate padded segments produced by some legacy issuers
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return nil, err
	}

	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}

	return values, nil
}

// Raw returns the compact serialization the token was parsed from.
func (t *Token) Raw() string {
	return t.raw
}

// HasHeaderParameter reports whether the header carries the given parameter.
func (t *Token) HasHeaderParameter(name string) bool {
	_, ok := t.header[name]
	return ok
}

// HeaderParameterAsString returns a header parameter or "" if absent or not a string.
func (t *Token) HeaderParameterAsString(name string) string {
	s, _ := t.header[name].(string)
	return s
}

// HasClaim reports whether the payload carries the given claim.
func (t *Token) HasClaim(name string) bool {
	_, ok := t.claims[name]
	return ok
}

// ClaimAsString returns a claim or "" if absent or not a string.
func (t *Token) ClaimAsString(name string) string {
	s, _ := t.claims[name].(string)
	return s
}

// ClaimAsStringList returns a claim as a list of strings. A single string
// value is returned as a one element list. Non string entries are skipped.
func (t *Token) ClaimAsStringList(name string) []string {
	switch v := t.claims[name].(type) {
	case string:
		return []string{v}
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				list = append(list, s)
			}
		}
		return list
	case []string:
		return append([]string(nil), v...)
	default:
		return nil
	}
}

// ClaimAsJSONObject returns a claim holding a JSON object, or nil.
func (t *Token) ClaimAsJSONObject(name string) map[string]any {
	m, _ := t.claims[name].(map[string]any)
	return m
}

// ClaimAsInstant interprets a NumericDate claim (seconds since the epoch).
func (t *Token) ClaimAsInstant(name string) (time.Time, bool) {
	switch v := t.claims[name].(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC(), true
	case int64:
		return time.Unix(v, 0).UTC(), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// Expiration returns the exp claim.
func (t *Token) Expiration() (time.Time, bool) {
	return t.ClaimAsInstant(ClaimExpiration)
}

// NotBefore returns the nbf claim, falling back to iat when nbf is absent.
func (t *Token) NotBefore() (time.Time, bool) {
	if nbf, ok := t.ClaimAsInstant(ClaimNotBefore); ok {
		return nbf, true
	}

	return t.ClaimAsInstant(ClaimIssuedAt)
}

// Issuer returns the iss claim.
func (t *Token) Issuer() string {
	return t.ClaimAsString(ClaimIssuer)
}

// Audiences returns the aud claim, which may be a string or a list.
func (t *Token) Audiences() []string {
	return t.ClaimAsStringList(ClaimAudience)
}

// ClientID returns the OAuth client the token was issued for: azp if present,
// otherwise a single valued aud, otherwise cid.
func (t *Token) ClientID() string {
	if azp := t.ClaimAsString(ClaimAuthorizedParty); strings.TrimSpace(azp) != "" {
		return azp
	}

	if aud := t.Audiences(); len(aud) == 1 && strings.TrimSpace(aud[0]) != "" {
		return aud[0]
	}

	return t.ClaimAsString(ClaimClientID)
}

// AppTID returns the app_tid claim identifying the tenant of an IAS token.
func (t *Token) AppTID() string {
	return t.ClaimAsString(ClaimAppTID)
}

// ZoneID returns the zid claim of an XSUAA token.
func (t *Token) ZoneID() string {
	return t.ClaimAsString(ClaimZoneID)
}

// Scopes returns the scope claim of an XSUAA token.
func (t *Token) Scopes() []string {
	return t.ClaimAsStringList(ClaimScope)
}

// Claims returns a shallow copy of the payload claims.
func (t *Token) Claims() map[string]any {
	out := make(map[string]any, len(t.claims))
	for k, v := range t.claims {
		out[k] = v
	}
	return out
}
