// Package jwtgenerator creates signed XSUAA and IAS tokens and serves the
// matching keys, for tests of applications using this module.
package jwtgenerator

import (
	"fmt"
	"maps"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/sap/cloud-security-client-go/token"
)

// DefaultValidity is the lifetime of generated tokens.
const DefaultValidity = 30 * time.Minute

// Generator builds signed tokens. Every With method returns a modified copy,
// so a Generator can be prepared once and varied per test.
type Generator struct {
	keys   *KeyPair
	header map[string]any
	claims map[string]any
}

// New creates a Generator signing with keys. Generated tokens carry the kid
// of keys and are valid for DefaultValidity from now.
func New(keys *KeyPair) *Generator {
	now := time.Now()

	return &Generator{
		keys: keys,
		header: map[string]any{
			token.HeaderKeyID: keys.KeyID,
			token.HeaderType:  "JWT",
		},
		claims: map[string]any{
			token.ClaimIssuedAt:   now,
			token.ClaimExpiration: now.Add(DefaultValidity),
		},
	}
}

// ForXSUAA creates a Generator for XSUAA access tokens of clientID, with a
// jku pointing to the token_keys endpoint of uaaDomain.
func ForXSUAA(keys *KeyPair, clientID, uaaDomain, zoneID string) *Generator {
	return New(keys).
		WithHeaderParameter(token.HeaderJKU, fmt.Sprintf("https://%s/token_keys", uaaDomain)).
		WithClaim(token.ClaimIssuer, fmt.Sprintf("https://%s/oauth/token", uaaDomain)).
		WithClaim(token.ClaimClientID, clientID).
		WithClaim(token.ClaimAuthorizedParty, clientID).
		WithClaim(token.ClaimZoneID, zoneID).
		WithClaim(token.ClaimAudience, []string{clientID})
}

// ForIAS creates a Generator for IAS tokens of clientID issued by issuer.
func ForIAS(keys *KeyPair, clientID, issuer, appTID string) *Generator {
	return New(keys).
		WithClaim(token.ClaimIssuer, issuer).
		WithClaim(token.ClaimAuthorizedParty, clientID).
		WithClaim(token.ClaimAppTID, appTID).
		WithClaim(token.ClaimAudience, []string{clientID})
}

func (g *Generator) clone() *Generator {
	return &Generator{
		keys:   g.keys,
		header: maps.Clone(g.header),
		claims: maps.Clone(g.claims),
	}
}

// WithHeaderParameter sets a protected header parameter. alg is always
// RS256 and cannot be changed.
func (g *Generator) WithHeaderParameter(name string, value any) *Generator {
	c := g.clone()
	c.header[name] = value
	return c
}

// WithoutHeaderParameter removes a header parameter.
func (g *Generator) WithoutHeaderParameter(name string) *Generator {
	c := g.clone()
	delete(c.header, name)
	return c
}

// WithClaim sets a claim.
func (g *Generator) WithClaim(name string, value any) *Generator {
	c := g.clone()
	c.claims[name] = value
	return c
}

// WithoutClaim removes a claim.
func (g *Generator) WithoutClaim(name string) *Generator {
	c := g.clone()
	delete(c.claims, name)
	return c
}

// WithExpiration sets exp.
func (g *Generator) WithExpiration(exp time.Time) *Generator {
	return g.WithClaim(token.ClaimExpiration, exp)
}

// WithNotBefore sets nbf.
func (g *Generator) WithNotBefore(nbf time.Time) *Generator {
	return g.WithClaim(token.ClaimNotBefore, nbf)
}

// WithCertificateThumbprint binds the token to a client certificate by
// setting cnf.x5t#S256.
func (g *Generator) WithCertificateThumbprint(thumbprint string) *Generator {
	return g.WithClaim(token.ClaimCnf, map[string]any{token.CnfX5tS256: thumbprint})
}

// Sign returns the compact serialisation of the token.
func (g *Generator) Sign() (string, error) {
	t := jwt.New()
	for name, value := range g.claims {
		if err := t.Set(name, value); err != nil {
			return "", fmt.Errorf("failed to set claim %q: %w", name, err)
		}
	}

	headers := jws.NewHeaders()
	for name, value := range g.header {
		if err := headers.Set(name, value); err != nil {
			return "", fmt.Errorf("failed to set header %q: %w", name, err)
		}
	}

	signed, err := jwt.Sign(t, jwt.WithKey(jwa.RS256(), g.keys.Private, jws.WithProtectedHeaders(headers)))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// MustSign is like Sign but panics on failure.
func (g *Generator) MustSign() string {
	signed, err := g.Sign()
	if err != nil {
		panic(err)
	}

	return signed
}
