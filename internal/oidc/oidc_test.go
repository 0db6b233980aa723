package oidc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoveryURI(t *testing.T) {
	tests := []struct {
		name        string
		issuer      string
		want        string
		expectError bool
	}{
		{
			name:   "Issuer with https scheme",
			issuer: "https://tenant.accounts.example.com",
			want:   "https://tenant.accounts.example.com/.well-known/openid-configuration",
		},
		{
			name:   "Issuer without scheme is treated as https",
			issuer: "tenant.accounts.example.com",
			want:   "https://tenant.accounts.example.com/.well-known/openid-configuration",
		},
		{
			name:   "Issuer with trailing slash and path",
			issuer: "http://localhost:8080/oauth/",
			want:   "http://localhost:8080/oauth/.well-known/openid-configuration",
		},
		{
			name:   "Query and fragment are dropped",
			issuer: "https://tenant.accounts.example.com?x=y#frag",
			want:   "https://tenant.accounts.example.com/.well-known/openid-configuration",
		},
		{
			name:        "Empty issuer",
			issuer:      "  ",
			expectError: true,
		},
		{
			name:        "Issuer without host",
			issuer:      "https://",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiscoveryURI(tt.issuer)
			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWellKnownEndpoints(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		want        *WellKnownEndpoints
		expectError bool
	}{
		{
			name: "Complete document",
			body: `{
				"issuer":"https://example.com",
				"jwks_uri":"https://example.com/oauth2/certs",
				"token_endpoint":"https://example.com/oauth2/token",
				"authorization_endpoint":"https://example.com/oauth2/authorize"
			}`,
			want: &WellKnownEndpoints{
				Issuer:                "https://example.com",
				JWKSURI:               "https://example.com/oauth2/certs",
				TokenEndpoint:         "https://example.com/oauth2/token",
				AuthorizationEndpoint: "https://example.com/oauth2/authorize",
			},
		},
		{
			name:        "Malformed JSON",
			body:        `{"jwks_uri": "https://example.com/jwks"`,
			expectError: true,
		},
		{
			name:        "Missing jwks_uri",
			body:        `{"issuer":"https://example.com"}`,
			expectError: true,
		},
		{
			name:        "Empty body",
			body:        ``,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWellKnownEndpoints([]byte(tt.body))
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidDocument)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
