package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap/cloud-security-client-go/config"
	"github.com/sap/cloud-security-client-go/token"
)

func TestAudienceValidator(t *testing.T) {
	testCases := []struct {
		name    string
		service config.Service
		trusted []string
		claims  map[string]any
		want    string
	}{
		{
			name:    "it accepts a token issued for the client id",
			service: config.ServiceIAS,
			trusted: []string{"sb-test4!t1"},
			claims:  map[string]any{token.ClaimAudience: []string{"sb-test4!t1"}},
		},
		{
			name:    "it accepts a single string audience",
			service: config.ServiceIAS,
			trusted: []string{"client"},
			claims:  map[string]any{token.ClaimAudience: "client"},
		},
		{
			name:    "it strips namespaces from audiences",
			service: config.ServiceXSUAA,
			trusted: []string{"sb-test4!t1"},
			claims:  map[string]any{token.ClaimAudience: []string{"sb-test4!t1.data"}},
		},
		{
			name:    "it accepts a token issued for the app id",
			service: config.ServiceXSUAA,
			trusted: []string{"sb-client", "test4!t1"},
			claims:  map[string]any{token.ClaimAudience: []string{"other", "test4!t1"}},
		},
		{
			name:    "it counts azp as audience",
			service: config.ServiceIAS,
			trusted: []string{"client"},
			claims:  map[string]any{token.ClaimAudience: []string{"other-1", "other-2"}, token.ClaimAuthorizedParty: "client"},
		},
		{
			name:    "it accepts a token issued for a broker clone",
			service: config.ServiceXSUAA,
			trusted: []string{"sb-broker", "broker!b4"},
			claims:  map[string]any{token.ClaimAudience: []string{"sb-clone-1|broker!b4"}},
		},
		{
			name:    "it derives XSUAA audiences from scopes",
			service: config.ServiceXSUAA,
			trusted: []string{"sb-test4!t1"},
			claims:  map[string]any{token.ClaimScope: []string{"openid", "sb-test4!t1.read"}},
		},
		{
			name:    "it rejects a token without audience",
			service: config.ServiceIAS,
			trusted: []string{"sb-test4!t1"},
			claims:  map[string]any{token.ClaimScope: []string{"sb-test4!t1.read"}},
			want:    "Jwt token with audience [] is not issued for these clientIds: [sb-test4!t1].",
		},
		{
			name:    "it rejects a clone of a non broker app",
			service: config.ServiceXSUAA,
			trusted: []string{"app!t4"},
			claims:  map[string]any{token.ClaimAudience: []string{"sb-clone-1|app!t4"}},
			want:    "Jwt token with audience [sb-clone-1|app!t4] is not issued for these clientIds: [app!t4].",
		},
		{
			name:    "it rejects a foreign audience",
			service: config.ServiceXSUAA,
			trusted: []string{"sb-test4!t1", " ", "sb-test4!t1"},
			claims:  map[string]any{token.ClaimAudience: []string{"sb-test4!t10"}},
			want:    "Jwt token with audience [sb-test4!t10] is not issued for these clientIds: [sb-test4!t1].",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := NewAudienceValidator(tc.service, tc.trusted...)
			require.NoError(t, err)

			result := v.Validate(context.Background(), unsignedToken(t, map[string]any{"alg": "RS256"}, tc.claims))
			if tc.want == "" {
				assert.True(t, result.IsValid(), result.ErrorDescription())
				return
			}

			assert.Equal(t, tc.want, result.ErrorDescription())
		})
	}

	t.Run("it requires a client id", func(t *testing.T) {
		_, err := NewAudienceValidator(config.ServiceIAS, "", " ")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestDerivedAudiences(t *testing.T) {
	parsed := unsignedToken(t, map[string]any{"alg": "RS256"}, map[string]any{
		token.ClaimAudience:        []string{"app!t1.read", "app!t1.write", "other"},
		token.ClaimAuthorizedParty: "client",
	})

	assert.Equal(t, []string{"app!t1", "other", "client"}, DerivedAudiences(parsed, config.ServiceXSUAA))
}

func TestXSUAAAudienceValidator(t *testing.T) {
	v, err := NewXSUAAAudienceValidator("app!t1", "sb-app!t1")
	require.NoError(t, err)

	broker, err := v.WithServiceInstance("broker!b2", "sb-broker!b2")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		validator *XSUAAAudienceValidator
		claims    map[string]any
		want      string
	}{
		{
			name:      "it accepts the client id",
			validator: v,
			claims:    map[string]any{token.ClaimClientID: "sb-app!t1"},
		},
		{
			name:      "it accepts an audience equal to the app id",
			validator: v,
			claims:    map[string]any{token.ClaimClientID: "sb-other", token.ClaimAudience: []string{"app!t1.read"}},
		},
		{
			name:      "it accepts scopes of the app without audience",
			validator: v,
			claims:    map[string]any{token.ClaimClientID: "sb-other", token.ClaimScope: []string{"app!t1.read"}},
		},
		{
			name:      "it accepts a clone of the broker",
			validator: broker,
			claims:    map[string]any{token.ClaimClientID: "sb-clone|broker!b2"},
		},
		{
			name:      "it does not share instances with the original",
			validator: v,
			claims:    map[string]any{token.ClaimClientID: "sb-broker!b2"},
			want:      "Jwt token audience matches none of these: [app!t1].",
		},
		{
			name:      "it rejects a token without cid",
			validator: v,
			claims:    map[string]any{token.ClaimAudience: []string{"app!t1"}},
			want:      "Jwt token must contain 'cid' (client_id).",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.validator.Validate(context.Background(), unsignedToken(t, map[string]any{"alg": "RS256"}, tc.claims))
			if tc.want == "" {
				assert.True(t, result.IsValid(), result.ErrorDescription())
				return
			}

			assert.Equal(t, tc.want, result.ErrorDescription())
		})
	}

	t.Run("it requires app id and client id", func(t *testing.T) {
		_, err := NewXSUAAAudienceValidator("", "client")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}
