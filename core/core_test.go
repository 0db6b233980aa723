package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap/cloud-security-client-go/jwtgenerator"
	"github.com/sap/cloud-security-client-go/token"
	"github.com/sap/cloud-security-client-go/validator"
)

// mockLogger is a mock implementation of Logger for testing.
type mockLogger struct {
	debugCalls []logCall
	infoCalls  []logCall
	warnCalls  []logCall
	errorCalls []logCall
}

type logCall struct {
	msg  string
	args []any
}

func (m *mockLogger) Debug(msg string, args ...any) {
	m.debugCalls = append(m.debugCalls, logCall{msg, args})
}

func (m *mockLogger) Info(msg string, args ...any) {
	m.infoCalls = append(m.infoCalls, logCall{msg, args})
}

func (m *mockLogger) Warn(msg string, args ...any) {
	m.warnCalls = append(m.warnCalls, logCall{msg, args})
}

func (m *mockLogger) Error(msg string, args ...any) {
	m.errorCalls = append(m.errorCalls, logCall{msg, args})
}

func constant(result validator.Result) validator.Validator {
	return validator.Func(func(context.Context, *token.Token) validator.Result { return result })
}

func signedToken(t *testing.T) string {
	t.Helper()

	keys, err := jwtgenerator.GenerateKeyPair("key-1")
	require.NoError(t, err)

	return jwtgenerator.ForIAS(keys, "client", "https://tenant.accounts.example.com", "tenant-1").MustSign()
}

func TestNew(t *testing.T) {
	t.Run("successful creation with required options", func(t *testing.T) {
		c, err := New(WithValidator(constant(validator.Valid())))
		require.NoError(t, err)
		assert.False(t, c.credentialsOptional)
	})

	t.Run("successful creation with all options", func(t *testing.T) {
		c, err := New(
			WithValidator(constant(validator.Valid())),
			WithCredentialsOptional(true),
			WithLogger(&mockLogger{}),
		)
		require.NoError(t, err)
		assert.True(t, c.credentialsOptional)
		assert.NotNil(t, c.logger)
	})

	t.Run("error when validator is missing", func(t *testing.T) {
		_, err := New()

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, ErrorCodeValidatorNotSet, validationErr.Code)
	})

	t.Run("error when options receive nil", func(t *testing.T) {
		_, err := New(WithValidator(nil))
		assert.Error(t, err)

		_, err = New(WithValidator(constant(validator.Valid())), WithLogger(nil))
		assert.Error(t, err)
	})
}

func TestCore_CheckToken(t *testing.T) {
	raw := signedToken(t)

	testCases := []struct {
		name                string
		raw                 string
		validator           validator.Validator
		credentialsOptional bool
		wantToken           bool
		wantErr             error
		wantCode            string
	}{
		{
			name:      "valid token",
			raw:       raw,
			validator: constant(validator.Valid()),
			wantToken: true,
		},
		{
			name:      "missing token",
			validator: constant(validator.Valid()),
			wantErr:   ErrJWTMissing,
		},
		{
			name:                "missing optional token",
			validator:           constant(validator.Valid()),
			credentialsOptional: true,
		},
		{
			name:      "malformed token",
			raw:       "not-a-token",
			validator: constant(validator.Valid()),
			wantErr:   ErrJWTInvalid,
			wantCode:  ErrorCodeTokenMalformed,
		},
		{
			name:      "rejected token",
			raw:       raw,
			validator: constant(validator.Invalid("Jwt expired at 2024-05-01T13:00:00Z, time now: 2024-05-01T14:00:00Z")),
			wantErr:   ErrJWTInvalid,
			wantCode:  ErrorCodeTokenExpired,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger := &mockLogger{}
			c, err := New(
				WithValidator(tc.validator),
				WithCredentialsOptional(tc.credentialsOptional),
				WithLogger(logger),
			)
			require.NoError(t, err)

			got, err := c.CheckToken(context.Background(), tc.raw)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
			}

			if tc.wantCode != "" {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tc.wantCode, validationErr.Code)
			}

			if tc.wantToken {
				require.NotNil(t, got)
				assert.Equal(t, "client", got.ClientID())
				assert.NotEmpty(t, logger.debugCalls)
			}
		})
	}

	t.Run("it passes the context to the validator", func(t *testing.T) {
		type key struct{}
		var seen any

		c, err := New(WithValidator(validator.Func(func(ctx context.Context, _ *token.Token) validator.Result {
			seen = ctx.Value(key{})
			return validator.Valid()
		})))
		require.NoError(t, err)

		_, err = c.CheckToken(context.WithValue(context.Background(), key{}, "request"), raw)
		require.NoError(t, err)
		assert.Equal(t, "request", seen)
	})
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		description string
		want        string
	}{
		{"Jwt expired at 2024-05-01T13:00:00Z, time now: 2024-05-01T14:00:00Z", ErrorCodeTokenExpired},
		{"Jwt does not contain expiration (exp) claim. Cannot be validated!", ErrorCodeTokenExpired},
		{"Jwt cannot be accepted before 2024-05-01T13:00:00Z, time now: 2024-05-01T12:00:00Z", ErrorCodeTokenNotYetValid},
		{"Jwt token does not consist of 'header'.'payload'.'signature'.", ErrorCodeTokenMalformed},
		{"Jwt token with signature algorithm 'HS256' is not supported.", ErrorCodeInvalidAlgorithm},
		{"Signature of Jwt Token is not valid: the identity provided by the JSON Web Token Key can not be verified (Signature: x).", ErrorCodeInvalidSignature},
		{"There is no Json Web Token Key with keyId 'k' and type 'RSA' found on jwks uri u for zone 'z' to prove the identity of the Jwt.", ErrorCodeJWKSKeyNotFound},
		{"Error retrieving Json Web Keys from Identity Service: status 500.", ErrorCodeJWKSFetchFailed},
		{"Issuer is not trusted because 'iss' 'https://evil.com' doesn't match any of these domains '[a]' of the identity provider.", ErrorCodeInvalidIssuer},
		{"Jwt token does not contain a valid 'jku' header parameter.", ErrorCodeInvalidIssuer},
		{"Jwt token with audience [x] is not issued for these clientIds: [y].", ErrorCodeInvalidAudience},
		{"Certificate validation failed", ErrorCodeInvalidCertificate},
		{"Client certificate missing from SecurityContext", ErrorCodeInvalidCertificate},
		{"Token does not contain the mandatory kid header.", ErrorCodeInvalidClaims},
		{"Jwt expired at 2024-05-01T13:00:00Z, time now: x; Jwt token with audience [x] is not issued for these clientIds: [y].", ErrorCodeTokenExpired},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorCode(tc.description))
		})
	}
}

func TestValidationError(t *testing.T) {
	details := errors.New("boom")
	err := NewValidationError(ErrorCodeTokenMalformed, "token is malformed", details)

	assert.Equal(t, "token is malformed: boom", err.Error())
	assert.ErrorIs(t, err, ErrJWTInvalid)
	assert.ErrorIs(t, err, details)
	assert.Equal(t, "no details", NewValidationError("x", "no details", nil).Error())
}
