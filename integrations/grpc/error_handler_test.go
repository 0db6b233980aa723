package grpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sap/cloud-security-client-go/core"
)

func TestDefaultErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    codes.Code
		wantMessage string
	}{
		{"jwt missing", core.ErrJWTMissing, codes.Unauthenticated, "missing credentials"},
		{"token missing", core.NewValidationError(core.ErrorCodeTokenMissing, "x", nil), codes.Unauthenticated, "missing credentials"},
		{"token expired", core.NewValidationError(core.ErrorCodeTokenExpired, "Jwt expired at", nil), codes.Unauthenticated, "token expired"},
		{"token not yet valid", core.NewValidationError(core.ErrorCodeTokenNotYetValid, "x", nil), codes.Unauthenticated, "token not yet valid"},
		{"invalid issuer", core.NewValidationError(core.ErrorCodeInvalidIssuer, "x", nil), codes.PermissionDenied, "invalid issuer"},
		{"invalid audience", core.NewValidationError(core.ErrorCodeInvalidAudience, "x", nil), codes.PermissionDenied, "invalid audience"},
		{"invalid signature", core.NewValidationError(core.ErrorCodeInvalidSignature, "x", nil), codes.Unauthenticated, "invalid signature"},
		{"malformed", core.NewValidationError(core.ErrorCodeTokenMalformed, "x", nil), codes.InvalidArgument, "malformed token"},
		{"invalid algorithm", core.NewValidationError(core.ErrorCodeInvalidAlgorithm, "x", nil), codes.Unauthenticated, "invalid algorithm"},
		{"invalid certificate", core.NewValidationError(core.ErrorCodeInvalidCertificate, "x", nil), codes.Unauthenticated, "token is not bound to the client certificate"},
		{"jwks fetch failed", core.NewValidationError(core.ErrorCodeJWKSFetchFailed, "x", nil), codes.Internal, "unable to verify token"},
		{"jwks key not found", core.NewValidationError(core.ErrorCodeJWKSKeyNotFound, "x", nil), codes.Unauthenticated, "unable to verify token"},
		{"unknown code", core.NewValidationError(core.ErrorCodeInvalidClaims, "secret reason", nil), codes.Unauthenticated, "invalid token"},
		{"wrapped validation error", fmt.Errorf("wrapped: %w", core.NewValidationError(core.ErrorCodeInvalidAudience, "x", nil)), codes.PermissionDenied, "invalid audience"},
		{"invalid format", ErrInvalidAuthFormat, codes.InvalidArgument, ErrInvalidAuthFormat.Error()},
		{"multiple headers", ErrMultipleAuthHeaders, codes.InvalidArgument, ErrMultipleAuthHeaders.Error()},
		{"unsupported scheme", ErrUnsupportedScheme, codes.InvalidArgument, ErrUnsupportedScheme.Error()},
		{"generic error", errors.New("boom"), codes.Internal, "unable to verify token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(DefaultErrorHandler(tt.err))
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, st.Code())
			assert.Equal(t, tt.wantMessage, st.Message())
		})
	}

	t.Run("nil error", func(t *testing.T) {
		assert.NoError(t, DefaultErrorHandler(nil))
	})
}
