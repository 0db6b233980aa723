package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sap/cloud-security-client-go/core"
)

// ErrorHandler converts validation errors to gRPC status errors.
type ErrorHandler func(error) error

// DefaultErrorHandler maps JWT validation errors to appropriate gRPC status codes.
// It returns gRPC status errors that follow standard gRPC error handling conventions.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	var validationErr *core.ValidationError
	if errors.As(err, &validationErr) {
		return mapValidationError(validationErr)
	}

	if errors.Is(err, core.ErrJWTMissing) {
		return status.Error(codes.Unauthenticated, "missing credentials")
	}

	// Handle extractor errors
	if errors.Is(err, ErrMultipleAuthHeaders) ||
		errors.Is(err, ErrInvalidAuthFormat) ||
		errors.Is(err, ErrUnsupportedScheme) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	return status.Error(codes.Internal, "unable to verify token")
}

// mapValidationError maps core.ValidationError to gRPC status codes. The
// reason reported by the validator is not passed to the client.
func mapValidationError(err *core.ValidationError) error {
	switch err.Code {
	case core.ErrorCodeTokenMissing:
		return status.Error(codes.Unauthenticated, "missing credentials")
	case core.ErrorCodeTokenExpired:
		return status.Error(codes.Unauthenticated, "token expired")
	case core.ErrorCodeTokenNotYetValid:
		return status.Error(codes.Unauthenticated, "token not yet valid")
	case core.ErrorCodeInvalidIssuer:
		return status.Error(codes.PermissionDenied, "invalid issuer")
	case core.ErrorCodeInvalidAudience:
		return status.Error(codes.PermissionDenied, "invalid audience")
	case core.ErrorCodeInvalidSignature:
		return status.Error(codes.Unauthenticated, "invalid signature")
	case core.ErrorCodeTokenMalformed:
		return status.Error(codes.InvalidArgument, "malformed token")
	case core.ErrorCodeInvalidAlgorithm:
		return status.Error(codes.Unauthenticated, "invalid algorithm")
	case core.ErrorCodeInvalidCertificate:
		return status.Error(codes.Unauthenticated, "token is not bound to the client certificate")
	case core.ErrorCodeJWKSFetchFailed:
		// JWKS failures are server-side infrastructure errors
		return status.Error(codes.Internal, "unable to verify token")
	case core.ErrorCodeJWKSKeyNotFound:
		return status.Error(codes.Unauthenticated, "unable to verify token")
	default:
		return status.Error(codes.Unauthenticated, "invalid token")
	}
}
