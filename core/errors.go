package core

import (
	"errors"
	"strings"
)

// Sentinel errors for token validation.
var (
	// ErrJWTMissing is returned when the JWT is missing from the request.
	ErrJWTMissing = errors.New("jwt missing")

	// ErrJWTInvalid is returned when the JWT is invalid.
	// This is typically wrapped with more specific validation errors.
	ErrJWTInvalid = errors.New("jwt invalid")

	// ErrTokenNotFound is returned when no token is stored in the context.
	ErrTokenNotFound = errors.New("token not found in context")
)

// ValidationError wraps token validation failures with additional context.
// It provides structured error information that can be used for
// logging, metrics, and returning appropriate error responses.
type ValidationError struct {
	// Code is a machine-readable error code (e.g., "token_expired", "invalid_signature")
	Code string

	// Message is the description of the failure as reported by the validator
	Message string

	// Details contains the underlying error
	Details error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Details
}

// Is allows the error to be compared with ErrJWTInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrJWTInvalid
}

// Common error codes
const (
	ErrorCodeTokenMissing       = "token_missing"
	ErrorCodeTokenMalformed     = "token_malformed"
	ErrorCodeTokenExpired       = "token_expired"
	ErrorCodeTokenNotYetValid   = "token_not_yet_valid"
	ErrorCodeInvalidSignature   = "invalid_signature"
	ErrorCodeInvalidAlgorithm   = "invalid_algorithm"
	ErrorCodeInvalidIssuer      = "invalid_issuer"
	ErrorCodeInvalidAudience    = "invalid_audience"
	ErrorCodeInvalidCertificate = "invalid_certificate"
	ErrorCodeInvalidClaims      = "invalid_claims"
	ErrorCodeJWKSFetchFailed    = "jwks_fetch_failed"
	ErrorCodeJWKSKeyNotFound    = "jwks_key_not_found"
	ErrorCodeValidatorNotSet    = "validator_not_set"
)

// errorCodes maps fragments of validator descriptions to error codes. The
// first matching entry wins.
var errorCodes = []struct {
	fragment string
	code     string
}{
	{"does not consist of 'header'.'payload'.'signature'", ErrorCodeTokenMalformed},
	{"Jwt expired at", ErrorCodeTokenExpired},
	{"does not contain expiration (exp) claim", ErrorCodeTokenExpired},
	{"Jwt cannot be accepted before", ErrorCodeTokenNotYetValid},
	{"signature algorithm", ErrorCodeInvalidAlgorithm},
	{"Signature of Jwt Token is not valid", ErrorCodeInvalidSignature},
	{"'verificationkey' was not successful", ErrorCodeInvalidSignature},
	{"There is no Json Web Token Key", ErrorCodeJWKSKeyNotFound},
	{"Error retrieving Json Web Keys", ErrorCodeJWKSFetchFailed},
	{"Error creating PublicKey", ErrorCodeJWKSFetchFailed},
	{"jwks uri determination", ErrorCodeInvalidIssuer},
	{"Issuer", ErrorCodeInvalidIssuer},
	{"'jku'", ErrorCodeInvalidIssuer},
	{"audience", ErrorCodeInvalidAudience},
	{"Certificate", ErrorCodeInvalidCertificate},
	{"certificate", ErrorCodeInvalidCertificate},
}

// ErrorCode classifies a validator description. For the combined
// description of a chain, the first failure decides.
func ErrorCode(description string) string {
	first, _, _ := strings.Cut(description, "; ")
	for _, c := range errorCodes {
		if strings.Contains(first, c.fragment) {
			return c.code
		}
	}

	return ErrorCodeInvalidClaims
}

// NewValidationError creates a new ValidationError with the given code and message.
func NewValidationError(code, message string, details error) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
