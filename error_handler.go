package cloudsecurity

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/sap/cloud-security-client-go/core"
)

var (
	// ErrJWTMissing is returned when the JWT is missing.
	ErrJWTMissing = core.ErrJWTMissing

	// ErrJWTInvalid is returned when the JWT is invalid.
	ErrJWTInvalid = core.ErrJWTInvalid
)

// ErrorHandler is a handler which is called when an error occurs in the
// Middleware. Among some general errors, this handler also determines the
// response of the Middleware when a token is not found or is invalid. The
// err can be checked to be ErrJWTMissing or ErrJWTInvalid for specific
// cases, and unwrapped to *core.ValidationError for the failure code.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorResponse is the JSON body written by DefaultErrorHandler.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
}

type errorMapping struct {
	status      int
	error       string
	description string
}

// errorMappings maps core error codes to RFC 6750 responses. The reason
// reported by the validator is logged, never sent to the client.
var errorMappings = map[string]errorMapping{
	core.ErrorCodeTokenExpired:       {http.StatusUnauthorized, "invalid_token", "The access token expired"},
	core.ErrorCodeTokenNotYetValid:   {http.StatusUnauthorized, "invalid_token", "The access token is not yet valid"},
	core.ErrorCodeInvalidSignature:   {http.StatusUnauthorized, "invalid_token", "The access token signature is invalid"},
	core.ErrorCodeTokenMalformed:     {http.StatusBadRequest, "invalid_request", "The access token is malformed"},
	core.ErrorCodeInvalidIssuer:      {http.StatusForbidden, "insufficient_scope", "The access token was issued by an untrusted issuer"},
	core.ErrorCodeInvalidAudience:    {http.StatusForbidden, "insufficient_scope", "The access token audience does not match"},
	core.ErrorCodeInvalidAlgorithm:   {http.StatusUnauthorized, "invalid_token", "The access token uses an unsupported algorithm"},
	core.ErrorCodeInvalidCertificate: {http.StatusUnauthorized, "invalid_token", "The access token is not bound to the client certificate"},
	core.ErrorCodeJWKSFetchFailed:    {http.StatusUnauthorized, "invalid_token", "Unable to verify the access token"},
	core.ErrorCodeJWKSKeyNotFound:    {http.StatusUnauthorized, "invalid_token", "Unable to verify the access token"},
}

// DefaultErrorHandler is the default error handler implementation for the
// Middleware. If an error handler is not provided via the WithErrorHandler
// option this will be used.
//
// Responses follow RFC 6750: a missing token yields 401 with a bare Bearer
// challenge, an invalid token 401 (400 if malformed, 403 for an issuer or
// audience mismatch) with error and error_description in both the
// WWW-Authenticate header and the JSON body, and any other error 500.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	var (
		status int
		resp   ErrorResponse
	)

	var validationErr *core.ValidationError
	switch {
	case errors.Is(err, ErrJWTMissing):
		// no error attributes when the request lacks authentication (RFC 6750, 3.1)
		status = http.StatusUnauthorized
		resp = ErrorResponse{Error: "invalid_token"}
		w.Header().Set("WWW-Authenticate", "Bearer")
	case errors.As(err, &validationErr):
		mapping, ok := errorMappings[validationErr.Code]
		if !ok {
			mapping = errorMapping{http.StatusUnauthorized, "invalid_token", "The access token is invalid"}
		}

		status = mapping.status
		resp = ErrorResponse{Error: mapping.error, ErrorDescription: mapping.description, ErrorCode: validationErr.Code}
		w.Header().Set("WWW-Authenticate", bearerChallenge(mapping.error, mapping.description))
	case errors.Is(err, ErrJWTInvalid):
		status = http.StatusUnauthorized
		resp = ErrorResponse{Error: "invalid_token", ErrorDescription: "JWT is invalid"}
		w.Header().Set("WWW-Authenticate", bearerChallenge(resp.Error, resp.ErrorDescription))
	default:
		status = http.StatusInternalServerError
		resp = ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "An internal error occurred while processing the request",
		}
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func bearerChallenge(errorCode, description string) string {
	return fmt.Sprintf(`Bearer error=%q, error_description=%q`, errorCode, description)
}
