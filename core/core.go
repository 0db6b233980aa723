package core

import (
	"context"
	"time"

	"github.com/sap/cloud-security-client-go/token"
	"github.com/sap/cloud-security-client-go/validator"
)

// Logger defines an optional logging interface for the core middleware.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Core parses tokens and runs them through a validator, usually the
// *validator.Chain built by validator.New.
type Core struct {
	validator           validator.Validator
	credentialsOptional bool
	logger              Logger
}

// CheckToken parses and validates a raw token.
//
//   - If raw is empty and credentials are optional, it returns (nil, nil)
//   - If raw is empty and credentials are required, it returns ErrJWTMissing
//   - Otherwise the token is parsed and validated. Failures are returned as
//     *ValidationError matching ErrJWTInvalid.
//
// The client certificate of the request, if any, must already be stored in
// ctx with validator.WithClientCertificate.
func (c *Core) CheckToken(ctx context.Context, raw string) (*token.Token, error) {
	if raw == "" {
		if c.credentialsOptional {
			if c.logger != nil {
				c.logger.Debug("No token provided, but credentials are optional")
			}
			return nil, nil
		}

		if c.logger != nil {
			c.logger.Warn("No token provided and credentials are required")
		}

		return nil, ErrJWTMissing
	}

	t, err := token.Parse(raw)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("Token could not be parsed", "error", err)
		}

		return nil, NewValidationError(ErrorCodeTokenMalformed, "token is malformed", err)
	}

	start := time.Now()
	result := c.validator.Validate(ctx, t)
	duration := time.Since(start)

	if result.IsErroneous() {
		if c.logger != nil {
			c.logger.Error("Token validation failed",
				"reason", result.ErrorDescription(),
				"client_id", t.ClientID(),
				"duration", duration)
		}

		return nil, NewValidationError(ErrorCode(result.ErrorDescription()), result.ErrorDescription(), nil)
	}

	if c.logger != nil {
		c.logger.Debug("Token validated successfully", "client_id", t.ClientID(), "duration", duration)
	}

	return t, nil
}
