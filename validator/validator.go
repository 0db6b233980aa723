package validator

import (
	"context"
	"errors"

	"github.com/sap/cloud-security-client-go/token"
)

// ErrInvalidArgument is returned when a validator is constructed with a
// missing or malformed argument.
var ErrInvalidArgument = errors.New("invalid argument")

// Validator checks a single aspect of a token.
//
// Implementations must be safe for concurrent use. A Validator never
// returns errors for tokens it rejects; the reason is carried by the Result.
type Validator interface {
	Validate(ctx context.Context, t *token.Token) Result
}

// Func adapts an ordinary function to a Validator.
type Func func(ctx context.Context, t *token.Token) Result

// Validate calls f(ctx, t).
func (f Func) Validate(ctx context.Context, t *token.Token) Result {
	return f(ctx, t)
}

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by the jwks package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func loggerOrNop(logger Logger) Logger {
	if logger == nil {
		return nopLogger{}
	}

	return logger
}
