package prooftoken

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the time between two refreshes of the registry.
const DefaultInterval = 60 * time.Second

// Logger defines an optional logging interface compatible with log/slog.
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

// Option configures a Registry.
type Option func(*Registry) error

// WithInterval sets the refresh interval. Default: DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(r *Registry) error {
		if d <= 0 {
			return fmt.Errorf("%w: refresh interval must be positive", ErrInvalidArgument)
		}
		r.interval = d
		return nil
	}
}

// WithClock sets the clock driving the refresh schedule.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Registry) error {
		if clock == nil {
			return fmt.Errorf("%w: clock cannot be nil", ErrInvalidArgument)
		}
		r.clock = clock
		return nil
	}
}

// WithHeaders adds request headers to every refresh request.
func WithHeaders(headers map[string]string) Option {
	return func(r *Registry) error {
		for name, value := range headers {
			r.headers[name] = value
		}
		return nil
	}
}

// WithLogger sets the logger reporting refreshes.
func WithLogger(logger Logger) Option {
	return func(r *Registry) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidArgument)
		}
		r.logger = logger
		return nil
	}
}
