package jwks

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// ============================================================================
// Cache Options
// ============================================================================

const (
	// MinCacheTime is the shortest accepted write expiry for cached keys and
	// discovery documents.
	MinCacheTime = 600 * time.Second

	// MaxCacheTime is the longest accepted write expiry. Keys rotate server
	// side, so they must not be cached for much longer.
	MaxCacheTime = 900 * time.Second

	// MinCacheSize is the smallest accepted number of cache entries.
	MinCacheSize = 1000
)

// Logger defines an optional logging interface compatible with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// CacheOption configures a KeyCache or a DiscoveryCache.
type CacheOption func(*cacheConfig) error

type cacheConfig struct {
	cacheTime time.Duration
	cacheSize int
	clock     clockwork.Clock
	logger    Logger
}

func defaultCacheConfig() *cacheConfig {
	return &cacheConfig{
		cacheTime: MinCacheTime,
		cacheSize: MinCacheSize,
		clock:     clockwork.NewRealClock(),
	}
}

func (c *cacheConfig) apply(opts []CacheOption) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}

	return nil
}

// WithCacheTime sets how long an entry is served after it was written.
// It must be between MinCacheTime and MaxCacheTime.
//
// Default: MinCacheTime
func WithCacheTime(d time.Duration) CacheOption {
	return func(c *cacheConfig) error {
		if d < MinCacheTime || d > MaxCacheTime {
			return fmt.Errorf("%w: cache time must be between %s and %s, got %s",
				ErrInvalidArgument, MinCacheTime, MaxCacheTime, d)
		}
		c.cacheTime = d
		return nil
	}
}

// WithCacheSize sets the maximum number of entries. It must be at least
// MinCacheSize.
//
// Default: MinCacheSize
func WithCacheSize(n int) CacheOption {
	return func(c *cacheConfig) error {
		if n < MinCacheSize {
			return fmt.Errorf("%w: cache size must be at least %d, got %d",
				ErrInvalidArgument, MinCacheSize, n)
		}
		c.cacheSize = n
		return nil
	}
}

// WithClock sets the clock used to expire entries. Intended for tests.
func WithClock(clock clockwork.Clock) CacheOption {
	return func(c *cacheConfig) error {
		if clock == nil {
			return fmt.Errorf("%w: clock cannot be nil", ErrInvalidArgument)
		}
		c.clock = clock
		return nil
	}
}

// WithLogger sets an optional logger.
func WithLogger(logger Logger) CacheOption {
	return func(c *cacheConfig) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidArgument)
		}
		c.logger = logger
		return nil
	}
}
