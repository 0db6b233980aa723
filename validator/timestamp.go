package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sap/cloud-security-client-go/token"
)

// DefaultTolerance is the clock skew accepted by the TimestampValidator.
const DefaultTolerance = 60 * time.Second

// TimestampValidator checks that a token is within its validity period.
//
// exp is mandatory. nbf is optional; iat is used in its place when nbf is
// missing. Both bounds are widened by the configured tolerance.
type TimestampValidator struct {
	clock     clockwork.Clock
	tolerance time.Duration
}

// NewTimestampValidator creates a TimestampValidator. A nil clock means the
// real clock.
func NewTimestampValidator(clock clockwork.Clock, tolerance time.Duration) (*TimestampValidator, error) {
	if tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance cannot be negative", ErrInvalidArgument)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &TimestampValidator{clock: clock, tolerance: tolerance}, nil
}

// Validate implements Validator.
func (v *TimestampValidator) Validate(_ context.Context, t *token.Token) Result {
	now := v.clock.Now()

	expiration, ok := t.Expiration()
	if !ok {
		return Invalid("Jwt does not contain expiration (exp) claim. Cannot be validated!")
	}

	if now.After(expiration.Add(v.tolerance)) {
		return Invalid("Jwt expired at %s, time now: %s", formatInstant(expiration), formatInstant(now))
	}

	if notBefore, ok := t.NotBefore(); ok && now.Before(notBefore.Add(-v.tolerance)) {
		return Invalid("Jwt cannot be accepted before %s, time now: %s", formatInstant(notBefore), formatInstant(now))
	}

	return Valid()
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
