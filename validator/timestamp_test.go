package validator

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap/cloud-security-client-go/token"
)

func TestTimestampValidator(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	expires := issued.Add(time.Hour)

	claims := func(extra map[string]any) map[string]any {
		c := map[string]any{
			token.ClaimIssuedAt:   issued.Unix(),
			token.ClaimExpiration: expires.Unix(),
		}
		for k, v := range extra {
			c[k] = v
		}
		return c
	}

	testCases := []struct {
		name        string
		now         time.Time
		claims      map[string]any
		noTolerance bool
		want        string
	}{
		{
			name:   "it accepts a token within its validity period",
			now:    issued.Add(30 * time.Minute),
			claims: claims(nil),
		},
		{
			name:   "it accepts an expired token within the tolerance",
			now:    expires.Add(DefaultTolerance),
			claims: claims(nil),
		},
		{
			name:   "it rejects a token expired beyond the tolerance",
			now:    expires.Add(DefaultTolerance + time.Second),
			claims: claims(nil),
			want:   "Jwt expired at 2024-05-01T13:00:00Z, time now: 2024-05-01T13:01:01Z",
		},
		{
			name:        "it rejects an expired token without tolerance",
			now:         expires.Add(time.Second),
			claims:      claims(nil),
			noTolerance: true,
			want:        "Jwt expired at 2024-05-01T13:00:00Z, time now: 2024-05-01T13:00:01Z",
		},
		{
			name:   "it rejects a token without exp",
			now:    issued,
			claims: map[string]any{token.ClaimIssuedAt: issued.Unix()},
			want:   "Jwt does not contain expiration (exp) claim. Cannot be validated!",
		},
		{
			name:   "it accepts a token used shortly before nbf",
			now:    issued.Add(10 * time.Minute).Add(-DefaultTolerance),
			claims: claims(map[string]any{token.ClaimNotBefore: issued.Add(10 * time.Minute).Unix()}),
		},
		{
			name:   "it rejects a token used before nbf",
			now:    issued.Add(5 * time.Minute),
			claims: claims(map[string]any{token.ClaimNotBefore: issued.Add(10 * time.Minute).Unix()}),
			want:   "Jwt cannot be accepted before 2024-05-01T12:10:00Z, time now: 2024-05-01T12:05:00Z",
		},
		{
			name:   "it falls back to iat without nbf",
			now:    issued.Add(-2 * time.Minute),
			claims: claims(nil),
			want:   "Jwt cannot be accepted before 2024-05-01T12:00:00Z, time now: 2024-05-01T11:58:00Z",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tolerance := DefaultTolerance
			if tc.noTolerance {
				tolerance = 0
			}

			v, err := NewTimestampValidator(clockwork.NewFakeClockAt(tc.now), tolerance)
			require.NoError(t, err)

			result := v.Validate(context.Background(), unsignedToken(t, map[string]any{"alg": "RS256"}, tc.claims))
			if tc.want == "" {
				assert.True(t, result.IsValid(), result.ErrorDescription())
				return
			}

			assert.Equal(t, tc.want, result.ErrorDescription())
		})
	}

	t.Run("it rejects a negative tolerance", func(t *testing.T) {
		_, err := NewTimestampValidator(nil, -time.Second)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}
