package grpc

import (
	"context"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap/cloud-security-client-go/validator"
)

func TestNew(t *testing.T) {
	accept := constant(validator.Valid())

	tests := []struct {
		name    string
		options []Option
		wantErr string
	}{
		{
			name:    "missing validator",
			wantErr: "validator is required",
		},
		{
			name:    "nil validator",
			options: []Option{WithValidator(nil)},
			wantErr: "validator cannot be nil",
		},
		{
			name:    "nil logger",
			options: []Option{WithValidator(accept), WithLogger(nil)},
			wantErr: "logger cannot be nil",
		},
		{
			name:    "nil token extractor",
			options: []Option{WithValidator(accept), WithTokenExtractor(nil)},
			wantErr: "token extractor cannot be nil",
		},
		{
			name:    "nil certificate extractor",
			options: []Option{WithValidator(accept), WithCertificateExtractor(nil)},
			wantErr: "certificate extractor cannot be nil",
		},
		{
			name:    "nil error handler",
			options: []Option{WithValidator(accept), WithErrorHandler(nil)},
			wantErr: "error handler cannot be nil",
		},
		{
			name: "all options",
			options: []Option{
				WithValidator(accept),
				WithCredentialsOptional(true),
				WithLogger(&mockLogger{}),
				WithTokenExtractor(MetadataTokenExtractor),
				WithCertificateExtractor(func(context.Context) (*x509.Certificate, error) { return nil, nil }),
				WithErrorHandler(DefaultErrorHandler),
				WithExcludedMethods("/a.B/C", "/a.B/D"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interceptor, err := New(tt.options...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, interceptor)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, interceptor.core)
			assert.Len(t, interceptor.excludedMethods, 2)
		})
	}
}
