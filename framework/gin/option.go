package ginsecurity

import (
	"errors"

	cloudsecurity "github.com/sap/cloud-security-client-go"
	"github.com/sap/cloud-security-client-go/core"
)

// Option configures the middleware.
type Option func(*config) error

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		c.errorHandler = handler
		return nil
	}
}

// WithTokenExtractor sets a custom token extractor.
// Default: cloudsecurity.AuthHeaderTokenExtractor
func WithTokenExtractor(extractor cloudsecurity.TokenExtractor) Option {
	return func(c *config) error {
		if extractor == nil {
			return errors.New("token extractor cannot be nil")
		}
		c.tokenExtractor = extractor
		return nil
	}
}

// WithCertificateExtractor sets how the client certificate is obtained,
// e.g. cloudsecurity.HeaderCertificateExtractor behind a TLS terminating
// proxy.
// Default: cloudsecurity.TLSCertificateExtractor
func WithCertificateExtractor(extractor cloudsecurity.CertificateExtractor) Option {
	return func(c *config) error {
		if extractor == nil {
			return errors.New("certificate extractor cannot be nil")
		}
		c.certificateExtractor = extractor
		return nil
	}
}

// WithContextKey sets the gin.Context key of the validated token.
func WithContextKey(key string) Option {
	return func(c *config) error {
		if key == "" {
			return errors.New("context key cannot be empty")
		}
		c.contextKey = key
		return nil
	}
}

// WithCredentialsOptional lets requests without a token through.
func WithCredentialsOptional(optional bool) Option {
	return func(c *config) error {
		c.coreOpts = append(c.coreOpts, core.WithCredentialsOptional(optional))
		return nil
	}
}

// WithLogger sets the logger of the validation core.
func WithLogger(logger cloudsecurity.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.coreOpts = append(c.coreOpts, core.WithLogger(logger))
		return nil
	}
}
