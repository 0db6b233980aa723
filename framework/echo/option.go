package echosecurity

import (
	"errors"

	cloudsecurity "github.com/sap/cloud-security-client-go"
	"github.com/sap/cloud-security-client-go/core"
)

// Option is a function that configures the middleware
type Option func(*echoMiddlewareConfig) error

// WithErrorHandler sets a custom error handler
func WithErrorHandler(handler ErrorHandler) Option {
	return func(config *echoMiddlewareConfig) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		config.errorHandler = handler
		return nil
	}
}

// WithContextKey sets a custom context key to store the token
func WithContextKey(key string) Option {
	return func(config *echoMiddlewareConfig) error {
		if key == "" {
			return errors.New("context key cannot be empty")
		}
		config.contextKey = key
		return nil
	}
}

// WithTokenExtractor sets a custom token extractor
func WithTokenExtractor(extractor cloudsecurity.TokenExtractor) Option {
	return func(config *echoMiddlewareConfig) error {
		if extractor == nil {
			return errors.New("token extractor cannot be nil")
		}
		config.tokenExtractor = extractor
		return nil
	}
}

// WithCertificateExtractor sets a custom client certificate extractor
func WithCertificateExtractor(extractor cloudsecurity.CertificateExtractor) Option {
	return func(config *echoMiddlewareConfig) error {
		if extractor == nil {
			return errors.New("certificate extractor cannot be nil")
		}
		config.certificateExtractor = extractor
		return nil
	}
}

// WithCredentialsOptional lets requests without a token through
func WithCredentialsOptional(optional bool) Option {
	return func(config *echoMiddlewareConfig) error {
		config.coreOpts = append(config.coreOpts, core.WithCredentialsOptional(optional))
		return nil
	}
}
