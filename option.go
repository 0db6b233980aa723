package cloudsecurity

import (
	"errors"
	"net/http"

	"github.com/sap/cloud-security-client-go/validator"
)

// Option configures the Middleware.
// Returns error for validation failures.
type Option func(*Middleware) error

// WithValidator sets the validator to check tokens with (REQUIRED). Usually
// this is the chain built by validator.New for the service configuration.
//
// Example:
//
//	cfg, err := config.FromEnvironment(config.ServiceXSUAA)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	chain, err := validator.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := cloudsecurity.New(
//	    cloudsecurity.WithValidator(chain),
//	)
func WithValidator(v validator.Validator) Option {
	return func(m *Middleware) error {
		if v == nil {
			return ErrValidatorNil
		}
		m.validator = v
		return nil
	}
}

// WithCredentialsOptional sets whether credentials are optional.
// If set to true, a request without token passes without a token in its
// context.
//
// Default: false (credentials required)
func WithCredentialsOptional(value bool) Option {
	return func(m *Middleware) error {
		m.credentialsOptional = value
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests should have their JWT validated.
//
// Default: true (OPTIONS requests are validated)
func WithValidateOnOptions(value bool) Option {
	return func(m *Middleware) error {
		m.validateOnOptions = value
		return nil
	}
}

// WithErrorHandler sets the handler called when errors occur during JWT validation.
// See the ErrorHandler type for more information.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithTokenExtractor sets the function to extract the JWT from the request.
//
// Default: AuthHeaderTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *Middleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithCertificateExtractor sets the function to extract the client
// certificate, which certificate bound tokens are checked against. Use
// HeaderCertificateExtractor behind a TLS terminating proxy.
//
// Default: TLSCertificateExtractor
func WithCertificateExtractor(e CertificateExtractor) Option {
	return func(m *Middleware) error {
		if e == nil {
			return ErrCertificateExtractorNil
		}
		m.certificateExtractor = e
		return nil
	}
}

// WithExclusionUrls configures URL patterns to exclude from JWT validation.
// URLs can be full URLs or just paths.
func WithExclusionUrls(exclusions []string) Option {
	return func(m *Middleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionUrlsEmpty
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithExclusionUrlHandler sets a custom function deciding which requests
// skip JWT validation.
func WithExclusionUrlHandler(h ExclusionURLHandler) Option {
	return func(m *Middleware) error {
		if h == nil {
			return ErrExclusionHandlerNil
		}
		m.exclusionURLHandler = h
		return nil
	}
}

// WithLogger sets an optional logger for the middleware.
// The logger will be used throughout the validation flow in both middleware and core.
//
// The logger interface is compatible with log/slog.Logger and similar loggers.
//
// Example:
//
//	middleware, err := cloudsecurity.New(
//	    cloudsecurity.WithValidator(chain),
//	    cloudsecurity.WithLogger(slog.Default()),
//	)
func WithLogger(logger Logger) Option {
	return func(m *Middleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// WithTracer wraps every validation in a span.
//
// Default: NoopTracer
func WithTracer(tracer Tracer) Option {
	return func(m *Middleware) error {
		if tracer == nil {
			return ErrTracerNil
		}
		m.tracer = tracer
		return nil
	}
}

// WithMetrics records the number and duration of checked requests.
//
// Default: NoopMetrics
func WithMetrics(metrics Metrics) Option {
	return func(m *Middleware) error {
		if metrics == nil {
			return ErrMetricsNil
		}
		m.metrics = metrics
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrValidatorNil            = errors.New("validator cannot be nil (use WithValidator)")
	ErrErrorHandlerNil         = errors.New("errorHandler cannot be nil")
	ErrTokenExtractorNil       = errors.New("tokenExtractor cannot be nil")
	ErrCertificateExtractorNil = errors.New("certificateExtractor cannot be nil")
	ErrExclusionUrlsEmpty      = errors.New("exclusion URLs list cannot be empty")
	ErrExclusionHandlerNil     = errors.New("exclusion URL handler cannot be nil")
	ErrLoggerNil               = errors.New("logger cannot be nil")
	ErrTracerNil               = errors.New("tracer cannot be nil")
	ErrMetricsNil              = errors.New("metrics cannot be nil")
)
