package cloudsecurity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sap/cloud-security-client-go/core"
	"github.com/sap/cloud-security-client-go/token"
	"github.com/sap/cloud-security-client-go/validator"
)

// Middleware authenticates HTTP requests with XSUAA or IAS access tokens.
type Middleware struct {
	core                 *core.Core
	errorHandler         ErrorHandler
	tokenExtractor       TokenExtractor
	certificateExtractor CertificateExtractor
	validateOnOptions    bool
	exclusionURLHandler  ExclusionURLHandler
	logger               Logger
	tracer               Tracer
	metrics              Metrics

	// Temporary fields used during construction
	validator           validator.Validator
	credentialsOptional bool
}

// ExclusionURLHandler is a function that takes in a http.Request and returns
// true if the request should be excluded from JWT validation.
type ExclusionURLHandler func(r *http.Request) bool

// New constructs a new Middleware instance with the supplied options.
// All parameters are passed via options (pure options pattern).
//
// Example:
//
//	middleware, err := cloudsecurity.New(
//	    cloudsecurity.WithValidator(chain),
//	    cloudsecurity.WithCredentialsOptional(false),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
func New(opts ...Option) (*Middleware, error) {
	m := &Middleware{
		// Set secure defaults before applying options
		validateOnOptions:   true,  // Validate OPTIONS by default
		credentialsOptional: false, // Credentials required by default
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if m.validator == nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", ErrValidatorNil)
	}

	m.applyDefaults()

	if err := m.createCore(); err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}

	return m, nil
}

// createCore creates the core.Core instance with the configured options
func (m *Middleware) createCore() error {
	coreOpts := []core.Option{
		core.WithValidator(m.validator),
		core.WithCredentialsOptional(m.credentialsOptional),
	}

	if m.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(m.logger))
	}

	coreInstance, err := core.New(coreOpts...)
	if err != nil {
		return err
	}
	m.core = coreInstance
	return nil
}

// applyDefaults sets secure default values for optional fields
func (m *Middleware) applyDefaults() {
	if m.errorHandler == nil {
		m.errorHandler = DefaultErrorHandler
	}
	if m.tokenExtractor == nil {
		m.tokenExtractor = AuthHeaderTokenExtractor
	}
	if m.certificateExtractor == nil {
		m.certificateExtractor = TLSCertificateExtractor
	}
	if m.tracer == nil {
		m.tracer = &NoopTracer{}
	}
	if m.metrics == nil {
		m.metrics = &NoopMetrics{}
	}
}

// GetToken retrieves the validated token from the context.
//
// Example:
//
//	t, err := cloudsecurity.GetToken(r.Context())
//	if err != nil {
//	    http.Error(w, "failed to get token", http.StatusInternalServerError)
//	    return
//	}
//	fmt.Println(t.ClientID(), t.ZoneID())
func GetToken(ctx context.Context) (*token.Token, error) {
	return core.GetToken(ctx)
}

// MustGetToken retrieves the validated token from the context or panics.
// Use only when you are certain a token exists (e.g., after middleware has run).
func MustGetToken(ctx context.Context) *token.Token {
	t, err := GetToken(ctx)
	if err != nil {
		panic(err)
	}
	return t
}

// HasToken checks if a validated token exists in the context.
func HasToken(ctx context.Context) bool {
	return core.HasToken(ctx)
}

// CheckJWT is the main Middleware function which performs the main logic. It
// is passed a http.Handler which will be called if the JWT passes validation.
func (m *Middleware) CheckJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If there's an exclusion handler and the URL matches, skip JWT validation
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			if m.logger != nil {
				m.logger.Debug("skipping JWT validation for excluded URL",
					"method", r.Method,
					"path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}
		// If we don't validate on OPTIONS and this is OPTIONS
		// then continue onto next without validating.
		if !m.validateOnOptions && r.Method == http.MethodOptions {
			if m.logger != nil {
				m.logger.Debug("skipping JWT validation for OPTIONS request")
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := m.tracer.StartSpan(r.Context(), "cloudsecurity.CheckJWT")
		defer span.Finish()
		span.SetTag("http.method", r.Method)

		start := time.Now()
		status := "authenticated"
		defer func() {
			tags := map[string]string{"status": status}
			m.metrics.IncCounter(MetricRequestsTotal, tags)
			m.metrics.ObserveHistogram(MetricRequestDuration, time.Since(start).Seconds(), tags)
		}()

		raw, err := m.tokenExtractor(r)
		if err != nil {
			// This is not ErrJWTMissing because an error here means that the
			// tokenExtractor had an error and _not_ that the token was missing.
			if m.logger != nil {
				m.logger.Error("failed to extract token from request",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
			}
			status = "error"
			span.RecordError(err)
			m.errorHandler(w, r, fmt.Errorf("error extracting token: %w", err))
			return
		}

		cert, err := m.certificateExtractor(r)
		if err != nil {
			if m.logger != nil {
				m.logger.Error("failed to extract client certificate from request",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
			}
			status = "error"
			span.RecordError(err)
			m.errorHandler(w, r, fmt.Errorf("error extracting client certificate: %w", err))
			return
		}
		if cert != nil {
			ctx = validator.WithClientCertificate(ctx, cert)
		}

		// Core handles empty token logic based on credentialsOptional setting.
		validToken, err := m.core.CheckToken(ctx, raw)
		if err != nil {
			if m.logger != nil {
				m.logger.Warn("JWT validation failed",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
			}
			status = "rejected"
			span.RecordError(err)
			m.errorHandler(w, r, err)
			return
		}

		// If credentials are optional and no token was provided,
		// core.CheckToken returns (nil, nil), so we continue without a token
		if validToken == nil {
			if m.logger != nil {
				m.logger.Debug("no credentials provided, continuing without token (credentials optional)")
			}
			status = "anonymous"
			next.ServeHTTP(w, r)
			return
		}

		span.SetTag("client_id", validToken.ClientID())
		span.SetTag("client_certificate", cert != nil)

		r = r.Clone(core.SetToken(ctx, validToken))
		next.ServeHTTP(w, r)
	})
}
