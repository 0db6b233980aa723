// Package echosecurity validates XSUAA and IAS access tokens in Echo
// applications.
package echosecurity

import (
	"fmt"

	"github.com/labstack/echo/v4"

	cloudsecurity "github.com/sap/cloud-security-client-go"
	"github.com/sap/cloud-security-client-go/core"
	"github.com/sap/cloud-security-client-go/token"
	"github.com/sap/cloud-security-client-go/validator"
)

// DefaultTokenKey is the echo.Context key the validated token is stored under.
var DefaultTokenKey = "cloudsecurity.token"

// ErrorHandler writes the response for a rejected request.
type ErrorHandler func(c echo.Context, err error) error

// echoMiddlewareConfig holds all configuration for the middleware
type echoMiddlewareConfig struct {
	errorHandler         ErrorHandler
	tokenExtractor       cloudsecurity.TokenExtractor
	certificateExtractor cloudsecurity.CertificateExtractor
	contextKey           string
	coreOpts             []core.Option
}

// New creates an Echo middleware validating requests with v.
func New(v validator.Validator, opts ...Option) (echo.MiddlewareFunc, error) {
	config := &echoMiddlewareConfig{
		errorHandler:         DefaultErrorHandler,
		tokenExtractor:       cloudsecurity.AuthHeaderTokenExtractor,
		certificateExtractor: cloudsecurity.TLSCertificateExtractor,
		contextKey:           DefaultTokenKey,
		coreOpts:             []core.Option{core.WithValidator(v)},
	}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	checker, err := core.New(config.coreOpts...)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()

			raw, err := config.tokenExtractor(r)
			if err != nil {
				return config.errorHandler(c, fmt.Errorf("error extracting token: %w", err))
			}

			cert, err := config.certificateExtractor(r)
			if err != nil {
				return config.errorHandler(c, fmt.Errorf("error extracting client certificate: %w", err))
			}

			ctx := r.Context()
			validationCtx := ctx
			if cert != nil {
				validationCtx = validator.WithClientCertificate(ctx, cert)
			}

			t, err := checker.CheckToken(validationCtx, raw)
			if err != nil {
				return config.errorHandler(c, err)
			}

			if t != nil {
				c.Set(config.contextKey, t)
				c.SetRequest(r.WithContext(core.SetToken(ctx, t)))
			}

			return next(c)
		}
	}, nil
}

// DefaultErrorHandler answers like cloudsecurity.DefaultErrorHandler.
func DefaultErrorHandler(c echo.Context, err error) error {
	cloudsecurity.DefaultErrorHandler(c.Response(), c.Request(), err)
	return nil
}

// GetToken extracts the validated token from the Echo context
func GetToken(c echo.Context, contextKey string) (*token.Token, bool) {
	if contextKey == "" {
		contextKey = DefaultTokenKey
	}

	t, ok := c.Get(contextKey).(*token.Token)
	return t, ok
}
