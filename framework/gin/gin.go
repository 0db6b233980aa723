// Package ginsecurity validates XSUAA and IAS access tokens in Gin
// applications.
//
//	chain, err := validator.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	auth, err := ginsecurity.New(chain)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := gin.New()
//	r.Use(auth)
//	r.GET("/api", func(c *gin.Context) {
//	    t, _ := ginsecurity.GetToken(c, "")
//	    c.String(http.StatusOK, t.ClientID())
//	})
package ginsecurity

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	cloudsecurity "github.com/sap/cloud-security-client-go"
	"github.com/sap/cloud-security-client-go/core"
	"github.com/sap/cloud-security-client-go/token"
	"github.com/sap/cloud-security-client-go/validator"
)

// DefaultTokenKey is the gin.Context key the validated token is stored under.
const DefaultTokenKey = "cloudsecurity.token"

var (
	ErrMissingToken = errors.New("no token found in gin context")
	ErrInvalidToken = errors.New("invalid token type in gin context")
)

// ErrorHandler writes the response for a rejected request. It must abort
// the context.
type ErrorHandler func(c *gin.Context, err error)

type config struct {
	errorHandler         ErrorHandler
	tokenExtractor       cloudsecurity.TokenExtractor
	certificateExtractor cloudsecurity.CertificateExtractor
	contextKey           string
	coreOpts             []core.Option
}

// New creates a Gin middleware validating requests with v. On success the
// token is stored both in the gin.Context under the context key and in the
// request context, where cloudsecurity.GetToken finds it.
func New(v validator.Validator, opts ...Option) (gin.HandlerFunc, error) {
	cfg := &config{
		errorHandler:         DefaultErrorHandler,
		tokenExtractor:       cloudsecurity.AuthHeaderTokenExtractor,
		certificateExtractor: cloudsecurity.TLSCertificateExtractor,
		contextKey:           DefaultTokenKey,
		coreOpts:             []core.Option{core.WithValidator(v)},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	c, err := core.New(cfg.coreOpts...)
	if err != nil {
		return nil, err
	}

	return func(ctx *gin.Context) {
		raw, err := cfg.tokenExtractor(ctx.Request)
		if err != nil {
			cfg.errorHandler(ctx, fmt.Errorf("error extracting token: %w", err))
			return
		}

		cert, err := cfg.certificateExtractor(ctx.Request)
		if err != nil {
			cfg.errorHandler(ctx, fmt.Errorf("error extracting client certificate: %w", err))
			return
		}

		reqCtx := ctx.Request.Context()
		validationCtx := reqCtx
		if cert != nil {
			validationCtx = validator.WithClientCertificate(reqCtx, cert)
		}

		t, err := c.CheckToken(validationCtx, raw)
		if err != nil {
			cfg.errorHandler(ctx, err)
			return
		}

		if t != nil {
			ctx.Set(cfg.contextKey, t)
			ctx.Request = ctx.Request.WithContext(core.SetToken(reqCtx, t))
		}

		ctx.Next()
	}, nil
}

// DefaultErrorHandler answers like cloudsecurity.DefaultErrorHandler and
// aborts the chain.
func DefaultErrorHandler(c *gin.Context, err error) {
	cloudsecurity.DefaultErrorHandler(c.Writer, c.Request, err)
	c.Abort()
}

// GetToken returns the token stored by the middleware. An empty key means
// DefaultTokenKey.
func GetToken(c *gin.Context, key string) (*token.Token, error) {
	if key == "" {
		key = DefaultTokenKey
	}

	value, exists := c.Get(key)
	if !exists {
		return nil, ErrMissingToken
	}

	t, ok := value.(*token.Token)
	if !ok {
		return nil, ErrInvalidToken
	}

	return t, nil
}
