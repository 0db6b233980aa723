package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/sap/cloud-security-client-go/core"
	"github.com/sap/cloud-security-client-go/validator"
)

// JWTInterceptor provides JWT validation for gRPC servers.
type JWTInterceptor struct {
	core                 *core.Core
	tokenExtractor       TokenExtractor
	certificateExtractor CertificateExtractor
	errorHandler         ErrorHandler
	excludedMethods      map[string]bool
	logger               Logger

	// Builder accumulating core options until New completes
	coreBuilder *coreBuilder
}

// New creates a new gRPC JWT interceptor with the provided options.
// WithValidator option is required.
func New(opts ...Option) (*JWTInterceptor, error) {
	interceptor := &JWTInterceptor{
		tokenExtractor:       MetadataTokenExtractor,
		certificateExtractor: PeerCertificateExtractor,
		errorHandler:         DefaultErrorHandler,
		excludedMethods:      make(map[string]bool),
		coreBuilder:          &coreBuilder{},
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	c, err := interceptor.coreBuilder.build()
	if err != nil {
		return nil, err
	}
	interceptor.core = c

	return interceptor, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that validates JWTs.
// It extracts the JWT from gRPC metadata, validates it, and makes the token
// available in the request context.
func (i *JWTInterceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		// Check if method is excluded
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping JWT validation for excluded method",
					"method", info.FullMethod)
			}
			return handler(ctx, req)
		}

		// Validate and enrich context
		validatedCtx, err := i.validateRequest(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		// Call handler with validated context
		return handler(validatedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that validates JWTs.
// It extracts the JWT from gRPC metadata, validates it, and makes the token
// available in the stream context.
func (i *JWTInterceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		// Check if method is excluded
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping JWT validation for excluded method",
					"method", info.FullMethod)
			}
			return handler(srv, ss)
		}

		// Validate and enrich context
		validatedCtx, err := i.validateRequest(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		// Wrap stream with validated context
		wrappedStream := &wrappedServerStream{
			ServerStream: ss,
			ctx:          validatedCtx,
		}

		return handler(srv, wrappedStream)
	}
}

// validateRequest extracts and validates the JWT from the context.
func (i *JWTInterceptor) validateRequest(ctx context.Context, method string) (context.Context, error) {
	if i.logger != nil {
		i.logger.Debug("extracting JWT from gRPC metadata",
			"method", method)
	}

	raw, err := i.tokenExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Error("failed to extract token from gRPC metadata",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	cert, err := i.certificateExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Error("failed to extract client certificate",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	validationCtx := ctx
	if cert != nil {
		validationCtx = validator.WithClientCertificate(ctx, cert)
	}

	if i.logger != nil {
		i.logger.Debug("validating JWT",
			"method", method)
	}

	t, err := i.core.CheckToken(validationCtx, raw)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("JWT validation failed",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	if t != nil {
		if i.logger != nil {
			i.logger.Debug("JWT validation successful, setting token in context",
				"method", method,
				"client_id", t.ClientID())
		}
		ctx = core.SetToken(ctx, t)
	} else if i.logger != nil {
		i.logger.Debug("no credentials provided, continuing without token (credentials optional)",
			"method", method)
	}

	return ctx, nil
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context with the validated token.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
