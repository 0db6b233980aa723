package grpc

import (
	"context"
	"crypto/x509"
	"errors"
	"strings"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// TokenExtractor extracts JWT tokens from gRPC metadata.
type TokenExtractor func(ctx context.Context) (string, error)

// CertificateExtractor returns the client certificate of a call, or nil if
// there is none.
type CertificateExtractor func(ctx context.Context) (*x509.Certificate, error)

// Extractor errors
var (
	// ErrMultipleAuthHeaders indicates multiple authorization metadata entries were provided.
	ErrMultipleAuthHeaders = errors.New("multiple authorization metadata entries are not allowed")

	// ErrInvalidAuthFormat indicates the authorization metadata format is invalid.
	ErrInvalidAuthFormat = errors.New("invalid authorization metadata format, expected: Bearer <token>")

	// ErrUnsupportedScheme indicates an unsupported authorization scheme was used.
	ErrUnsupportedScheme = errors.New("unsupported authorization scheme, expected: Bearer")
)

// MetadataTokenExtractor extracts JWT from the "authorization" metadata key.
// It supports the "Bearer <token>" format (standard for gRPC).
//
// gRPC normalizes incoming metadata keys to lowercase, so this extractor only
// checks the lowercase "authorization" key.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil // No metadata, no token (not an error)
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", nil // No auth header (not an error)
	}

	if len(authHeaders) > 1 {
		return "", ErrMultipleAuthHeaders
	}

	parts := strings.Fields(authHeaders[0])
	if len(parts) != 2 {
		return "", ErrInvalidAuthFormat
	}

	if !strings.EqualFold(parts[0], "bearer") {
		return "", ErrUnsupportedScheme
	}

	return parts[1], nil
}

// PeerCertificateExtractor returns the leaf certificate the client presented
// when the server uses TLS transport credentials.
func PeerCertificateExtractor(ctx context.Context) (*x509.Certificate, error) {
	p, ok := peer.FromContext(ctx)
	if !ok {
		return nil, nil
	}

	info, ok := p.AuthInfo.(credentials.TLSInfo)
	if !ok || len(info.State.PeerCertificates) == 0 {
		return nil, nil
	}

	return info.State.PeerCertificates[0], nil
}
