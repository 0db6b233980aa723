package validator

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrCertificate is returned when a client certificate cannot be decoded.
var ErrCertificate = errors.New("invalid client certificate")

type clientCertificateKey struct{}

// WithClientCertificate returns a copy of ctx carrying the certificate the
// client presented on the current request. Certificate bound tokens are
// checked against it.
func WithClientCertificate(ctx context.Context, cert *x509.Certificate) context.Context {
	return context.WithValue(ctx, clientCertificateKey{}, cert)
}

// ClientCertificateFromContext returns the client certificate stored with
// WithClientCertificate.
func ClientCertificateFromContext(ctx context.Context) (*x509.Certificate, bool) {
	cert, ok := ctx.Value(clientCertificateKey{}).(*x509.Certificate)
	return cert, ok && cert != nil
}

// Thumbprint returns the x5t#S256 thumbprint of cert: the unpadded base64url
// encoded SHA-256 digest of its DER encoding.
func Thumbprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ParseCertificate decodes a client certificate as forwarded by a proxy,
// e.g. in the x-forwarded-client-cert header. PEM with real or escaped line
// breaks, URL encoded PEM and bare base64 DER are accepted.
func ParseCertificate(encoded string) (*x509.Certificate, error) {
	value := strings.TrimSpace(encoded)
	if value == "" {
		return nil, fmt.Errorf("%w: certificate is empty", ErrCertificate)
	}

	if strings.Contains(value, "%") {
		unescape := url.PathUnescape
		if strings.Contains(value, "-----BEGIN+") {
			// query escaped: '+' is a space and a '+' of base64 arrives as %2B
			unescape = url.QueryUnescape
		}
		if unescaped, err := unescape(value); err == nil {
			value = unescaped
		}
	}

	value = strings.ReplaceAll(value, `\n`, "\n")

	var der []byte
	if strings.Contains(value, "-----BEGIN") {
		block, _ := pem.Decode([]byte(value))
		if block == nil {
			return nil, fmt.Errorf("%w: no PEM block found", ErrCertificate)
		}
		der = block.Bytes
	} else {
		decoded, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(value), ""))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCertificate, err)
		}
		der = decoded
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCertificate, err)
	}

	return cert, nil
}
