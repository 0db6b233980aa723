package cloudsecurity

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sap/cloud-security-client-go/validator"
)

// ForwardedClientCertHeader is the header a TLS terminating proxy uses to
// forward the client certificate.
const ForwardedClientCertHeader = "X-Forwarded-Client-Cert"

// TokenExtractor is a function that takes a request as input and returns
// either a token or an error. An error should only be returned if an attempt
// to specify a token was found, but the information was somehow incorrectly
// formed. In the case where a token is simply not present, this should not
// be treated as an error. An empty string should be returned in that case.
type TokenExtractor func(r *http.Request) (string, error)

// AuthHeaderTokenExtractor is a TokenExtractor that takes a request
// and extracts the token from the Authorization header.
func AuthHeaderTokenExtractor(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil // No error, just no JWT.
	}

	authHeaderParts := strings.Fields(authHeader)
	if len(authHeaderParts) != 2 || !strings.EqualFold(authHeaderParts[0], "bearer") {
		return "", errors.New("Authorization header format must be Bearer {token}")
	}

	return authHeaderParts[1], nil
}

// CookieTokenExtractor builds a TokenExtractor that takes a request and
// extracts the token from the cookie using the passed in cookieName.
func CookieTokenExtractor(cookieName string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil // No cookie, then no JWT, so no error.
		}
		if err != nil {
			return "", err
		}

		return cookie.Value, nil
	}
}

// ParameterTokenExtractor returns a TokenExtractor that extracts
// the token from the specified query string parameter.
func ParameterTokenExtractor(param string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		return r.URL.Query().Get(param), nil
	}
}

// MultiTokenExtractor returns a TokenExtractor that runs multiple TokenExtractors
// and takes the one that does not return an empty token. If a TokenExtractor
// returns an error that error is immediately returned.
func MultiTokenExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			token, err := ex(r)
			if err != nil {
				return "", err
			}

			if token != "" {
				return token, nil
			}
		}
		return "", nil
	}
}

// CertificateExtractor returns the client certificate of a request. Like a
// TokenExtractor it returns (nil, nil) if there is none and an error only
// if a certificate was presented but could not be decoded.
type CertificateExtractor func(r *http.Request) (*x509.Certificate, error)

// TLSCertificateExtractor returns the leaf certificate the client presented
// in the TLS handshake.
func TLSCertificateExtractor(r *http.Request) (*x509.Certificate, error) {
	if r.TLS == nil || len(r.TLS.PeerCertificates) == 0 {
		return nil, nil
	}

	return r.TLS.PeerCertificates[0], nil
}

// HeaderCertificateExtractor returns a CertificateExtractor decoding the
// certificate forwarded in header, as PEM (optionally URL encoded) or
// base64 DER.
//
// Only use it behind a proxy that terminates TLS and overwrites the header;
// otherwise any client can claim any certificate.
func HeaderCertificateExtractor(header string) CertificateExtractor {
	return func(r *http.Request) (*x509.Certificate, error) {
		value := r.Header.Get(header)
		if value == "" {
			return nil, nil
		}

		cert, err := validator.ParseCertificate(value)
		if err != nil {
			return nil, fmt.Errorf("invalid client certificate in header %s: %w", header, err)
		}

		return cert, nil
	}
}

// MultiCertificateExtractor returns the first certificate found by
// extractors. Errors are returned immediately.
func MultiCertificateExtractor(extractors ...CertificateExtractor) CertificateExtractor {
	return func(r *http.Request) (*x509.Certificate, error) {
		for _, ex := range extractors {
			cert, err := ex(r)
			if err != nil {
				return nil, err
			}

			if cert != nil {
				return cert, nil
			}
		}
		return nil, nil
	}
}
