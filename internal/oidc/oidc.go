package oidc

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/goccy/go-json"
)

// WellKnownPath is appended to the issuer to locate the discovery document.
const WellKnownPath = ".well-known/openid-configuration"

// ErrInvalidDocument is returned when a discovery document cannot be used.
var ErrInvalidDocument = errors.New("invalid discovery document")

// WellKnownEndpoints holds the well known OIDC endpoints
type WellKnownEndpoints struct {
	Issuer                string `json:"issuer"`
	JWKSURI               string `json:"jwks_uri"`
	TokenEndpoint         string `json:"token_endpoint"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
}

// DiscoveryURI builds the discovery document URI for an issuer. Issuers
// without scheme, as found in some IAS tokens, are treated as https.
func DiscoveryURI(issuer string) (string, error) {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return "", errors.New("issuer must not be empty")
	}

	if !strings.HasPrefix(issuer, "http://") && !strings.HasPrefix(issuer, "https://") {
		issuer = "https://" + issuer
	}

	issuerURL, err := url.Parse(issuer)
	if err != nil {
		return "", fmt.Errorf("could not parse issuer %q: %w", issuer, err)
	}
	if issuerURL.Host == "" {
		return "", fmt.Errorf("issuer %q has no host", issuer)
	}

	issuerURL.Path = path.Join("/", issuerURL.Path, WellKnownPath)
	issuerURL.RawQuery = ""
	issuerURL.Fragment = ""

	return issuerURL.String(), nil
}

// ParseWellKnownEndpoints decodes a discovery document. A jwks_uri is required.
func ParseWellKnownEndpoints(body []byte) (*WellKnownEndpoints, error) {
	var endpoints WellKnownEndpoints
	if err := json.Unmarshal(body, &endpoints); err != nil {
		return nil, fmt.Errorf("%w: could not decode json body: %w", ErrInvalidDocument, err)
	}

	if endpoints.JWKSURI == "" {
		return nil, fmt.Errorf("%w: jwks_uri is missing", ErrInvalidDocument)
	}

	return &endpoints, nil
}
