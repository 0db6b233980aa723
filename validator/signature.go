package validator

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jws"

	"github.com/sap/cloud-security-client-go/config"
	"github.com/sap/cloud-security-client-go/jwks"
	"github.com/sap/cloud-security-client-go/token"
)

// KeyProvider resolves the public key a token was signed with. It is
// implemented by *jwks.KeyCache.
type KeyProvider interface {
	GetPublicKey(
		ctx context.Context,
		alg jwks.Algorithm,
		keyID string,
		jwksURI string,
		params map[string]string,
	) (*rsa.PublicKey, bool, error)
}

// EndpointsProvider resolves the OIDC endpoints of an issuer. It is
// implemented by *jwks.DiscoveryCache.
type EndpointsProvider interface {
	GetEndpoints(ctx context.Context, issuer string) (*jwks.Endpoints, error)
}

// KeySource describes where the signing keys of a token are published. It
// is either XSUAAKeySource or IASKeySource.
type KeySource interface {
	keySource()
}

// XSUAAKeySource locates keys through the jku header of the token. In legacy
// mode the single key served at {URL}/token_keys is used instead.
type XSUAAKeySource struct {
	URL        string
	UAADomain  string
	LegacyMode bool
}

func (XSUAAKeySource) keySource() {}

// IASKeySource locates keys through the OIDC discovery document of the token
// issuer. Unless DisableTenantIDCheck is set, tokens of an issuer other than
// URL must name their tenant in app_tid.
type IASKeySource struct {
	URL                  string
	ClientID             string
	Domains              []string
	DisableTenantIDCheck bool
}

func (IASKeySource) keySource() {}

// KeySourceFor returns the KeySource matching the service of cfg.
func KeySourceFor(cfg config.ServiceConfiguration, disableTenantIDCheck bool) (KeySource, error) {
	switch cfg.Service {
	case config.ServiceXSUAA:
		return XSUAAKeySource{URL: cfg.URL, UAADomain: cfg.UAADomain, LegacyMode: cfg.LegacyMode}, nil
	case config.ServiceIAS:
		return IASKeySource{
			URL:                  cfg.URL,
			ClientID:             cfg.ClientID,
			Domains:              cfg.TrustedDomains(),
			DisableTenantIDCheck: disableTenantIDCheck,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported service %q", ErrInvalidArgument, cfg.Service)
	}
}

// SignatureOption configures a SignatureValidator.
type SignatureOption func(*SignatureValidator) error

// WithFallbackKey sets a PEM encoded public key used when the signing key
// cannot be retrieved from the identity service.
func WithFallbackKey(pem string) SignatureOption {
	return func(v *SignatureValidator) error {
		if strings.TrimSpace(pem) == "" {
			return nil
		}
		v.fallback = jwks.NewPEMKey(jwks.RS256, "", pem)
		return nil
	}
}

// WithSignatureLogger sets an optional logger.
func WithSignatureLogger(logger Logger) SignatureOption {
	return func(v *SignatureValidator) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidArgument)
		}
		v.logger = logger
		return nil
	}
}

// SignatureValidator verifies the RS256 signature of a token against the key
// published by the identity service.
//
// Keys are only requested from endpoints the validator trusts itself: the
// jku of an XSUAA token must pass the JkuValidator rules and the issuer of
// an IAS token must belong to a trusted domain. This holds even when the
// validator runs in a chain next to the JkuValidator or IssuerValidator.
type SignatureValidator struct {
	source    KeySource
	keys      KeyProvider
	endpoints EndpointsProvider
	fallback  *jwks.JSONWebKey
	logger    Logger

	jku     *JkuValidator
	issuers *IssuerValidator
}

// NewSignatureValidator creates a SignatureValidator. endpoints is only
// required for an IASKeySource.
func NewSignatureValidator(
	source KeySource,
	keys KeyProvider,
	endpoints EndpointsProvider,
	opts ...SignatureOption,
) (*SignatureValidator, error) {
	if keys == nil {
		return nil, fmt.Errorf("%w: key provider cannot be nil", ErrInvalidArgument)
	}

	v := &SignatureValidator{
		source:    source,
		keys:      keys,
		endpoints: endpoints,
		logger:    nopLogger{},
	}

	switch src := source.(type) {
	case XSUAAKeySource:
		if src.LegacyMode {
			if src.URL == "" {
				return nil, fmt.Errorf("%w: legacy mode requires the url", ErrInvalidArgument)
			}
			break
		}
		jku, err := NewJkuValidator(src.UAADomain)
		if err != nil {
			return nil, err
		}
		v.jku = jku
	case IASKeySource:
		if endpoints == nil {
			return nil, fmt.Errorf("%w: endpoints provider cannot be nil", ErrInvalidArgument)
		}
		issuers, err := NewIssuerValidator(src.Domains)
		if err != nil {
			return nil, err
		}
		v.issuers = issuers
	default:
		return nil, fmt.Errorf("%w: unknown key source %T", ErrInvalidArgument, source)
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

type keyLookup struct {
	keyID   string
	jwksURI string
	zone    string
	params  map[string]string

	// untrusted marks a lookup rejected because of a foreign key endpoint
	// or tenant. Such tokens never reach the verification key.
	untrusted bool
}

// Validate implements Validator.
func (v *SignatureValidator) Validate(ctx context.Context, t *token.Token) Result {
	raw := t.Raw()
	if strings.Count(raw, ".") != 2 {
		return Invalid("Jwt token does not consist of 'header'.'payload'.'signature'.")
	}

	alg := jwks.RS256
	if t.HasHeaderParameter(token.HeaderAlgorithm) {
		alg = jwks.Algorithm(t.HeaderParameterAsString(token.HeaderAlgorithm))
		if !alg.IsSupported() {
			return Invalid("Jwt token with signature algorithm '%s' is not supported.", alg)
		}
	}

	var key *rsa.PublicKey

	lookup, result := v.resolveKeyLookup(ctx, t)
	if result.IsValid() {
		key, result = v.publicKey(ctx, alg, lookup)
	}

	if result.IsErroneous() {
		if v.fallback == nil || lookup.untrusted {
			return result
		}

		v.logger.Warn("signing key could not be retrieved, using configured verification key",
			"reason", result.ErrorDescription())

		fallbackKey, err := v.fallback.PublicKey()
		if err != nil {
			return Invalid("Error occurred during signature validation: (%s). "+
				"Fallback with configured 'verificationkey' was not successful.", err)
		}
		key = fallbackKey
	}

	return verifySignature(raw, key)
}

// resolveKeyLookup determines the key set endpoint and the tenant context
// of the key request.
func (v *SignatureValidator) resolveKeyLookup(ctx context.Context, t *token.Token) (keyLookup, Result) {
	switch src := v.source.(type) {
	case XSUAAKeySource:
		if src.LegacyMode {
			return keyLookup{
				keyID:   jwks.LegacyKeyID,
				jwksURI: strings.TrimSuffix(src.URL, "/") + "/" + tokenKeysPath,
			}, Valid()
		}

		keyID := t.HeaderParameterAsString(token.HeaderKeyID)
		if keyID == "" {
			return keyLookup{}, Invalid("Token does not contain the mandatory kid header.")
		}

		zone := t.AppTID()
		if zone == "" {
			zone = t.ZoneID()
		}

		jwksURI := t.HeaderParameterAsString(token.HeaderJKU)
		if jwksURI == "" {
			jwksURI = (&url.URL{Scheme: "https", Host: v.jku.uaaDomain, Path: "/" + tokenKeysPath}).String()
			if zone != "" {
				jwksURI += "?zid=" + url.QueryEscape(zone)
			}
		} else if result := v.jku.check(jwksURI); result.IsErroneous() {
			return keyLookup{untrusted: true}, Invalid("Error occurred during jwks uri determination: %s", result.ErrorDescription())
		}

		return keyLookup{
			keyID:   keyID,
			jwksURI: jwksURI,
			zone:    zone,
			params:  map[string]string{jwks.HeaderZoneID: zone},
		}, Valid()

	case IASKeySource:
		issuer := t.Issuer()
		appTID := t.AppTID()

		if !src.DisableTenantIDCheck && issuer != src.URL && appTID == "" {
			return keyLookup{untrusted: true}, Invalid("Error occurred during signature validation: OIDC token must provide app_tid.")
		}

		if strings.TrimSpace(issuer) == "" {
			return keyLookup{}, Invalid("Error occurred during jwks uri determination: " +
				"Token signature can not be validated as jwks uri can not be determined: " +
				"Token does not provide the required 'jku' header or issuer claim.")
		}

		if !v.issuers.IsTrusted(issuer) {
			return keyLookup{untrusted: true}, Invalid("Error occurred during jwks uri determination: "+
				"issuer '%s' does not match any of these domains '%v' of the identity provider.", issuer, v.issuers.domains)
		}

		endpoints, err := v.endpoints.GetEndpoints(ctx, issuer)
		if err != nil {
			return keyLookup{}, Invalid("Error occurred during jwks uri determination: %s", err)
		}

		return keyLookup{
			keyID:   jwks.NormalizeKeyID(t.HeaderParameterAsString(token.HeaderKeyID)),
			jwksURI: endpoints.JWKSURI,
			zone:    appTID,
			params: map[string]string{
				jwks.HeaderAppTID:   appTID,
				jwks.HeaderClientID: src.ClientID,
				jwks.HeaderAZP:      t.ClaimAsString(token.ClaimAuthorizedParty),
			},
		}, Valid()
	}

	return keyLookup{}, Invalid("Error occurred during jwks uri determination: unknown key source %T", v.source)
}

func (v *SignatureValidator) publicKey(ctx context.Context, alg jwks.Algorithm, lookup keyLookup) (*rsa.PublicKey, Result) {
	key, found, err := v.keys.GetPublicKey(ctx, alg, lookup.keyID, lookup.jwksURI, lookup.params)

	switch {
	case errors.Is(err, jwks.ErrKeyMaterial):
		return nil, Invalid("Error creating PublicKey from Json Web Key received from %s: %s.", lookup.jwksURI, err)
	case err != nil:
		return nil, Invalid("Error retrieving Json Web Keys from Identity Service: %s.", err)
	case !found:
		return nil, Invalid("There is no Json Web Token Key with keyId '%s' and type '%s' found on jwks uri %s "+
			"for zone '%s' to prove the identity of the Jwt.", lookup.keyID, alg.KeyType(), lookup.jwksURI, lookup.zone)
	}

	return key, Valid()
}

func verifySignature(raw string, key *rsa.PublicKey) Result {
	if _, err := jws.Verify([]byte(raw), jws.WithKey(jwa.RS256(), key)); err != nil {
		signature := raw[strings.LastIndexByte(raw, '.')+1:]
		return Invalid("Signature of Jwt Token is not valid: the identity provided by the JSON Web Token Key "+
			"can not be verified (Signature: %s).", signature)
	}

	return Valid()
}
