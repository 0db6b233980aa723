package jwks

import (
	"crypto/rsa"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// Algorithm is a JWS signature algorithm.
type Algorithm string

// RS256 is the only signature algorithm supported for token verification.
const RS256 Algorithm = "RS256"

const (
	// DefaultKeyID is used for keys and tokens that do not carry a kid.
	DefaultKeyID = "default-kid"

	// LegacyKeyID is the kid XSUAA uses for the key served in legacy mode.
	LegacyKeyID = "legacy-token-key"
)

// IsSupported reports whether tokens signed with alg can be verified.
func (alg Algorithm) IsSupported() bool {
	return alg == RS256
}

// KeyType returns the JWK kty of keys used with alg.
func (alg Algorithm) KeyType() string {
	if alg == RS256 {
		return "RSA"
	}

	return ""
}

// AlgorithmFromKeyType maps a JWK kty to its default signature algorithm.
func AlgorithmFromKeyType(kty string) (Algorithm, bool) {
	if strings.EqualFold(kty, "RSA") {
		return RS256, true
	}

	return "", false
}

// NormalizeKeyID substitutes the default kid for a blank one.
func NormalizeKeyID(keyID string) string {
	if strings.TrimSpace(keyID) == "" {
		return DefaultKeyID
	}

	return keyID
}

// JSONWebKey is a public key descriptor. The public key itself is derived
// lazily on first use and then kept for the lifetime of the descriptor.
type JSONWebKey struct {
	algorithm Algorithm
	keyID     string
	modulus   string
	exponent  string
	pem       string

	once      sync.Once
	publicKey *rsa.PublicKey
	err       error
}

// NewRSAKey creates a key from its base64url encoded modulus and exponent.
func NewRSAKey(alg Algorithm, keyID, modulus, exponent string) *JSONWebKey {
	return &JSONWebKey{
		algorithm: alg,
		keyID:     NormalizeKeyID(keyID),
		modulus:   modulus,
		exponent:  exponent,
	}
}

// NewPEMKey creates a key from a PEM encoded public key. Header, footer and
// whitespace are optional.
func NewPEMKey(alg Algorithm, keyID, pem string) *JSONWebKey {
	return &JSONWebKey{
		algorithm: alg,
		keyID:     NormalizeKeyID(keyID),
		pem:       pem,
	}
}

// Algorithm returns the signature algorithm the key is used with.
func (k *JSONWebKey) Algorithm() Algorithm {
	return k.algorithm
}

// KeyID returns the kid, DefaultKeyID if the key came without one.
func (k *JSONWebKey) KeyID() string {
	return k.keyID
}

// Equal reports whether both keys have the same algorithm and kid.
func (k *JSONWebKey) Equal(other *JSONWebKey) bool {
	if k == nil || other == nil {
		return k == other
	}

	return k.algorithm == other.algorithm && k.keyID == other.keyID
}

// PublicKey returns the RSA public key. The error wraps ErrKeyMaterial.
func (k *JSONWebKey) PublicKey() (*rsa.PublicKey, error) {
	k.once.Do(func() {
		k.publicKey, k.err = k.derivePublicKey()
	})

	return k.publicKey, k.err
}

func (k *JSONWebKey) derivePublicKey() (*rsa.PublicKey, error) {
	if !k.algorithm.IsSupported() {
		return nil, fmt.Errorf("%w: algorithm %q is not supported", ErrKeyMaterial, k.algorithm)
	}

	var (
		key jwk.Key
		err error
	)

	switch {
	case k.modulus != "" && k.exponent != "":
		var raw []byte
		raw, err = json.Marshal(map[string]string{"kty": "RSA", "n": k.modulus, "e": k.exponent})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrKeyMaterial, err)
		}
		key, err = jwk.ParseKey(raw)
	case k.pem != "":
		key, err = jwk.ParseKey([]byte(normalizePEM(k.pem)), jwk.WithPEM(true))
	default:
		return nil, fmt.Errorf("%w: neither modulus/exponent nor pem value present", ErrKeyMaterial)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterial, err)
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterial, err)
	}

	switch pub := raw.(type) {
	case *rsa.PublicKey:
		return pub, nil
	case rsa.PublicKey:
		return &pub, nil
	default:
		return nil, fmt.Errorf("%w: expected an RSA public key, got %T", ErrKeyMaterial, raw)
	}
}

var (
	pemBoundary = regexp.MustCompile(`-----(BEGIN|END) ([A-Z ]+)-----`)
	whitespace  = regexp.MustCompile(`\s+|\\n`)
)

// normalizePEM rebuilds a well formed PEM block from the formats XSUAA hands
// out: with or without header and footer, with literal "\n" sequences or all
// on one line.
func normalizePEM(value string) string {
	blockType := "PUBLIC KEY"
	if m := pemBoundary.FindStringSubmatch(value); m != nil {
		blockType = m[2]
	}

	body := pemBoundary.ReplaceAllString(value, "")
	body = whitespace.ReplaceAllString(body, "")

	var sb strings.Builder
	sb.WriteString("-----BEGIN " + blockType + "-----\n")
	for len(body) > 64 {
		sb.WriteString(body[:64])
		sb.WriteByte('\n')
		body = body[64:]
	}
	sb.WriteString(body)
	sb.WriteString("\n-----END " + blockType + "-----\n")

	return sb.String()
}
