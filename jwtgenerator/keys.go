package jwtgenerator

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// KeyPair is an RSA key pair registered under a kid.
type KeyPair struct {
	KeyID   string
	Private *rsa.PrivateKey
}

// GenerateKeyPair creates a 2048 bit RSA key pair.
func GenerateKeyPair(keyID string) (*KeyPair, error) {
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	return &KeyPair{KeyID: keyID, Private: private}, nil
}

// PublicKey returns the public half of the pair.
func (k *KeyPair) PublicKey() *rsa.PublicKey {
	return &k.Private.PublicKey
}

// PublicJWK returns the public key as JWK with kid, alg and use set.
func (k *KeyPair) PublicJWK() (jwk.Key, error) {
	key, err := jwk.Import(k.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK: %w", err)
	}

	if err := key.Set(jwk.KeyIDKey, k.KeyID); err != nil {
		return nil, fmt.Errorf("failed to set key ID: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256()); err != nil {
		return nil, fmt.Errorf("failed to set algorithm: %w", err)
	}
	if err := key.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("failed to set key usage: %w", err)
	}

	return key, nil
}

// PublicKeyPEM returns the public key as PEM encoded SubjectPublicKeyInfo.
func (k *KeyPair) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(k.PublicKey())
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// JWKS serialises the public keys of pairs as JSON Web Key Set.
func JWKS(pairs ...*KeyPair) ([]byte, error) {
	set := jwk.NewSet()
	for _, pair := range pairs {
		key, err := pair.PublicJWK()
		if err != nil {
			return nil, err
		}
		if err := set.AddKey(key); err != nil {
			return nil, fmt.Errorf("failed to add key to set: %w", err)
		}
	}

	return json.Marshal(set)
}
