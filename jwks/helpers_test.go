package jwks

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/require"
)

func generateRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return privateKey
}

// publicJWK returns the JSON representation of the public part of privateKey.
func publicJWK(t *testing.T, privateKey *rsa.PrivateKey, kid string) map[string]any {
	t.Helper()

	key, err := jwk.Import(&privateKey.PublicKey)
	require.NoError(t, err)
	if kid != "" {
		require.NoError(t, key.Set(jwk.KeyIDKey, kid))
	}
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256()))

	data, err := json.Marshal(key)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))

	return out
}

func publicPEM(t *testing.T, privateKey *rsa.PrivateKey) string {
	t.Helper()

	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func jwksDocument(t *testing.T, keys ...map[string]any) []byte {
	t.Helper()

	data, err := json.Marshal(map[string]any{"keys": keys})
	require.NoError(t, err)

	return data
}

type fetchCall struct {
	uri    string
	params map[string]string
}

// countingFetcher serves fixed documents and records every call.
type countingFetcher struct {
	mu        sync.Mutex
	jwks      map[string][]byte
	discovery map[string][]byte
	err       error
	calls     []fetchCall
}

func (f *countingFetcher) FetchJWKS(_ context.Context, uri string, params map[string]string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fetchCall{uri: uri, params: params})
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.jwks[uri]
	if !ok {
		return nil, &ServiceError{URI: uri, StatusCode: 404, Body: "not found"}
	}

	return body, nil
}

func (f *countingFetcher) FetchDiscoveryDocument(_ context.Context, uri string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fetchCall{uri: uri})
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.discovery[uri]
	if !ok {
		return nil, &ServiceError{URI: uri, StatusCode: 404, Body: "not found"}
	}

	return body, nil
}

func (f *countingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func (f *countingFetcher) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.err = err
}
