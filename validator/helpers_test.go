package validator

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/sap/cloud-security-client-go/jwtgenerator"
	"github.com/sap/cloud-security-client-go/token"
)

var (
	testKeysOnce sync.Once
	testKeys     *jwtgenerator.KeyPair
	testKeysErr  error
)

// signingKeys returns a key pair shared by all tests of the package.
func signingKeys(t *testing.T) *jwtgenerator.KeyPair {
	t.Helper()

	testKeysOnce.Do(func() {
		testKeys, testKeysErr = jwtgenerator.GenerateKeyPair("key-1")
	})
	require.NoError(t, testKeysErr)

	return testKeys
}

func parse(t *testing.T, g *jwtgenerator.Generator) *token.Token {
	t.Helper()

	raw, err := g.Sign()
	require.NoError(t, err)

	parsed, err := token.Parse(raw)
	require.NoError(t, err)

	return parsed
}

// unsignedToken assembles a token from header and claims with a dummy
// signature.
func unsignedToken(t *testing.T, header, claims map[string]any) *token.Token {
	t.Helper()

	encode := func(v map[string]any) string {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(data)
	}

	parsed, err := token.Parse(encode(header) + "." + encode(claims) + ".c2lnbmF0dXJl")
	require.NoError(t, err)

	return parsed
}

func clientCertificates(t *testing.T) (cert, other *x509.Certificate) {
	t.Helper()

	ca, err := jwtgenerator.NewCertificateAuthority(pkix.Name{CommonName: "Client CA", Organization: []string{"Example"}})
	require.NoError(t, err)

	cert, err = ca.Issue(pkix.Name{CommonName: "consumer", Organization: []string{"Example"}})
	require.NoError(t, err)

	other, err = ca.Issue(pkix.Name{CommonName: "intruder", Organization: []string{"Example"}})
	require.NoError(t, err)

	return cert, other
}
