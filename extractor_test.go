package cloudsecurity

import (
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap/cloud-security-client-go/jwtgenerator"
)

func clientCertificate(t *testing.T) *x509.Certificate {
	t.Helper()

	ca, err := jwtgenerator.NewCertificateAuthority(pkix.Name{CommonName: "Test CA", Organization: []string{"Example"}})
	require.NoError(t, err)

	cert, err := ca.Issue(pkix.Name{CommonName: "consumer", Organization: []string{"Example"}})
	require.NoError(t, err)

	return cert
}

func Test_ParameterTokenExtractor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://localhost?i-am-param=i+am+token", nil)

	gotToken, err := ParameterTokenExtractor("i-am-param")(r)
	require.NoError(t, err)
	assert.Equal(t, "i am token", gotToken)
}

func Test_AuthHeaderTokenExtractor(t *testing.T) {
	testCases := []struct {
		name      string
		request   *http.Request
		wantToken string
		wantError string
	}{
		{
			name:    "empty / no header",
			request: &http.Request{},
		},
		{
			name:      "token in header",
			request:   &http.Request{Header: http.Header{"Authorization": []string{"Bearer i-am-token"}}},
			wantToken: "i-am-token",
		},
		{
			name:      "scheme is case insensitive",
			request:   &http.Request{Header: http.Header{"Authorization": []string{"bearer i-am-token"}}},
			wantToken: "i-am-token",
		},
		{
			name:      "no bearer",
			request:   &http.Request{Header: http.Header{"Authorization": []string{"i-am-token"}}},
			wantError: "Authorization header format must be Bearer {token}",
		},
		{
			name:      "basic scheme",
			request:   &http.Request{Header: http.Header{"Authorization": []string{"Basic dXNlcjpwdw=="}}},
			wantError: "Authorization header format must be Bearer {token}",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			gotToken, gotError := AuthHeaderTokenExtractor(testCase.request)
			if testCase.wantError != "" {
				assert.EqualError(t, gotError, testCase.wantError)
			} else {
				assert.NoError(t, gotError)
			}
			assert.Equal(t, testCase.wantToken, gotToken)
		})
	}
}

func Test_CookieTokenExtractor(t *testing.T) {
	testCases := []struct {
		name      string
		cookie    *http.Cookie
		wantToken string
	}{
		{
			name: "no cookie",
		},
		{
			name:      "token in cookie",
			cookie:    &http.Cookie{Name: "token", Value: "i-am-token"},
			wantToken: "i-am-token",
		},
		{
			name:   "empty cookie",
			cookie: &http.Cookie{Name: "token"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			if testCase.cookie != nil {
				req.AddCookie(testCase.cookie)
			}

			gotToken, err := CookieTokenExtractor("token")(req)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantToken, gotToken)
		})
	}
}

func Test_MultiTokenExtractor(t *testing.T) {
	exNothing := func(*http.Request) (string, error) { return "", nil }

	t.Run("uses first extractor that replies", func(t *testing.T) {
		exSomething := func(*http.Request) (string, error) { return "i am token", nil }
		exFail := func(*http.Request) (string, error) { return "", errors.New("should not have hit me") }

		gotToken, err := MultiTokenExtractor(exNothing, exSomething, exFail)(&http.Request{})
		require.NoError(t, err)
		assert.Equal(t, "i am token", gotToken)
	})

	t.Run("stops when an extractor fails", func(t *testing.T) {
		exFail := func(*http.Request) (string, error) { return "", errors.New("extraction fail") }

		gotToken, err := MultiTokenExtractor(exNothing, exFail)(&http.Request{})
		assert.EqualError(t, err, "extraction fail")
		assert.Empty(t, gotToken)
	})

	t.Run("defaults to empty", func(t *testing.T) {
		gotToken, err := MultiTokenExtractor(exNothing, exNothing)(&http.Request{})
		require.NoError(t, err)
		assert.Empty(t, gotToken)
	})
}

func Test_CertificateExtractors(t *testing.T) {
	cert := clientCertificate(t)
	encoded := jwtgenerator.CertificatePEM(cert)

	testCases := []struct {
		name      string
		extractor CertificateExtractor
		request   func() *http.Request
		wantCert  bool
		wantError string
	}{
		{
			name:      "tls without certificate",
			extractor: TLSCertificateExtractor,
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/", nil)
			},
		},
		{
			name:      "tls peer certificate",
			extractor: TLSCertificateExtractor,
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.TLS = &tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert}}
				return r
			},
			wantCert: true,
		},
		{
			name:      "no forwarded header",
			extractor: HeaderCertificateExtractor(ForwardedClientCertHeader),
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/", nil)
			},
		},
		{
			name:      "url encoded pem in header",
			extractor: HeaderCertificateExtractor(ForwardedClientCertHeader),
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.Header.Set(ForwardedClientCertHeader, url.PathEscape(encoded))
				return r
			},
			wantCert: true,
		},
		{
			name:      "garbage in header",
			extractor: HeaderCertificateExtractor(ForwardedClientCertHeader),
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.Header.Set(ForwardedClientCertHeader, "not a certificate")
				return r
			},
			wantError: "invalid client certificate in header X-Forwarded-Client-Cert",
		},
		{
			name: "tls wins over header",
			extractor: MultiCertificateExtractor(
				TLSCertificateExtractor,
				HeaderCertificateExtractor(ForwardedClientCertHeader),
			),
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.TLS = &tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert}}
				r.Header.Set(ForwardedClientCertHeader, "not a certificate")
				return r
			},
			wantCert: true,
		},
		{
			name: "falls back to header",
			extractor: MultiCertificateExtractor(
				TLSCertificateExtractor,
				HeaderCertificateExtractor(ForwardedClientCertHeader),
			),
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.Header.Set(ForwardedClientCertHeader, url.PathEscape(encoded))
				return r
			},
			wantCert: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := testCase.extractor(testCase.request())
			if testCase.wantError != "" {
				assert.ErrorContains(t, err, testCase.wantError)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			if testCase.wantCert {
				require.NotNil(t, got)
				assert.True(t, cert.Equal(got))
			} else {
				assert.Nil(t, got)
			}
		})
	}
}
