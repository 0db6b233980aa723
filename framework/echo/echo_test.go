package echosecurity

import (
	"context"
	"crypto/x509"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cloudsecurity "github.com/sap/cloud-security-client-go"
	"github.com/sap/cloud-security-client-go/jwtgenerator"
	"github.com/sap/cloud-security-client-go/token"
	"github.com/sap/cloud-security-client-go/validator"
)

func constant(result validator.Result) validator.Validator {
	return validator.Func(func(context.Context, *token.Token) validator.Result { return result })
}

func TestNew(t *testing.T) {
	keys, err := jwtgenerator.GenerateKeyPair("key-1")
	require.NoError(t, err)
	raw := jwtgenerator.ForXSUAA(keys, "sb-app!t1", "auth.example.com", "zone-1").MustSign()

	tests := []struct {
		name       string
		validator  validator.Validator
		options    []Option
		cookie     string
		header     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid token",
			validator:  constant(validator.Valid()),
			header:     "Bearer " + raw,
			wantStatus: http.StatusOK,
			wantBody:   `{"client_id":"sb-app!t1","zone_id":"zone-1"}`,
		},
		{
			name:       "missing token",
			validator:  constant(validator.Valid()),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"invalid_token"}`,
		},
		{
			name:       "malformed token",
			validator:  constant(validator.Valid()),
			header:     "Bearer not-a-token",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid_request","error_description":"The access token is malformed","error_code":"token_malformed"}`,
		},
		{
			name:       "untrusted jku",
			validator:  constant(validator.Invalid("Jwt token does not contain a trusted 'jku' header parameter.")),
			header:     "Bearer " + raw,
			wantStatus: http.StatusForbidden,
			wantBody:   `{"error":"insufficient_scope","error_description":"The access token was issued by an untrusted issuer","error_code":"invalid_issuer"}`,
		},
		{
			name:       "optional credentials",
			validator:  constant(validator.Valid()),
			options:    []Option{WithCredentialsOptional(true)},
			wantStatus: http.StatusOK,
			wantBody:   `{"anonymous":true}`,
		},
		{
			name:       "cookie token",
			validator:  constant(validator.Valid()),
			options:    []Option{WithTokenExtractor(cloudsecurity.CookieTokenExtractor("jwt")), WithContextKey("token")},
			cookie:     raw,
			wantStatus: http.StatusOK,
			wantBody:   `{"client_id":"sb-app!t1","zone_id":"zone-1"}`,
		},
		{
			name:      "custom error handler",
			validator: constant(validator.Invalid("Jwt expired at 2024-05-01T13:00:00Z")),
			options: []Option{WithErrorHandler(func(c echo.Context, err error) error {
				return c.JSON(http.StatusTeapot, map[string]string{"message": err.Error()})
			})},
			header:     "Bearer " + raw,
			wantStatus: http.StatusTeapot,
			wantBody:   `{"message":"Jwt expired at 2024-05-01T13:00:00Z"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := New(tt.validator, tt.options...)
			require.NoError(t, err)

			key := DefaultTokenKey
			if tt.name == "cookie token" {
				key = "token"
			}

			e := echo.New()
			e.Use(auth)
			e.GET("/test", func(c echo.Context) error {
				tok, ok := GetToken(c, key)
				if !ok {
					return c.JSON(http.StatusOK, map[string]bool{"anonymous": true})
				}

				assert.True(t, cloudsecurity.HasToken(c.Request().Context()))
				return c.JSON(http.StatusOK, map[string]string{"client_id": tok.ClientID(), "zone_id": tok.ZoneID()})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "jwt", Value: tt.cookie})
			}

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestNew_CertificateExtractorError(t *testing.T) {
	auth, err := New(constant(validator.Valid()),
		WithCertificateExtractor(func(*http.Request) (*x509.Certificate, error) {
			return nil, errors.New("broken header")
		}))
	require.NoError(t, err)

	e := echo.New()
	e.Use(auth)
	e.GET("/test", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"server_error","error_description":"An internal error occurred while processing the request"}`, rec.Body.String())
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
		wantErr string
	}{
		{name: "nil error handler", options: []Option{WithErrorHandler(nil)}, wantErr: "error handler cannot be nil"},
		{name: "nil token extractor", options: []Option{WithTokenExtractor(nil)}, wantErr: "token extractor cannot be nil"},
		{name: "nil certificate extractor", options: []Option{WithCertificateExtractor(nil)}, wantErr: "certificate extractor cannot be nil"},
		{name: "empty context key", options: []Option{WithContextKey("")}, wantErr: "context key cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(constant(validator.Valid()), tt.options...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
