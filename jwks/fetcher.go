package jwks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ybbus/httpretry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxResponseSize limits the bytes read from identity service responses.
// Key sets and discovery documents are typically a few KB.
const maxResponseSize = 1 * 1024 * 1024

// Fetcher retrieves key sets and discovery documents from the identity
// service. Failed requests are reported as *ServiceError.
type Fetcher interface {
	// FetchJWKS performs a GET on uri, sending params as request headers.
	FetchJWKS(ctx context.Context, uri string, params map[string]string) ([]byte, error)

	// FetchDiscoveryDocument performs a GET on an OIDC discovery uri.
	FetchDiscoveryDocument(ctx context.Context, uri string) ([]byte, error)
}

// HTTPFetcher is the default Fetcher. Transient failures are retried with
// exponential backoff and requests are traced with OpenTelemetry.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*fetcherConfig) error

type fetcherConfig struct {
	client       *http.Client
	timeout      time.Duration
	maxRetries   int
	minRetryWait time.Duration
	maxRetryWait time.Duration
	userAgent    string
}

// WithHTTPClient uses c as is, without adding retries or tracing.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(cfg *fetcherConfig) error {
		if c == nil {
			return fmt.Errorf("%w: HTTP client cannot be nil", ErrInvalidArgument)
		}
		cfg.client = c
		return nil
	}
}

// WithTimeout sets the overall timeout of a single request including retries.
// Default: 10s.
func WithTimeout(d time.Duration) FetcherOption {
	return func(cfg *fetcherConfig) error {
		if d <= 0 {
			return fmt.Errorf("%w: timeout must be positive", ErrInvalidArgument)
		}
		cfg.timeout = d
		return nil
	}
}

// WithRetry configures how often and how long to back off between retries.
// Default: 3 retries, waiting between 100ms and 3s.
func WithRetry(maxRetries int, minWait, maxWait time.Duration) FetcherOption {
	return func(cfg *fetcherConfig) error {
		if maxRetries < 0 || minWait < 0 || maxWait < minWait {
			return fmt.Errorf("%w: invalid retry settings", ErrInvalidArgument)
		}
		cfg.maxRetries = maxRetries
		cfg.minRetryWait = minWait
		cfg.maxRetryWait = maxWait
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) FetcherOption {
	return func(cfg *fetcherConfig) error {
		cfg.userAgent = userAgent
		return nil
	}
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts ...FetcherOption) (*HTTPFetcher, error) {
	cfg := &fetcherConfig{
		timeout:      10 * time.Second,
		maxRetries:   3,
		minRetryWait: 100 * time.Millisecond,
		maxRetryWait: 3 * time.Second,
		userAgent:    "cloud-security-client-go",
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	client := cfg.client
	if client == nil {
		client = httpretry.NewCustomClient(
			&http.Client{
				Timeout:   cfg.timeout,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
			httpretry.WithMaxRetryCount(cfg.maxRetries),
			httpretry.WithBackoffPolicy(
				httpretry.ExponentialBackoff(cfg.minRetryWait, cfg.maxRetryWait, 0)),
		)
	}

	return &HTTPFetcher{client: client, userAgent: cfg.userAgent}, nil
}

// FetchJWKS implements Fetcher.
func (f *HTTPFetcher) FetchJWKS(ctx context.Context, uri string, params map[string]string) ([]byte, error) {
	return f.get(ctx, uri, params)
}

// FetchDiscoveryDocument implements Fetcher.
func (f *HTTPFetcher) FetchDiscoveryDocument(ctx context.Context, uri string) ([]byte, error) {
	return f.get(ctx, uri, nil)
}

// Fetch performs a GET on uri with the given request headers. It serves
// other identity service endpoints such as the proof token API.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string, headers map[string]string) ([]byte, error) {
	return f.get(ctx, uri, headers)
}

func (f *HTTPFetcher) get(ctx context.Context, uri string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &ServiceError{URI: uri, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for name, value := range headers {
		if value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &ServiceError{URI: uri, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &ServiceError{URI: uri, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{URI: uri, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
