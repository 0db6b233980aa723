package jwks

import (
	"context"
	"fmt"

	"github.com/sap/cloud-security-client-go/internal/cache"
	"github.com/sap/cloud-security-client-go/internal/oidc"
)

// Endpoints are the endpoints announced in an OIDC discovery document.
type Endpoints = oidc.WellKnownEndpoints

// DiscoveryCache serves OIDC discovery documents, fetching them from the
// issuer on a miss. It follows the same expiry and concurrency rules as
// KeyCache.
type DiscoveryCache struct {
	fetcher Fetcher
	store   *cache.Store[*Endpoints]
	logger  Logger
}

// NewDiscoveryCache creates a DiscoveryCache.
func NewDiscoveryCache(fetcher Fetcher, opts ...CacheOption) (*DiscoveryCache, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher cannot be nil", ErrInvalidArgument)
	}

	cfg := defaultCacheConfig()
	if err := cfg.apply(opts); err != nil {
		return nil, err
	}

	return &DiscoveryCache{
		fetcher: fetcher,
		store:   cache.New[*Endpoints](cfg.cacheTime, uint64(cfg.cacheSize), cfg.clock),
		logger:  cfg.logger,
	}, nil
}

// GetEndpoints returns the endpoints announced by issuer. The discovery
// document is looked up below issuer at .well-known/openid-configuration.
func (c *DiscoveryCache) GetEndpoints(ctx context.Context, issuer string) (*Endpoints, error) {
	uri, err := oidc.DiscoveryURI(issuer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	if endpoints, ok := c.store.Get(uri); ok {
		return endpoints, nil
	}

	if c.logger != nil {
		c.logger.Debug("discovery cache miss, fetching document", "uri", uri)
	}

	body, err := c.fetcher.FetchDiscoveryDocument(ctx, uri)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("failed to fetch discovery document", "uri", uri, "error", err)
		}
		return nil, err
	}

	endpoints, err := oidc.ParseWellKnownEndpoints(body)
	if err != nil {
		return nil, &ServiceError{URI: uri, Body: string(body), Err: err}
	}

	c.store.Set(uri, endpoints)

	return endpoints, nil
}

// ClearCache drops all cached documents.
func (c *DiscoveryCache) ClearCache() {
	c.store.Clear()
}
