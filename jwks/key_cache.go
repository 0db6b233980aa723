package jwks

import (
	"context"
	"crypto/rsa"
	"fmt"
	"sort"
	"strings"

	"github.com/sap/cloud-security-client-go/internal/cache"
)

// Request header names carrying the tenant and client context of a key
// lookup. They are part of the cache key.
const (
	HeaderZoneID   = "x-zid"
	HeaderAppTID   = "x-app_tid"
	HeaderClientID = "x-client_id"
	HeaderAZP      = "x-azp"
)

// CacheKey builds the cache key of a single key. Identical logical lookups
// always produce identical keys: params are sorted by name and empty values
// are ignored.
func CacheKey(jwksURI string, alg Algorithm, keyID string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if value != "" {
			names = append(names, strings.ToLower(name))
		}
	}
	sort.Strings(names)

	lowered := make(map[string]string, len(params))
	for name, value := range params {
		lowered[strings.ToLower(name)] = value
	}

	var sb strings.Builder
	sb.WriteString(jwksURI)
	for _, name := range names {
		sb.WriteString("|")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(lowered[name])
	}
	sb.WriteString("|alg=")
	sb.WriteString(string(alg))
	sb.WriteString("|kid=")
	sb.WriteString(NormalizeKeyID(keyID))

	return sb.String()
}

// KeyCache serves public keys, fetching the key set from the identity
// service on a miss.
//
// A miss stores every key of the fetched set, so that lookups for other kids
// of the same set do not cause another request. Concurrent misses for the
// same cache key may each fetch the set; the last write wins. Fetching is
// idempotent, so no effort is made to coalesce them.
//
// Failing fetches never evict entries: keys cached before keep being served
// until they expire.
type KeyCache struct {
	fetcher Fetcher
	store   *cache.Store[*JSONWebKey]
	logger  Logger
}

// NewKeyCache creates a KeyCache. One instance is meant to be shared by all
// validators of a process.
func NewKeyCache(fetcher Fetcher, opts ...CacheOption) (*KeyCache, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher cannot be nil", ErrInvalidArgument)
	}

	cfg := defaultCacheConfig()
	if err := cfg.apply(opts); err != nil {
		return nil, err
	}

	return &KeyCache{
		fetcher: fetcher,
		store:   cache.New[*JSONWebKey](cfg.cacheTime, uint64(cfg.cacheSize), cfg.clock),
		logger:  cfg.logger,
	}, nil
}

// GetPublicKey returns the key registered for alg and keyID at jwksURI.
//
// params carry tenant and client context; they are sent as request headers
// and are part of the cache key. found is false if the fetched set does not
// contain the key. Errors are *ServiceError for failed requests, or wrap
// ErrKeyMaterial or ErrInvalidArgument.
func (c *KeyCache) GetPublicKey(
	ctx context.Context,
	alg Algorithm,
	keyID string,
	jwksURI string,
	params map[string]string,
) (key *rsa.PublicKey, found bool, err error) {
	if alg == "" {
		return nil, false, fmt.Errorf("%w: algorithm must not be empty", ErrInvalidArgument)
	}
	if strings.TrimSpace(keyID) == "" {
		return nil, false, fmt.Errorf("%w: key id must not be empty", ErrInvalidArgument)
	}
	if strings.TrimSpace(jwksURI) == "" {
		return nil, false, fmt.Errorf("%w: jwks uri must not be empty", ErrInvalidArgument)
	}

	cacheKey := CacheKey(jwksURI, alg, keyID, params)
	if jwk, ok := c.store.Get(cacheKey); ok {
		c.debug("key cache hit", "key", cacheKey)
		return publicKeyOf(jwk)
	}

	c.debug("key cache miss, fetching key set", "jwks_uri", jwksURI, "kid", keyID)

	body, err := c.fetcher.FetchJWKS(ctx, jwksURI, params)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("failed to fetch key set", "jwks_uri", jwksURI, "error", err)
		}
		return nil, false, err
	}

	keySet := Parse(body)
	for _, jwk := range keySet.Keys() {
		c.store.Set(CacheKey(jwksURI, jwk.Algorithm(), jwk.KeyID(), params), jwk)
	}

	c.debug("cached key set", "jwks_uri", jwksURI, "keys", keySet.Len())

	jwk, ok := keySet.Get(alg, keyID)
	if !ok {
		return nil, false, nil
	}

	return publicKeyOf(jwk)
}

// ClearCache drops all cached keys.
func (c *KeyCache) ClearCache() {
	c.store.Clear()
}

// Len returns the number of cached keys.
func (c *KeyCache) Len() int {
	return c.store.Len()
}

func (c *KeyCache) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func publicKeyOf(jwk *JSONWebKey) (*rsa.PublicKey, bool, error) {
	key, err := jwk.PublicKey()
	if err != nil {
		return nil, true, err
	}

	return key, true, nil
}
