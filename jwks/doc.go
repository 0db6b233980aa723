/*
Package jwks provides JWKS (JSON Web Key Set) parsing, fetching and caching
for JWT signature validation against XSUAA and IAS.

# Overview

  - JSONWebKey and KeySet model the public keys of an identity service
  - Parse reads a JWKS document, including the PEM "value" members XSUAA adds
  - Fetcher retrieves documents over HTTP, HTTPFetcher is the default
  - KeyCache caches single keys per key set endpoint, tenant and client
  - DiscoveryCache caches OIDC discovery documents per issuer

# Caching

Both caches expire entries a fixed time after they were written (between 10
and 15 minutes) and hold a bounded number of entries, evicting the least
recently used ones first. Create one instance per process and share it:

	fetcher, err := jwks.NewHTTPFetcher()
	if err != nil {
	    log.Fatal(err)
	}

	keys, err := jwks.NewKeyCache(fetcher, jwks.WithCacheTime(15*time.Minute))
	if err != nil {
	    log.Fatal(err)
	}

	pub, found, err := keys.GetPublicKey(ctx, jwks.RS256, kid, jwksURI, map[string]string{
	    jwks.HeaderAppTID: appTID,
	})

A miss caches all keys of the fetched set. Concurrent misses may fetch the same
set more than once.

# Error Handling

Request failures are reported as *ServiceError carrying the status code and
response body. Key material problems wrap ErrKeyMaterial, misuse wraps
ErrInvalidArgument.
*/
package jwks
