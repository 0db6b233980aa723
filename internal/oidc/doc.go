/*
Package oidc provides OIDC (OpenID Connect) discovery functionality.

OIDC providers expose a discovery document at a well-known URL:

	https://tenant.accounts.example.com/.well-known/openid-configuration

The document contains metadata about the provider. The fields used here are:
  - issuer: The issuer identifier
  - jwks_uri: URL to fetch JSON Web Keys
  - authorization_endpoint: OAuth 2.0 authorization endpoint
  - token_endpoint: OAuth 2.0 token endpoint

Fetching and caching the document is done by jwks.DiscoveryCache; this
package only knows where the document lives and how to read it.

# Specification

OpenID Connect Discovery 1.0
https://openid.net/specs/openid-connect-discovery-1_0.html
*/
package oidc
