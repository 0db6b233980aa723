/*
Package validator validates XSUAA and IAS access tokens.

A validation is a chain of small validators, each checking one aspect of a
token. Every validator reports its outcome as a Result; expected failures
such as an expired token or an unknown signing key are never returned as
errors.

# Default Chain

New builds the chain for a service configuration:

  - TimestampValidator: exp is mandatory, nbf (or iat) is honoured, both with
    a tolerance of DefaultTolerance
  - JkuValidator (XSUAA): the jku header names the token_keys endpoint of a
    host below the UAA domain
  - IssuerValidator (IAS): iss and ias_iss name a host below a trusted domain
  - AudienceValidator: the token was issued for the client id, the app id or
    the ids of another configured service instance
  - CnfValidator, X5tValidator, App2ServiceValidator: optional certificate
    binding checks
  - SignatureValidator: RS256 signature against the key published by the
    identity service

All validators run, even after one failed. The chain is invalid if any of
them is, and its description lists every failure, the first one first.

# Basic Usage

	cfg, err := config.FromEnvironment(config.ServiceIAS)
	if err != nil {
	    log.Fatal(err)
	}

	fetcher, _ := jwks.NewHTTPFetcher()
	keys, _ := jwks.NewKeyCache(fetcher)
	discovery, _ := jwks.NewDiscoveryCache(fetcher)

	chain, err := validator.New(cfg,
	    validator.WithKeyCache(keys),
	    validator.WithDiscoveryCache(discovery),
	)
	if err != nil {
	    log.Fatal(err)
	}

	t, err := token.Parse(rawToken)
	if err != nil {
	    return err
	}

	if result := chain.Validate(ctx, t); result.IsErroneous() {
	    log.Printf("token rejected: %s", result.ErrorDescription())
	}

# Key Resolution

The SignatureValidator is configured with a KeySource:

  - XSUAAKeySource: keys are fetched from the jku header, or from
    {url}/token_keys in legacy mode (kid "legacy-token-key")
  - IASKeySource: keys are fetched from the jwks_uri of the issuer's OIDC
    discovery document; tokens of a foreign issuer must carry app_tid

The validator checks jku and issuer against its trusted domains before any
request is sent, so it is safe to use on its own. If no key can be
retrieved and the configuration carries a verificationkey, that key is
used instead.

# Certificate Binding

Certificate bound tokens are checked against the client certificate of the
request, passed with WithClientCertificate:

	ctx = validator.WithClientCertificate(ctx, r.TLS.PeerCertificates[0])
	result := chain.Validate(ctx, t)

Certificates forwarded by a proxy can be decoded with ParseCertificate.
*/
package validator
