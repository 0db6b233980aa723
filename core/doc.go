/*
Package core provides the token check shared by all transport adapters.

The Core type parses a raw token and runs it through a validator without
any dependency on a transport protocol. The HTTP middleware, the gin and
echo adapters and the gRPC interceptors wrap it.

# Architecture

	┌─────────────────────────────────────────────┐
	│         Transport Adapters                  │
	│  (net/http, gin, echo, gRPC)                │
	└────────────────┬────────────────────────────┘
	                 │
	                 ▼
	┌─────────────────────────────────────────────┐
	│          Core Engine (THIS PACKAGE)         │
	│  • Token Parsing                            │
	│  • Credentials Optional Logic               │
	│  • Error Classification                     │
	└────────────────┬────────────────────────────┘
	                 │
	                 ▼
	┌─────────────────────────────────────────────┐
	│          validator.Chain                    │
	│  (Timestamp, Issuer, Audience, Signature)   │
	└─────────────────────────────────────────────┘

# Basic Usage

	cfg, err := config.FromEnvironment(config.ServiceXSUAA)
	if err != nil {
	    log.Fatal(err)
	}

	chain, err := validator.New(cfg)
	if err != nil {
	    log.Fatal(err)
	}

	c, err := core.New(core.WithValidator(chain))
	if err != nil {
	    log.Fatal(err)
	}

	t, err := c.CheckToken(ctx, rawToken)
	if err != nil {
	    // Handle validation error
	}

# Context Helpers

	ctx = core.SetToken(ctx, t)

	t, err := core.GetToken(ctx)
	if err != nil {
	    // No token stored
	}

# Error Handling

A failed validation is returned as *ValidationError. It matches
ErrJWTInvalid, carries the validator's description as Message and a
machine-readable Code derived from the first failure:

	t, err := c.CheckToken(ctx, rawToken)
	if err != nil {
	    if errors.Is(err, core.ErrJWTMissing) {
	        // Token missing
	    }

	    var validationErr *core.ValidationError
	    if errors.As(err, &validationErr) {
	        switch validationErr.Code {
	        case core.ErrorCodeTokenExpired:
	            // Handle expired token
	        case core.ErrorCodeInvalidSignature:
	            // Handle signature error
	        }
	    }
	}
*/
package core
