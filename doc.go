/*
Package cloudsecurity provides HTTP middleware authenticating requests with
access tokens issued by SAP XSUAA or SAP Identity Authentication (IAS).

The middleware follows the Core-Adapter pattern: core parses and validates
tokens with the validator chain, this package is the net/http adapter, and
framework/gin, framework/echo and integrations/grpc adapt the same core to
other transports.

# Quick Start

	import (
	    cloudsecurity "github.com/sap/cloud-security-client-go"
	    "github.com/sap/cloud-security-client-go/config"
	    "github.com/sap/cloud-security-client-go/validator"
	)

	func main() {
	    cfg, err := config.FromEnvironment(config.ServiceIAS)
	    if err != nil {
	        log.Fatal(err)
	    }

	    chain, err := validator.New(cfg)
	    if err != nil {
	        log.Fatal(err)
	    }

	    middleware, err := cloudsecurity.New(
	        cloudsecurity.WithValidator(chain),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.Handle("/api/", middleware.CheckJWT(apiHandler))
	    http.ListenAndServe(":8080", nil)
	}

# Accessing the Token

	func apiHandler(w http.ResponseWriter, r *http.Request) {
	    t, err := cloudsecurity.GetToken(r.Context())
	    if err != nil {
	        http.Error(w, "Unauthorized", http.StatusUnauthorized)
	        return
	    }

	    fmt.Fprintf(w, "Hello, %s from tenant %s", t.ClientID(), t.AppTID())
	}

# Certificate Bound Tokens

Tokens bound to a client certificate (cnf claim) are checked against the
certificate returned by the CertificateExtractor. By default that is the
certificate of the TLS handshake. Behind a proxy terminating TLS, read it
from the forwarded header instead:

	middleware, err := cloudsecurity.New(
	    cloudsecurity.WithValidator(chain),
	    cloudsecurity.WithCertificateExtractor(
	        cloudsecurity.HeaderCertificateExtractor(cloudsecurity.ForwardedClientCertHeader),
	    ),
	)

# Error Handling

DefaultErrorHandler answers as described in RFC 6750:

  - 401 with "WWW-Authenticate: Bearer" if no token was sent
  - 400 invalid_request for malformed tokens
  - 403 insufficient_scope for an untrusted issuer or a foreign audience
  - 401 invalid_token for all other validation failures
  - 500 server_error for anything else, e.g. a malformed Authorization header

The JSON body carries error, error_description and the core error code.

# Observability

	registry := prometheus.NewRegistry()
	metrics := cloudsecurity.NewPrometheusMetrics(registry)

	chain, err := validator.New(cfg,
	    validator.WithListener(cloudsecurity.NewMetricsListener(metrics)),
	)

	middleware, err := cloudsecurity.New(
	    cloudsecurity.WithValidator(chain),
	    cloudsecurity.WithMetrics(metrics),
	    cloudsecurity.WithTracer(cloudsecurity.NewOpenTelemetryTracer(otel.Tracer("api"))),
	    cloudsecurity.WithLogger(cloudsecurity.NewZapLogger(zap.S())),
	)
*/
package cloudsecurity
