package validator

import (
	"context"
	"crypto/x509"
	"fmt"

	"github.com/sap/cloud-security-client-go/token"
)

// ConsumerRegistry knows which client certificates the consumers of an
// application present. It is implemented by prooftoken.Registry.
type ConsumerRegistry interface {
	HasCertificateMapped(consumerClientID string, cert *x509.Certificate) bool
}

// App2ServiceValidator checks tokens another application obtained to call
// this one. Such tokens carry the client id of the caller in azp and no
// ias_apis; the caller must present a certificate that is registered for it.
// All other tokens are accepted unchanged.
type App2ServiceValidator struct {
	clientID string
	registry ConsumerRegistry
}

// NewApp2ServiceValidator creates an App2ServiceValidator for the
// application identified by clientID.
func NewApp2ServiceValidator(clientID string, registry ConsumerRegistry) (*App2ServiceValidator, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: app2service validator requires a client id", ErrInvalidArgument)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: app2service validator requires a consumer registry", ErrInvalidArgument)
	}

	return &App2ServiceValidator{clientID: clientID, registry: registry}, nil
}

// Validate implements Validator.
func (v *App2ServiceValidator) Validate(ctx context.Context, t *token.Token) Result {
	azp := t.ClaimAsString(token.ClaimAuthorizedParty)
	if azp == v.clientID || len(t.ClaimAsStringList(token.ClaimIASAPIs)) != 0 {
		return Valid()
	}

	cert, ok := ClientCertificateFromContext(ctx)
	if !ok {
		return Invalid("Client certificate missing from SecurityContext")
	}

	if !v.registry.HasCertificateMapped(azp, cert) {
		return Invalid("Certificate validation failed with Token 'azp' %s and certificate subject %s", azp, cert.Subject.String())
	}

	return Valid()
}
