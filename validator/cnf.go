package validator

import (
	"context"

	"github.com/sap/cloud-security-client-go/token"
)

func cnfThumbprint(t *token.Token) string {
	cnf := t.ClaimAsJSONObject(token.ClaimCnf)
	if cnf == nil {
		return ""
	}

	thumbprint, _ := cnf[token.CnfX5tS256].(string)
	return thumbprint
}

// CnfValidator checks proof of possession for certificate bound tokens.
//
// A token with a single audience is not bound and accepted as is. Otherwise
// the x5t#S256 thumbprint of its cnf claim must match the client
// certificate in the context.
type CnfValidator struct {
	logger Logger
}

// NewCnfValidator creates a CnfValidator.
func NewCnfValidator(logger Logger) *CnfValidator {
	return &CnfValidator{logger: loggerOrNop(logger)}
}

// Validate implements Validator.
func (v *CnfValidator) Validate(ctx context.Context, t *token.Token) Result {
	if len(t.Audiences()) == 1 {
		return Valid()
	}

	thumbprint := cnfThumbprint(t)
	if thumbprint == "" {
		return Invalid("Certificate validation failed")
	}

	cert, ok := ClientCertificateFromContext(ctx)
	if !ok {
		v.logger.Error("client certificate missing from context")
		return Invalid("Certificate validation failed")
	}

	if certThumbprint := Thumbprint(cert); certThumbprint != thumbprint {
		v.logger.Error("thumbprint of cnf claim does not match client certificate",
			"cnf", thumbprint, "certificate", certThumbprint)
		return Invalid("Certificate validation failed")
	}

	return Valid()
}

// X5tValidator requires every token to be bound to the client certificate
// in the context.
type X5tValidator struct{}

// NewX5tValidator creates an X5tValidator.
func NewX5tValidator() *X5tValidator {
	return &X5tValidator{}
}

// Validate implements Validator.
func (v *X5tValidator) Validate(ctx context.Context, t *token.Token) Result {
	thumbprint := cnfThumbprint(t)
	if thumbprint == "" {
		return Invalid("Token doesn't contain certificate thumbprint confirmation method")
	}

	cert, ok := ClientCertificateFromContext(ctx)
	if !ok {
		return Invalid("Client certificate missing from SecurityContext")
	}

	if certThumbprint := Thumbprint(cert); certThumbprint != thumbprint {
		return Invalid("Certificate thumbprint validation failed with Token 'cnf' thumbprint: %s != %s",
			thumbprint, certThumbprint)
	}

	return Valid()
}
