package validator

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sap/cloud-security-client-go/token"
)

const tokenKeysPath = "token_keys"

// JkuValidator checks that the jku header of an XSUAA token points to the
// token_keys endpoint of a host below the configured UAA domain. Keys are
// only ever fetched from a jku accepted here.
type JkuValidator struct {
	uaaDomain string
}

// NewJkuValidator creates a JkuValidator for uaaDomain.
func NewJkuValidator(uaaDomain string) (*JkuValidator, error) {
	domain := normalizeDomain(uaaDomain)
	if domain == "" {
		return nil, fmt.Errorf("%w: jku validator requires the uaa domain", ErrInvalidArgument)
	}

	return &JkuValidator{uaaDomain: domain}, nil
}

// Validate implements Validator.
func (v *JkuValidator) Validate(_ context.Context, t *token.Token) Result {
	return v.check(t.HeaderParameterAsString(token.HeaderJKU))
}

// IsTrusted reports whether jku would be accepted by Validate.
func (v *JkuValidator) IsTrusted(jku string) bool {
	return v.check(jku).IsValid()
}

func (v *JkuValidator) check(jku string) Result {
	if strings.TrimSpace(jku) == "" {
		return Invalid("Issuer validation can not be performed because Jwt token does not contain 'jku' header parameter.")
	}

	u, err := url.Parse(jku)
	if err != nil {
		return Invalid("Issuer validation can not be performed because Jwt token does not contain a valid uri as 'jku' header parameter.")
	}

	if (u.Scheme != "http" && u.Scheme != "https") ||
		u.User != nil ||
		strings.Contains(jku, `\`) ||
		!hostMatchesDomains(u.Hostname(), []string{v.uaaDomain}) {
		return Invalid("Issuer is not trusted because 'jku' '%s' does not match uaa domain '%s' of the identity service.",
			jku, v.uaaDomain)
	}

	if !strings.HasSuffix(u.Path, tokenKeysPath) || u.RawQuery != "" || u.ForceQuery || u.Fragment != "" {
		return Invalid("Jwt token does not contain a valid 'jku' header parameter.")
	}

	return Valid()
}
