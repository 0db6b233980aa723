package validator

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sap/cloud-security-client-go/token"
)

// IssuerValidator checks that the iss claim, and ias_iss if present, name a
// host below one of the trusted IAS domains.
type IssuerValidator struct {
	domains []string
}

// NewIssuerValidator creates an IssuerValidator trusting domains.
func NewIssuerValidator(domains []string) (*IssuerValidator, error) {
	cleaned := make([]string, 0, len(domains))
	for _, domain := range domains {
		if domain = normalizeDomain(domain); domain != "" {
			cleaned = append(cleaned, domain)
		}
	}

	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: issuer validator requires at least one domain", ErrInvalidArgument)
	}

	return &IssuerValidator{domains: cleaned}, nil
}

// Validate implements Validator.
func (v *IssuerValidator) Validate(_ context.Context, t *token.Token) Result {
	issuer := t.ClaimAsString(token.ClaimIssuer)
	if result := validateIssuerURL(issuer, token.ClaimIssuer); result.IsErroneous() {
		return result
	}

	claimName := token.ClaimIssuer
	if iasIssuer := t.ClaimAsString(token.ClaimIASIssuer); strings.TrimSpace(iasIssuer) != "" {
		if result := validateIssuerURL(iasIssuer, token.ClaimIASIssuer); result.IsErroneous() {
			return result
		}
		issuer, claimName = iasIssuer, token.ClaimIASIssuer
	}

	u, _ := url.Parse(issuer)
	if !hostMatchesDomains(u.Hostname(), v.domains) {
		return Invalid("Issuer is not trusted because '%s' '%s' doesn't match any of these domains '%v' of the identity provider.",
			claimName, issuer, v.domains)
	}

	return Valid()
}

// IsTrusted reports whether issuer is a well formed URL below one of the
// trusted domains.
func (v *IssuerValidator) IsTrusted(issuer string) bool {
	if validateIssuerURL(issuer, token.ClaimIssuer).IsErroneous() {
		return false
	}

	u, _ := url.Parse(issuer)
	return hostMatchesDomains(u.Hostname(), v.domains)
}

func validateIssuerURL(issuer, claimName string) Result {
	if strings.TrimSpace(issuer) == "" {
		return Invalid("Issuer validation can not be performed because Jwt token does not contain '%s' claim.", claimName)
	}

	if !strings.HasPrefix(issuer, "http") {
		return Invalid("Issuer is not trusted because '%s' claim '%s' does not provide a valid URI (missing http scheme). "+
			"Please contact your Identity Provider Administrator.", claimName, issuer)
	}

	if !isPlainHTTPURL(issuer) {
		return Invalid("Issuer is not trusted because '%s' claim '%s' does not provide a valid URI. "+
			"Please contact your Identity Provider Administrator.", claimName, issuer)
	}

	return Valid()
}

// isPlainHTTPURL accepts absolute http(s) URLs with a host and without
// userinfo, query or fragment.
func isPlainHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Hostname() != "" &&
		u.User == nil &&
		u.Opaque == "" &&
		u.RawQuery == "" &&
		!u.ForceQuery &&
		u.Fragment == "" &&
		!strings.ContainsAny(raw, `\#`)
}

// hostMatchesDomains reports whether host equals one of domains or is a
// subdomain of it.
func hostMatchesDomains(host string, domains []string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return false
	}

	for _, domain := range domains {
		domain = normalizeDomain(domain)
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}

	return false
}

func normalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, ".")

	return strings.TrimSuffix(domain, "/")
}
