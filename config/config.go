package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrConfiguration is returned for incomplete or contradicting service configurations.
var ErrConfiguration = errors.New("configuration error")

// Service identifies the identity service a configuration belongs to.
type Service string

const (
	// ServiceXSUAA is the SAP Authorization and Trust Management service.
	ServiceXSUAA Service = "xsuaa"

	// ServiceIAS is the SAP Cloud Identity Services (Identity Authentication).
	ServiceIAS Service = "identity"
)

func (s Service) String() string {
	switch s {
	case ServiceXSUAA:
		return "XSUAA"
	case ServiceIAS:
		return "IAS"
	default:
		return string(s)
	}
}

// ParseService accepts the binding names ("xsuaa", "identity") as well as "ias".
func ParseService(name string) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "xsuaa":
		return ServiceXSUAA, nil
	case "identity", "ias":
		return ServiceIAS, nil
	default:
		return "", fmt.Errorf("%w: unknown service %q", ErrConfiguration, name)
	}
}

// Plan is the service plan of an XSUAA binding.
type Plan string

const (
	PlanApplication Plan = "application"
	PlanBroker      Plan = "broker"
	PlanSpace       Plan = "space"
	PlanDefault     Plan = "default"
)

// ServiceConfiguration holds the credentials of a service binding that are
// relevant for token validation. It is a value type; validators copy it on
// construction and never modify it.
type ServiceConfiguration struct {
	Service Service `koanf:"service"`
	Plan    Plan    `koanf:"plan"`

	ClientID     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`

	// URL is the tenant specific base URL of the identity service.
	URL string `koanf:"url"`
	// CertURL is the base URL for mTLS requests.
	CertURL string `koanf:"certurl"`

	// UAADomain is the domain of the XSUAA tenant URLs, e.g. authentication.eu10.hana.ondemand.com.
	UAADomain string `koanf:"uaadomain"`
	// Domains are the trusted IAS domains, e.g. accounts.ondemand.com.
	Domains []string `koanf:"domains"`

	// AppID is the xsappname of an XSUAA application.
	AppID string `koanf:"xsappname"`

	// VerificationKey is a PEM encoded public key used when no key can be
	// retrieved from the identity service.
	VerificationKey string `koanf:"verificationkey"`

	// LegacyMode marks an XSUAA running on XS advanced, serving a single key
	// under {url}/token_keys.
	LegacyMode bool `koanf:"legacy_mode"`

	// ProofTokenURL is the IAS endpoint listing the consumers bound to this
	// application for app2service calls.
	ProofTokenURL string `koanf:"prooftoken_url"`
}

// Validate checks that the configuration carries what token validation needs.
func (c ServiceConfiguration) Validate() error {
	var errs []error

	if c.Service != ServiceXSUAA && c.Service != ServiceIAS {
		errs = append(errs, fmt.Errorf("service must be %q or %q, got %q", ServiceXSUAA, ServiceIAS, c.Service))
	}
	if strings.TrimSpace(c.ClientID) == "" {
		errs = append(errs, errors.New("clientid is required"))
	}
	if c.URL != "" {
		if u, err := url.Parse(c.URL); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("url %q is not an absolute URL", c.URL))
		}
	}

	switch c.Service {
	case ServiceXSUAA:
		if c.LegacyMode && c.URL == "" {
			errs = append(errs, errors.New("url is required in legacy mode"))
		}
		if !c.LegacyMode && c.UAADomain == "" {
			errs = append(errs, errors.New("uaadomain is required"))
		}
	case ServiceIAS:
		if c.URL == "" && len(c.Domains) == 0 {
			errs = append(errs, errors.New("url or domains are required"))
		}
	}

	if len(errs) != 0 {
		return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
	}

	return nil
}

// TrustedDomains returns the configured domains. For IAS without explicit
// domains the host of URL is used.
func (c ServiceConfiguration) TrustedDomains() []string {
	if c.Service == ServiceXSUAA {
		if c.UAADomain == "" {
			return nil
		}
		return []string{c.UAADomain}
	}

	if len(c.Domains) != 0 {
		return append([]string(nil), c.Domains...)
	}

	if u, err := url.Parse(c.URL); err == nil && u.Hostname() != "" {
		return []string{u.Hostname()}
	}

	return nil
}

// IsXSUAA reports whether the configuration belongs to an XSUAA binding.
func (c ServiceConfiguration) IsXSUAA() bool {
	return c.Service == ServiceXSUAA
}

// IsIAS reports whether the configuration belongs to an IAS binding.
func (c ServiceConfiguration) IsIAS() bool {
	return c.Service == ServiceIAS
}
