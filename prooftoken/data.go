package prooftoken

import (
	"crypto/x509"
	"strings"
)

// Data describes one consumer application that is allowed to call this
// application, as listed by the IAS proof token API.
type Data struct {
	ConsumerClientID           string            `json:"consumerClientId"`
	ProviderClientID           string            `json:"providerClientId"`
	ConsumedServiceInstanceIDs []string          `json:"consumedServiceInstanceIds"`
	ConsumedServiceInstances   []ServiceInstance `json:"consumedServiceInstances"`
	X509                       []Certificate     `json:"x509"`
}

// ServiceInstance is a service instance consumed by a consumer.
type ServiceInstance struct {
	ID   string `json:"id"`
	Plan Plan   `json:"plan"`
}

// Plan is the service plan of a ServiceInstance.
type Plan struct {
	Name string `json:"name"`
}

// Certificate identifies a client certificate by subject and issuer
// distinguished name in RFC 2253 notation.
type Certificate struct {
	DN     string `json:"dn"`
	Issuer string `json:"issuer"`
}

// Matches reports whether cert has the subject and issuer of c.
func (c Certificate) Matches(cert *x509.Certificate) bool {
	return sameDN(c.DN, cert.Subject.String()) && sameDN(c.Issuer, cert.Issuer.String())
}

// HasCertificateMapped reports whether cert is one of the certificates
// registered for the consumer.
func (d Data) HasCertificateMapped(cert *x509.Certificate) bool {
	if cert == nil {
		return false
	}

	for _, c := range d.X509 {
		if c.Matches(cert) {
			return true
		}
	}

	return false
}

func sameDN(a, b string) bool {
	return a != "" && strings.EqualFold(normalizeDN(a), normalizeDN(b))
}

// normalizeDN drops the optional blanks around the RDN separators.
func normalizeDN(dn string) string {
	parts := strings.Split(dn, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	return strings.Join(parts, ",")
}
