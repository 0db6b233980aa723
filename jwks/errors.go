package jwks

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned when a cache or fetcher is called or
	// configured with a missing or out of range value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrKeyMaterial is returned when a public key cannot be derived from a
	// JSON Web Key, e.g. because of an unsupported algorithm or a broken encoding.
	ErrKeyMaterial = errors.New("invalid key material")
)

// ServiceError describes a failed request against the identity service.
// StatusCode is zero when no response was received at all.
type ServiceError struct {
	URI        string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	parts := []string{"Error retrieving data from identity service"}
	if e.URI != "" {
		parts = append(parts, "Server URI: "+e.URI)
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("Http status code: %d", e.StatusCode))
	}
	if e.Body != "" {
		parts = append(parts, "Response body: "+e.Body)
	}
	if e.Err != nil {
		parts = append(parts, "Cause: "+e.Err.Error())
	}

	return strings.Join(parts, ". ")
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
