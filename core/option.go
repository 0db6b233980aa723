package core

import (
	"errors"

	"github.com/sap/cloud-security-client-go/validator"
)

// Option is a function that configures the Core.
// Options return errors to enable validation during construction.
type Option func(*Core) error

// New creates a new Core instance with the provided options.
//
// The Core must be configured with a validator using WithValidator.
//
// Example:
//
//	chain, err := validator.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c, err := core.New(
//	    core.WithValidator(chain),
//	    core.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Core, error) {
	c := &Core{
		credentialsOptional: false, // Secure default: require credentials
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate ensures all required fields are set.
func (c *Core) validate() error {
	if c.validator == nil {
		return NewValidationError(
			ErrorCodeValidatorNotSet,
			"validator is required but not set (use WithValidator option)",
			nil,
		)
	}
	return nil
}

// WithValidator sets the validator for the Core.
// This is a required option.
func WithValidator(v validator.Validator) Option {
	return func(c *Core) error {
		if v == nil {
			return errors.New("validator cannot be nil")
		}
		c.validator = v
		return nil
	}
}

// WithCredentialsOptional configures whether credentials are optional.
//
// When set to true, requests without tokens will be allowed to proceed
// without validation. No token will be stored in the context.
//
// When set to false (default), requests without tokens will return ErrJWTMissing.
func WithCredentialsOptional(optional bool) Option {
	return func(c *Core) error {
		c.credentialsOptional = optional
		return nil
	}
}

// WithLogger sets an optional logger for the Core.
//
// When configured, the Core will log debug information about token
// validation success/failure and timing information.
func WithLogger(logger Logger) Option {
	return func(c *Core) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
