package validator

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sap/cloud-security-client-go/config"
	"github.com/sap/cloud-security-client-go/jwks"
)

// Option is how options for New are set up.
// Options return errors to enable validation during construction.
type Option func(*builder) error

type builder struct {
	validators          []Validator
	listeners           []ValidationListener
	keys                KeyProvider
	endpoints           EndpointsProvider
	fetcher             jwks.Fetcher
	cacheOptions        []jwks.CacheOption
	audienceValidator   Validator
	otherConfigurations []config.ServiceConfiguration
	tenantIDCheckOff    bool
	clock               clockwork.Clock
	tolerance           time.Duration
	certificateBinding  certificateBinding
	consumers           ConsumerRegistry
	logger              Logger
}

type certificateBinding int

const (
	bindingNone certificateBinding = iota
	bindingCnf
	bindingX5t
)

// With appends a validator to the default chain.
func With(v Validator) Option {
	return func(b *builder) error {
		if v == nil {
			return errors.New("validator cannot be nil")
		}
		b.validators = append(b.validators, v)
		return nil
	}
}

// WithListener registers a listener notified about every validation.
func WithListener(listener ValidationListener) Option {
	return func(b *builder) error {
		if listener == nil {
			return errors.New("listener cannot be nil")
		}
		b.listeners = append(b.listeners, listener)
		return nil
	}
}

// WithKeyCache sets the key provider used by the signature validator.
// Share one *jwks.KeyCache between all chains of a process.
func WithKeyCache(keys KeyProvider) Option {
	return func(b *builder) error {
		if keys == nil {
			return errors.New("key cache cannot be nil")
		}
		b.keys = keys
		return nil
	}
}

// WithDiscoveryCache sets the endpoints provider used for IAS tokens.
func WithDiscoveryCache(endpoints EndpointsProvider) Option {
	return func(b *builder) error {
		if endpoints == nil {
			return errors.New("discovery cache cannot be nil")
		}
		b.endpoints = endpoints
		return nil
	}
}

// WithFetcher sets the fetcher of the caches New creates when no key cache
// or discovery cache is given.
//
// Default: jwks.NewHTTPFetcher()
func WithFetcher(fetcher jwks.Fetcher) Option {
	return func(b *builder) error {
		if fetcher == nil {
			return errors.New("fetcher cannot be nil")
		}
		b.fetcher = fetcher
		return nil
	}
}

// WithCacheOptions configures the caches New creates when no key cache or
// discovery cache is given.
func WithCacheOptions(opts ...jwks.CacheOption) Option {
	return func(b *builder) error {
		b.cacheOptions = append(b.cacheOptions, opts...)
		return nil
	}
}

// WithCustomAudienceValidator replaces the default audience validator.
func WithCustomAudienceValidator(v Validator) Option {
	return func(b *builder) error {
		if v == nil {
			return errors.New("audience validator cannot be nil")
		}
		b.audienceValidator = v
		return nil
	}
}

// WithOtherConfiguration trusts tokens issued for the client id and app id
// of another service instance, e.g. a broker.
func WithOtherConfiguration(cfg config.ServiceConfiguration) Option {
	return func(b *builder) error {
		if cfg.ClientID == "" {
			return errors.New("other configuration requires a client id")
		}
		b.otherConfigurations = append(b.otherConfigurations, cfg)
		return nil
	}
}

// DisableTenantIDCheck accepts IAS tokens of foreign issuers without
// app_tid. This relaxes the validation and is not recommended.
func DisableTenantIDCheck() Option {
	return func(b *builder) error {
		b.tenantIDCheckOff = true
		return nil
	}
}

// WithClock sets the clock used by the timestamp validator.
func WithClock(clock clockwork.Clock) Option {
	return func(b *builder) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		b.clock = clock
		return nil
	}
}

// WithTolerance sets the clock skew accepted for exp and nbf.
//
// Default: DefaultTolerance
func WithTolerance(tolerance time.Duration) Option {
	return func(b *builder) error {
		if tolerance < 0 {
			return errors.New("tolerance cannot be negative")
		}
		b.tolerance = tolerance
		return nil
	}
}

// WithCnfValidation adds the CnfValidator to the chain.
func WithCnfValidation() Option {
	return func(b *builder) error {
		b.certificateBinding = bindingCnf
		return nil
	}
}

// WithX5tValidation adds the X5tValidator to the chain.
func WithX5tValidation() Option {
	return func(b *builder) error {
		b.certificateBinding = bindingX5t
		return nil
	}
}

// WithApp2ServiceValidation adds the App2ServiceValidator, backed by
// registry, to the chain.
func WithApp2ServiceValidation(registry ConsumerRegistry) Option {
	return func(b *builder) error {
		if registry == nil {
			return errors.New("consumer registry cannot be nil")
		}
		b.consumers = registry
		return nil
	}
}

// WithLogger sets an optional logger for the chain and its validators.
func WithLogger(logger Logger) Option {
	return func(b *builder) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidArgument)
		}
		b.logger = logger
		return nil
	}
}
