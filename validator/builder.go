package validator

import (
	"fmt"

	"github.com/sap/cloud-security-client-go/config"
	"github.com/sap/cloud-security-client-go/jwks"
)

// New builds the default validation chain for tokens of the service
// described by cfg:
//
//	Timestamp -> Jku (XSUAA) or Issuer (IAS) -> Audience
//	-> Cnf, X5t or App2Service (if enabled) -> Signature -> validators added With
//
// Local checks come first; the signature validator is the only one that
// may reach out to the identity service.
//
// Without WithKeyCache or WithDiscoveryCache, New creates caches of its
// own. Chains built for different configurations of one process should
// share them instead.
func New(cfg config.ServiceConfiguration, opts ...Option) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &builder{tolerance: DefaultTolerance}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	if err := b.ensureCaches(cfg); err != nil {
		return nil, err
	}

	logger := loggerOrNop(b.logger)

	var validators []Validator

	timestamp, err := NewTimestampValidator(b.clock, b.tolerance)
	if err != nil {
		return nil, err
	}
	validators = append(validators, timestamp)

	switch cfg.Service {
	case config.ServiceXSUAA:
		if !cfg.LegacyMode {
			jku, err := NewJkuValidator(cfg.UAADomain)
			if err != nil {
				return nil, err
			}
			validators = append(validators, jku)
		}
	case config.ServiceIAS:
		issuer, err := NewIssuerValidator(cfg.TrustedDomains())
		if err != nil {
			return nil, err
		}
		validators = append(validators, issuer)
	}

	audience := b.audienceValidator
	if audience == nil {
		audience, err = b.defaultAudienceValidator(cfg, logger)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Info("using custom audience validator", "validator", fmt.Sprintf("%T", audience))
	}
	validators = append(validators, audience)

	switch b.certificateBinding {
	case bindingCnf:
		validators = append(validators, NewCnfValidator(logger))
	case bindingX5t:
		validators = append(validators, NewX5tValidator())
	}

	if b.consumers != nil {
		app2service, err := NewApp2ServiceValidator(cfg.ClientID, b.consumers)
		if err != nil {
			return nil, err
		}
		validators = append(validators, app2service)
	}

	source, err := KeySourceFor(cfg, b.tenantIDCheckOff)
	if err != nil {
		return nil, err
	}

	signature, err := NewSignatureValidator(source, b.keys, b.endpoints,
		WithFallbackKey(cfg.VerificationKey),
		WithSignatureLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	validators = append(validators, signature)

	validators = append(validators, b.validators...)

	return NewChain(validators, b.listeners, logger), nil
}

func (b *builder) defaultAudienceValidator(cfg config.ServiceConfiguration, logger Logger) (*AudienceValidator, error) {
	trusted := []string{cfg.ClientID, cfg.AppID}
	for _, other := range b.otherConfigurations {
		trusted = append(trusted, other.ClientID, other.AppID)
	}

	audience, err := NewAudienceValidator(cfg.Service, trusted...)
	if err != nil {
		return nil, err
	}
	audience.logger = logger

	logger.Info("configured audience validator", "client_ids", audience.TrustedClientIDs())

	return audience, nil
}

func (b *builder) ensureCaches(cfg config.ServiceConfiguration) error {
	needsEndpoints := cfg.Service == config.ServiceIAS && b.endpoints == nil
	if b.keys != nil && !needsEndpoints {
		return nil
	}

	fetcher := b.fetcher
	if fetcher == nil {
		httpFetcher, err := jwks.NewHTTPFetcher()
		if err != nil {
			return err
		}
		fetcher = httpFetcher
	}

	cacheOptions := b.cacheOptions
	if b.logger != nil {
		cacheOptions = append(cacheOptions, jwks.WithLogger(b.logger))
	}

	if b.keys == nil {
		keys, err := jwks.NewKeyCache(fetcher, cacheOptions...)
		if err != nil {
			return err
		}
		b.keys = keys
	}

	if needsEndpoints {
		endpoints, err := jwks.NewDiscoveryCache(fetcher, cacheOptions...)
		if err != nil {
			return err
		}
		b.endpoints = endpoints
	}

	return nil
}
