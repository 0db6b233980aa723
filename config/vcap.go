package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// VCAPServicesEnv is the Cloud Foundry environment variable holding all
// service bindings of an application.
const VCAPServicesEnv = "VCAP_SERVICES"

// FromVCAPServices returns all bindings of service found in a VCAP_SERVICES
// document, in the order they appear.
func FromVCAPServices(vcapServices []byte, service Service) ([]ServiceConfiguration, error) {
	parser := koanf.New("/")
	if err := parser.Load(rawbytes.Provider(vcapServices), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrConfiguration, VCAPServicesEnv, err)
	}

	bindings := parser.Slices(string(service))
	configs := make([]ServiceConfiguration, 0, len(bindings))

	for idx, binding := range bindings {
		cfg, err := decode(binding, "credentials")
		if err != nil {
			return nil, fmt.Errorf("binding #%d of %s: %w", idx, service, err)
		}

		cfg.Service = service
		if cfg.Plan == "" {
			cfg.Plan = Plan(binding.String("plan"))
		}

		configs = append(configs, cfg)
	}

	return configs, nil
}

// XSUAAFromVCAPServices selects the XSUAA binding used for token validation:
// the application plan first, then broker, then space and default.
func XSUAAFromVCAPServices(vcapServices []byte) (ServiceConfiguration, error) {
	configs, err := FromVCAPServices(vcapServices, ServiceXSUAA)
	if err != nil {
		return ServiceConfiguration{}, err
	}

	for _, plan := range []Plan{PlanApplication, PlanBroker, PlanSpace, PlanDefault} {
		for _, cfg := range configs {
			if cfg.Plan == plan {
				return cfg, cfg.Validate()
			}
		}
	}

	if len(configs) != 0 {
		return configs[0], configs[0].Validate()
	}

	return ServiceConfiguration{}, fmt.Errorf("%w: no %s binding found", ErrConfiguration, ServiceXSUAA)
}

// IASFromVCAPServices returns the first IAS binding.
func IASFromVCAPServices(vcapServices []byte) (ServiceConfiguration, error) {
	configs, err := FromVCAPServices(vcapServices, ServiceIAS)
	if err != nil {
		return ServiceConfiguration{}, err
	}

	if len(configs) == 0 {
		return ServiceConfiguration{}, fmt.Errorf("%w: no %s binding found", ErrConfiguration, ServiceIAS)
	}

	return configs[0], configs[0].Validate()
}

// FromEnvironment reads the binding of service from the VCAP_SERVICES
// environment variable.
func FromEnvironment(service Service) (ServiceConfiguration, error) {
	vcap := os.Getenv(VCAPServicesEnv)
	if vcap == "" {
		return ServiceConfiguration{}, fmt.Errorf("%w: %s is not set", ErrConfiguration, VCAPServicesEnv)
	}

	if service == ServiceXSUAA {
		return XSUAAFromVCAPServices([]byte(vcap))
	}

	return IASFromVCAPServices([]byte(vcap))
}
