package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the prefix of environment variables overriding
// configuration values, e.g. CLOUD_SECURITY_CLIENTID.
const DefaultEnvPrefix = "CLOUD_SECURITY_"

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	binding   []byte
	envPrefix string
	environ   func() []string
	defaults  map[string]any
}

// WithBinding sets the credentials document of a service binding. JSON and
// YAML are accepted.
func WithBinding(data []byte) LoadOption {
	return func(o *loadOptions) {
		o.binding = data
	}
}

// WithEnvPrefix changes the prefix of environment overrides. An empty prefix
// disables them.
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// WithEnviron replaces os.Environ as source of environment variables.
func WithEnviron(environ func() []string) LoadOption {
	return func(o *loadOptions) {
		o.environ = environ
	}
}

// WithDefaults sets values used when neither binding nor environment provide one.
func WithDefaults(defaults map[string]any) LoadOption {
	return func(o *loadOptions) {
		o.defaults = defaults
	}
}

// Load builds a ServiceConfiguration from defaults, a binding document and
// environment overrides, in that order of precedence, and validates it.
func Load(opts ...LoadOption) (ServiceConfiguration, error) {
	o := loadOptions{envPrefix: DefaultEnvPrefix, environ: os.Environ}
	for _, opt := range opts {
		opt(&o)
	}

	parser := koanf.New(".")

	if len(o.defaults) != 0 {
		if err := parser.Load(confmap.Provider(o.defaults, "."), nil); err != nil {
			return ServiceConfiguration{}, fmt.Errorf("%w: failed to load defaults: %w", ErrConfiguration, err)
		}
	}

	if len(o.binding) != 0 {
		if err := parser.Load(rawbytes.Provider(o.binding), yaml.Parser()); err != nil {
			return ServiceConfiguration{}, fmt.Errorf("%w: failed to parse binding: %w", ErrConfiguration, err)
		}
	}

	if o.envPrefix != "" {
		prefix := o.envPrefix
		provider := env.Provider(".", env.Opt{
			Prefix: prefix,
			TransformFunc: func(key, val string) (string, any) {
				return strings.ToLower(strings.TrimPrefix(key, prefix)), val
			},
			EnvironFunc: o.environ,
		})
		if err := parser.Load(provider, nil); err != nil {
			return ServiceConfiguration{}, fmt.Errorf("%w: failed to load environment: %w", ErrConfiguration, err)
		}
	}

	cfg, err := decode(parser, "")
	if err != nil {
		return ServiceConfiguration{}, err
	}

	if err := cfg.Validate(); err != nil {
		return ServiceConfiguration{}, err
	}

	return cfg, nil
}

func decode(parser *koanf.Koanf, path string) (ServiceConfiguration, error) {
	var cfg ServiceConfiguration

	err := parser.UnmarshalWithConf(path, &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				serviceDecodeHook,
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return ServiceConfiguration{}, fmt.Errorf("%w: failed to decode configuration: %w", ErrConfiguration, err)
	}

	return cfg, nil
}

// serviceDecodeHook accepts "ias" and mixed case spellings for the service.
func serviceDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(Service("")) {
		return data, nil
	}

	name, ok := data.(string)
	if !ok || name == "" {
		return data, nil
	}

	return ParseService(name)
}
