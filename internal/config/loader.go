// Package config provides configuration loading, defaults, and validation for
// fragvocab.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "FRAGVOCAB"

// configName is the file stem looked up in search paths.
const configName = "fragvocab"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigParseError   = errors.New("config parse error")
	ErrConfigValidation   = errors.New("config validation failed")
)

type loadOptions struct {
	path        string
	searchPaths []string
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

// WithConfigPath reads the YAML file at path. A missing file is an error.
func WithConfigPath(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// WithSearchPaths looks for fragvocab.yaml in each directory. Finding none
// is not an error.
func WithSearchPaths(dirs ...string) LoadOption {
	return func(o *loadOptions) { o.searchPaths = append(o.searchPaths, dirs...) }
}

// newViper builds a Viper instance with YAML file type, the FRAGVOCAB_ env
// prefix and a key replacer that maps "." to "_", so that "redis.addr"
// resolves to FRAGVOCAB_REDIS_ADDR. Every key of Config is bound so that
// environment variables are honoured even when absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v, reflect.TypeOf(Config{}), "")
	return v
}

func bindEnvKeys(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			bindEnvKeys(v, f.Type, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

// Load builds a Config from an optional YAML file, FRAGVOCAB_* environment
// overrides and defaults, then validates it.
func Load(opts ...LoadOption) (*Config, error) {
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	v := newViper()
	switch {
	case o.path != "":
		v.SetConfigFile(o.path)
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %q", ErrConfigFileNotFound, o.path)
			}
			return nil, fmt.Errorf("%w: %q: %w", ErrConfigParseError, o.path, err)
		}
	case len(o.searchPaths) > 0:
		v.SetConfigName(configName)
		for _, dir := range o.searchPaths {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: %w", ErrConfigParseError, err)
			}
		}
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from FRAGVOCAB_* environment variables and
// defaults only.
//
//	FRAGVOCAB_<SECTION>_<FIELD>   e.g.  FRAGVOCAB_CORPUS_PATH, FRAGVOCAB_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %w", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on any error.
func MustLoad(opts ...LoadOption) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
