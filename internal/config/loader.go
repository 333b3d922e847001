// Public domain.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file and expands ${VAR} environment variables.
// Keys absent from the file are left zero.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := decode(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

// LoadWithDefaults reads a config file over the default configuration, so
// that keys absent from the file keep their defaults.  An empty path
// returns the defaults.
func LoadWithDefaults(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := decode(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config with defaults and validates it.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
