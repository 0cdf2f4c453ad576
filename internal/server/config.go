package server

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// Config holds the service settings. Values map one-to-one onto flags so a
// single YAML file can stand in for a flag set in deployments.
type Config struct {
	Addr string `yaml:"addr" json:"addr"`

	Max struct {
		UploadBytes int64 `yaml:"uploadBytes" json:"uploadBytes"`
	} `yaml:"max" json:"max"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns the settings used when neither flags nor a config
// file override them.
func DefaultConfig() Config {
	var cfg Config
	cfg.Addr = ":5001"
	cfg.Max.UploadBytes = 64 << 20
	return cfg
}

// LoadConfigFile reads a YAML config file into cfg. Missing path is an error;
// callers decide whether a config file is optional.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
