// Package config loads the optional serve configuration from YAML files.
// Flags take precedence, the file only provides defaults.
package config

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Config is the validated serve configuration.
type Config struct {
	ListenAddr       string
	JWTSecret        string
	AdminInviteToken string
	CORSOrigins      []string
	NATSURL          string
	InMemory         bool
}

// YAMLLoader loads serve configuration from YAML files.
type YAMLLoader struct {
	fs fs.FS
}

// NewYAMLLoader creates a new YAML config loader.
func NewYAMLLoader(filesystem fs.FS) *YAMLLoader {
	return &YAMLLoader{fs: filesystem}
}

// Load reads a YAML config file and returns the validated configuration.
func (l *YAMLLoader) Load(ctx context.Context, path string) (Config, error) {
	data, err := fs.ReadFile(l.fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return Config{}, ctx.Err()
	}

	var cfg serveConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg.toModel(), nil
}

// serveConfig represents the YAML structure for serve configuration.
type serveConfig struct {
	Listen           string   `yaml:"listen"`
	JWTSecret        string   `yaml:"jwt_secret"`
	AdminInviteToken string   `yaml:"admin_invite_token"`
	CORSOrigins      []string `yaml:"cors_origins"`
	NATSURL          string   `yaml:"nats_url"`
	InMemory         bool     `yaml:"in_memory"`
}

func (c serveConfig) validate() error {
	for i, origin := range c.CORSOrigins {
		if origin == "" {
			return fmt.Errorf("cors_origins[%d] is empty", i)
		}
	}
	return nil
}

func (c serveConfig) toModel() Config {
	return Config{
		ListenAddr:       c.Listen,
		JWTSecret:        c.JWTSecret,
		AdminInviteToken: c.AdminInviteToken,
		CORSOrigins:      c.CORSOrigins,
		NATSURL:          c.NATSURL,
		InMemory:         c.InMemory,
	}
}
