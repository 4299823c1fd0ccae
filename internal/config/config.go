// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

// Package config loads and validates service configuration from a YAML
// file, environment variables and command-line flags.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Defaults applied before any source is loaded.
const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server" json:"server"`
	Metrics  MetricsConfig  `koanf:"metrics" json:"metrics"`
	Database DatabaseConfig `koanf:"database" json:"database"`
	SMTP     SMTPConfig     `koanf:"smtp" json:"smtp"`
	Auth     AuthConfig     `koanf:"auth" json:"auth"`
	Log      LogConfig      `koanf:"log" json:"log"`
}

// ServerConfig configures the public HTTP listener.
type ServerConfig struct {
	Addr string `koanf:"addr" json:"addr"`
	// PublicBaseURL is the externally visible origin used in Location
	// headers and confirmation links, e.g. "https://quiz.example.org".
	PublicBaseURL string `koanf:"public_base_url" json:"public_base_url"`
	// CORSOrigins are glob patterns for allowed Origin values,
	// e.g. "https://*.example.org".
	CORSOrigins []string `koanf:"cors_origins" json:"cors_origins,omitempty"`
}

// MetricsConfig configures the observability listener. An empty addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url" json:"url,omitempty"`
}

// SMTPConfig configures confirmation mail delivery.
type SMTPConfig struct {
	Host     string `koanf:"host" json:"host"`
	Port     int    `koanf:"port" json:"port"`
	From     string `koanf:"from" json:"from"`
	Username string `koanf:"username" json:"username,omitempty"`
	Password string `koanf:"password" json:"password,omitempty"`
}

// AuthConfig configures credential handling.
type AuthConfig struct {
	// Hasher selects the password digest scheme: "legacy" (default) or
	// "argon2id".
	Hasher string `koanf:"hasher" json:"hasher,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty"`
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any, schema-validated first), then flag overrides. The database URL
// falls back to the DATABASE_URL environment variable when the file and
// flags leave it empty.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		raw, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
		if err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
		if err := ValidateSchema(raw); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{}
	cfg.Server.Addr = DefaultListenAddr
	cfg.Metrics.Addr = DefaultMetricsAddr
	cfg.Log.Format = DefaultLogFormat
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for coherence.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("server.addr is required")
	}
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url or DATABASE_URL is required")
	}
	if c.Server.PublicBaseURL != "" && !strings.HasPrefix(c.Server.PublicBaseURL, "http") {
		return oops.Code("CONFIG_INVALID").Errorf("server.public_base_url must be an absolute URL")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	switch c.Auth.Hasher {
	case "", "legacy", "argon2id":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("auth.hasher must be 'legacy' or 'argon2id', got %q", c.Auth.Hasher)
	}
	return nil
}
