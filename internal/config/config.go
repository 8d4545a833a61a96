// Package config provides configuration loading for patternbox.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (PATTERNBOX_*), including values from a .env file
//  2. Project config (.patternbox/config.yml)
//  3. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: PATTERNBOX_
//   - Nested fields: Use underscores (PATTERNBOX_SOURCE_ENVIRONMENT)
package config

import (
	"strings"
	"time"
)

// Config represents the complete patternbox configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Rewrite RewriteConfig `yaml:"rewrite" mapstructure:"rewrite"`
	Sandbox SandboxConfig `yaml:"sandbox" mapstructure:"sandbox"`
}

// ServerConfig configures the HTTP server behind `patternbox serve`.
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`                         // listen address, e.g. ":3000"
	CORS            bool          `yaml:"cors" mapstructure:"cors"`                         // wrap the mux in the CORS middleware
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"` // grace period on SIGINT/SIGTERM
}

// SourceConfig configures where pattern sources are read from.
type SourceConfig struct {
	Backend     string            `yaml:"backend" mapstructure:"backend"`         // "filesystem" or "minio"
	Root        string            `yaml:"root" mapstructure:"root"`               // filesystem root that table locations are relative to
	Environment string            `yaml:"environment" mapstructure:"environment"` // "development" or "production"
	Overrides   map[string]string `yaml:"overrides" mapstructure:"overrides"`     // extra identifier -> location entries
	Minio       MinioConfig       `yaml:"minio" mapstructure:"minio"`
}

// MinioConfig configures the object-store source backend.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
	Region    string `yaml:"region" mapstructure:"region"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
}

// RewriteConfig configures how raw sources are turned into snippets.
type RewriteConfig struct {
	Mode         string   `yaml:"mode" mapstructure:"mode"`                   // "regex" or "syntax"
	MinDepth     int      `yaml:"min_depth" mapstructure:"min_depth"`         // parent segments that make an import "deep"
	HelperGlobs  []string `yaml:"helper_globs" mapstructure:"helper_globs"`   // shared-helper import paths to drop
	FallbackName string   `yaml:"fallback_name" mapstructure:"fallback_name"` // declaration name when none is found
}

// SandboxConfig configures the external sandbox submission.
type SandboxConfig struct {
	Endpoint  string        `yaml:"endpoint" mapstructure:"endpoint"`     // form target
	Template  string        `yaml:"template" mapstructure:"template"`     // project[template] value
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`       // transport timeout for multipart posts
	FetchBase string        `yaml:"fetch_base" mapstructure:"fetch_base"` // fetch sources over HTTP from this base URL instead of in-process
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			CORS:            true,
			ShutdownTimeout: 10 * time.Second,
		},
		Source: SourceConfig{
			Backend:     "filesystem",
			Root:        ".",
			Environment: "development",
			Overrides:   map[string]string{},
			Minio: MinioConfig{
				Bucket: "patternbox-sources",
				Region: "us-east-1",
			},
		},
		Rewrite: RewriteConfig{
			Mode:     "regex",
			MinDepth: 3,
			HelperGlobs: []string{
				"**/components/shared/**",
				"**/components/Tooltip",
			},
			FallbackName: "InteractiveExample",
		},
		Sandbox: SandboxConfig{
			Endpoint: "https://stackblitz.com/run",
			Template: "node",
			Timeout:  15 * time.Second,
		},
	}
}

// Restricted reports whether direct source access is disallowed in this deployment.
func (c *Config) Restricted() bool {
	return strings.EqualFold(strings.TrimSpace(c.Source.Environment), "production")
}
