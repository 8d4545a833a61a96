package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead of
// searching <root>/.patternbox.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PATTERNBOX_*), .env values included
// 2. Config file (.patternbox/config.yml or .patternbox/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	// A missing .env is the normal case
	_ = godotenv.Load(filepath.Join(l.rootDir, ".env"))

	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".patternbox"))
	}

	v.SetEnvPrefix("PATTERNBOX")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., PATTERNBOX_SOURCE_ENVIRONMENT)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Server configuration
	v.BindEnv("server.addr")
	v.BindEnv("server.cors")
	v.BindEnv("server.shutdown_timeout")

	// Source configuration
	v.BindEnv("source.backend")
	v.BindEnv("source.root")
	v.BindEnv("source.environment")
	v.BindEnv("source.minio.endpoint")
	v.BindEnv("source.minio.bucket")
	v.BindEnv("source.minio.prefix")
	v.BindEnv("source.minio.region")
	v.BindEnv("source.minio.access_key")
	v.BindEnv("source.minio.secret_key")
	v.BindEnv("source.minio.use_ssl")

	// Rewrite configuration
	v.BindEnv("rewrite.mode")
	v.BindEnv("rewrite.min_depth")
	v.BindEnv("rewrite.fallback_name")

	// Sandbox configuration
	v.BindEnv("sandbox.endpoint")
	v.BindEnv("sandbox.template")
	v.BindEnv("sandbox.timeout")
	v.BindEnv("sandbox.fetch_base")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Relative source roots are anchored at the project root, not the process cwd
	if cfg.Source.Root != "" && !filepath.IsAbs(cfg.Source.Root) {
		cfg.Source.Root = filepath.Join(l.rootDir, cfg.Source.Root)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.cors", defaults.Server.CORS)
	v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)

	v.SetDefault("source.backend", defaults.Source.Backend)
	v.SetDefault("source.root", defaults.Source.Root)
	v.SetDefault("source.environment", defaults.Source.Environment)
	v.SetDefault("source.overrides", defaults.Source.Overrides)
	v.SetDefault("source.minio.bucket", defaults.Source.Minio.Bucket)
	v.SetDefault("source.minio.region", defaults.Source.Minio.Region)
	v.SetDefault("source.minio.use_ssl", defaults.Source.Minio.UseSSL)

	v.SetDefault("rewrite.mode", defaults.Rewrite.Mode)
	v.SetDefault("rewrite.min_depth", defaults.Rewrite.MinDepth)
	v.SetDefault("rewrite.helper_globs", defaults.Rewrite.HelperGlobs)
	v.SetDefault("rewrite.fallback_name", defaults.Rewrite.FallbackName)

	v.SetDefault("sandbox.endpoint", defaults.Sandbox.Endpoint)
	v.SetDefault("sandbox.template", defaults.Sandbox.Template)
	v.SetDefault("sandbox.timeout", defaults.Sandbox.Timeout)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
