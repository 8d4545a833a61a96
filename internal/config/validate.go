package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidBackend indicates an unsupported source backend
	ErrInvalidBackend = errors.New("invalid source backend")

	// ErrInvalidEnvironment indicates an unknown deployment environment
	ErrInvalidEnvironment = errors.New("invalid source environment")

	// ErrEmptyRoot indicates a missing filesystem root
	ErrEmptyRoot = errors.New("empty source root")

	// ErrInvalidMinio indicates incomplete object-store settings
	ErrInvalidMinio = errors.New("invalid minio settings")

	// ErrInvalidRewriteMode indicates an unknown rewrite mode
	ErrInvalidRewriteMode = errors.New("invalid rewrite mode")

	// ErrInvalidDepth indicates a non-positive deep-import threshold
	ErrInvalidDepth = errors.New("invalid import depth")

	// ErrInvalidGlob indicates a helper glob that does not compile
	ErrInvalidGlob = errors.New("invalid helper glob")

	// ErrEmptyFallbackName indicates a missing fallback declaration name
	ErrEmptyFallbackName = errors.New("empty fallback name")

	// ErrInvalidEndpoint indicates a malformed sandbox endpoint
	ErrInvalidEndpoint = errors.New("invalid sandbox endpoint")

	// ErrEmptyTemplate indicates a missing sandbox template
	ErrEmptyTemplate = errors.New("empty sandbox template")

	// ErrEmptyAddr indicates a missing server listen address
	ErrEmptyAddr = errors.New("empty server address")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		errs = append(errs, fmt.Errorf("%w: server.addr is required", ErrEmptyAddr))
	}

	if err := validateSource(&cfg.Source); err != nil {
		errs = append(errs, err)
	}

	if err := validateRewrite(&cfg.Rewrite); err != nil {
		errs = append(errs, err)
	}

	if err := validateSandbox(&cfg.Sandbox); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateSource(cfg *SourceConfig) error {
	var errs []error

	backend := strings.ToLower(cfg.Backend)
	switch backend {
	case "filesystem":
		if strings.TrimSpace(cfg.Root) == "" {
			errs = append(errs, fmt.Errorf("%w: source.root is required for the filesystem backend", ErrEmptyRoot))
		}
	case "minio":
		if strings.TrimSpace(cfg.Minio.Endpoint) == "" {
			errs = append(errs, fmt.Errorf("%w: endpoint is required", ErrInvalidMinio))
		}
		if strings.TrimSpace(cfg.Minio.Bucket) == "" {
			errs = append(errs, fmt.Errorf("%w: bucket is required", ErrInvalidMinio))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'filesystem' or 'minio', got '%s'", ErrInvalidBackend, cfg.Backend))
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if env != "development" && env != "production" {
		errs = append(errs, fmt.Errorf("%w: must be 'development' or 'production', got '%s'", ErrInvalidEnvironment, cfg.Environment))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateRewrite(cfg *RewriteConfig) error {
	var errs []error

	mode := strings.ToLower(cfg.Mode)
	if mode != "regex" && mode != "syntax" {
		errs = append(errs, fmt.Errorf("%w: must be 'regex' or 'syntax', got '%s'", ErrInvalidRewriteMode, cfg.Mode))
	}

	if cfg.MinDepth <= 0 {
		errs = append(errs, fmt.Errorf("%w: min_depth must be positive, got %d", ErrInvalidDepth, cfg.MinDepth))
	}

	for _, pattern := range cfg.HelperGlobs {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidGlob, pattern, err))
		}
	}

	if strings.TrimSpace(cfg.FallbackName) == "" {
		errs = append(errs, fmt.Errorf("%w: fallback_name is required", ErrEmptyFallbackName))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateSandbox(cfg *SandboxConfig) error {
	var errs []error

	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: must be an absolute http(s) URL, got '%s'", ErrInvalidEndpoint, cfg.Endpoint))
	}

	if strings.TrimSpace(cfg.Template) == "" {
		errs = append(errs, fmt.Errorf("%w: template is required", ErrEmptyTemplate))
	}

	if cfg.FetchBase != "" {
		if u, err := url.Parse(cfg.FetchBase); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("%w: fetch_base must be an absolute URL, got '%s'", ErrInvalidEndpoint, cfg.FetchBase))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
