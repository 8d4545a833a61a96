package cli

import (
	"fmt"
	"net/http"

	"github.com/mvp-joe/patternbox/internal/catalog"
	"github.com/mvp-joe/patternbox/internal/config"
	"github.com/mvp-joe/patternbox/internal/repackage"
	"github.com/mvp-joe/patternbox/internal/sandbox"
	"github.com/mvp-joe/patternbox/internal/source"
)

// components is the object graph every command builds from configuration.
type components struct {
	cfg        *config.Config
	resolver   *source.Resolver
	repackager *repackage.Repackager
}

// newComponents wires store, resolver, rewriter, fetcher and repackager.
// submitter may be nil for commands that never submit.
func newComponents(cfg *config.Config, submitter sandbox.Submitter) (*components, error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	resolver := source.NewResolver(
		catalog.New(cfg.Source.Overrides),
		store,
		source.Options{Restricted: cfg.Restricted()},
	)

	rewriter, err := repackage.NewRewriter(cfg.Rewrite.Mode, repackage.RewriteOptions{
		MinDepth:     cfg.Rewrite.MinDepth,
		HelperGlobs:  cfg.Rewrite.HelperGlobs,
		FallbackName: cfg.Rewrite.FallbackName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rewriter: %w", err)
	}

	var fetcher repackage.Fetcher = &repackage.ResolverFetcher{Resolver: resolver}
	if cfg.Sandbox.FetchBase != "" {
		fetcher = repackage.NewHTTPFetcher(cfg.Sandbox.FetchBase)
	}

	extractor := repackage.NewExtractor(fetcher, rewriter, cfg.Rewrite.FallbackName)
	repackager := repackage.New(extractor, submitter, sandbox.Options{
		Endpoint: cfg.Sandbox.Endpoint,
		Template: cfg.Sandbox.Template,
	})

	return &components{cfg: cfg, resolver: resolver, repackager: repackager}, nil
}

func newStore(cfg *config.Config) (source.Store, error) {
	switch cfg.Source.Backend {
	case "minio":
		m := cfg.Source.Minio
		store, err := source.NewMinioStore(source.MinioOptions{
			Endpoint:  m.Endpoint,
			Bucket:    m.Bucket,
			Prefix:    m.Prefix,
			Region:    m.Region,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			UseSSL:    m.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "", "filesystem":
		store, err := source.NewFSStore(cfg.Source.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to open source root: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}
}

// postSubmitter posts descriptors to the configured sandbox endpoint.
func postSubmitter(cfg *config.Config) sandbox.Submitter {
	return &sandbox.MultipartPoster{Client: &http.Client{Timeout: cfg.Sandbox.Timeout}}
}
