package repackage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mvp-joe/patternbox/internal/source"
)

// Fetcher retrieves the raw source text for a pattern identifier.
type Fetcher interface {
	Fetch(ctx context.Context, identifier string) (string, error)
}

// ResolverFetcher reads through an in-process resolver.
type ResolverFetcher struct {
	Resolver *source.Resolver
}

func (f *ResolverFetcher) Fetch(ctx context.Context, identifier string) (string, error) {
	text, err := f.Resolver.Resolve(ctx, identifier)
	if err != nil {
		return "", err
	}
	return text.Content, nil
}

// HTTPFetcher reads from a running source endpoint at Base.
// No timeout is applied beyond the caller's context.
type HTTPFetcher struct {
	Base   string
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher against base, e.g. "http://localhost:3000".
func NewHTTPFetcher(base string) *HTTPFetcher {
	return &HTTPFetcher{Base: strings.TrimRight(base, "/"), Client: http.DefaultClient}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, identifier string) (string, error) {
	endpoint := f.Base + "/api/source/" + url.PathEscape(identifier)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("source endpoint returned %d for %s", resp.StatusCode, identifier)
	}
	return string(body), nil
}
