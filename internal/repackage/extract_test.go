package repackage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/patternbox/internal/catalog"
	"github.com/mvp-joe/patternbox/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Extractor:
// - Successful fetch yields the rewritten snippet and captured name
// - Any fetch failure yields the degraded placeholder with the fallback name
// - ResolverFetcher reads through the in-process resolver
// - HTTPFetcher reads from /api/source/{id} and treats non-200 as failure

type stubFetcher struct {
	content string
	err     error
	calls   []string
}

func (f *stubFetcher) Fetch(ctx context.Context, identifier string) (string, error) {
	f.calls = append(f.calls, identifier)
	return f.content, f.err
}

const placeholderCards = "// Source code for cards could not be loaded dynamically\n" +
	"// This would contain the actual runtime-extracted source code"

func TestExtract_RewritesFetchedSource(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{content: cardsPage}
	ex := NewExtractor(fetcher, newRegex(t), "")

	snippet := ex.Extract(context.Background(), "cards")

	assert.Equal(t, []string{"cards"}, fetcher.calls)
	assert.Equal(t, "cards", snippet.Identifier)
	assert.Equal(t, "CardsPattern", snippet.DeclarationName)
	assert.False(t, snippet.Degraded)
	assert.Contains(t, snippet.Text, "function CardsPattern()")
}

func TestExtract_FetchFailureDegrades(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(&stubFetcher{err: errors.New("boom")}, newRegex(t), "")

	snippet := ex.Extract(context.Background(), "cards")

	assert.True(t, snippet.Degraded)
	assert.Equal(t, DefaultFallbackName, snippet.DeclarationName)
	assert.Equal(t, placeholderCards, snippet.Text)
}

func TestResolverFetcher(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "app", "patterns", "cards", "page.tsx")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(cardsPage), 0644))

	store, err := source.NewFSStore(root)
	require.NoError(t, err)
	fetcher := &ResolverFetcher{Resolver: source.NewResolver(catalog.Default(), store, source.Options{})}

	content, err := fetcher.Fetch(context.Background(), "cards")
	require.NoError(t, err)
	assert.Equal(t, cardsPage, content)

	_, err = fetcher.Fetch(context.Background(), "modal")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/source/cards" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Component not found"}`))
			return
		}
		_, _ = w.Write([]byte(cardsPage))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(srv.URL + "/")

	content, err := fetcher.Fetch(context.Background(), "cards")
	require.NoError(t, err)
	assert.Equal(t, cardsPage, content)

	_, err = fetcher.Fetch(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	snippet := NewExtractor(fetcher, newRegex(t), "").Extract(context.Background(), "nope")
	assert.True(t, snippet.Degraded)
}

func TestPlaceholder(t *testing.T) {
	t.Parallel()

	s := Placeholder("cards", "")
	assert.Equal(t, placeholderCards, s.Text)
	assert.Equal(t, DefaultFallbackName, s.DeclarationName)
	assert.True(t, s.Degraded)
}
