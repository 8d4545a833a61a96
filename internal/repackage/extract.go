package repackage

import (
	"context"
	"fmt"
	"log"
)

// Snippet is the rewritten, self-contained source for one pattern.
type Snippet struct {
	Identifier string
	Text       string
	// DeclarationName is the component App mounts.
	DeclarationName string
	// Degraded is set when the source could not be fetched and Text is the
	// placeholder comment.
	Degraded       bool
	DroppedImports []string
}

// Extractor fetches raw source and rewrites it into a Snippet.
type Extractor struct {
	fetcher  Fetcher
	rewriter Rewriter
	fallback string
}

// NewExtractor creates an extractor. An empty fallback uses DefaultFallbackName.
func NewExtractor(fetcher Fetcher, rewriter Rewriter, fallback string) *Extractor {
	if fallback == "" {
		fallback = DefaultFallbackName
	}
	return &Extractor{fetcher: fetcher, rewriter: rewriter, fallback: fallback}
}

// Extract never fails: any fetch error yields the degraded placeholder.
func (e *Extractor) Extract(ctx context.Context, identifier string) Snippet {
	return e.extract(ctx, identifier, func(State) {})
}

func (e *Extractor) extract(ctx context.Context, identifier string, transition func(State)) Snippet {
	transition(StateExtracting)
	raw, err := e.fetcher.Fetch(ctx, identifier)
	if err != nil {
		log.Printf("[extract] %s: source unavailable, using placeholder: %v", identifier, err)
		transition(StateFailed)
		return Placeholder(identifier, e.fallback)
	}

	transition(StateRewriting)
	rw := e.rewriter.Rewrite(raw)
	return Snippet{
		Identifier:      identifier,
		Text:            rw.Snippet,
		DeclarationName: rw.Name,
		DroppedImports:  rw.DroppedImports,
	}
}

// Placeholder is the degraded snippet for an identifier whose source could
// not be loaded.
func Placeholder(identifier, name string) Snippet {
	if name == "" {
		name = DefaultFallbackName
	}
	return Snippet{
		Identifier: identifier,
		Text: fmt.Sprintf("// Source code for %s could not be loaded dynamically\n"+
			"// This would contain the actual runtime-extracted source code", identifier),
		DeclarationName: name,
		Degraded:        true,
	}
}
