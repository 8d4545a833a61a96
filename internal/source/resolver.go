// Package source resolves pattern identifiers to their raw source text.
//
// Resolution never transforms content and never caches: every call consults
// the table, then the deployment gate, then the store.
package source

import (
	"context"
	"strings"

	"github.com/mvp-joe/patternbox/internal/catalog"
)

// ContentType is the media type of resolved source text.
const ContentType = "text/plain; charset=utf-8"

// Text is the verbatim content of a resolved source artifact.
type Text struct {
	Identifier  string
	Location    string
	Content     string
	ContentType string
}

// Options configures a Resolver.
type Options struct {
	// Restricted disables direct source access, as in a production
	// deployment. Lookups still run so unknown identifiers stay NotFound.
	Restricted bool
}

// Resolver maps identifiers to source text through a catalog table and a store.
type Resolver struct {
	table      *catalog.Table
	store      Store
	restricted bool
}

// NewResolver creates a resolver.
func NewResolver(table *catalog.Table, store Store, opts Options) *Resolver {
	return &Resolver{
		table:      table,
		store:      store,
		restricted: opts.Restricted,
	}
}

// Table returns the identifier table the resolver consults.
func (r *Resolver) Table() *catalog.Table {
	return r.table
}

// Restricted reports whether direct source access is disabled.
func (r *Resolver) Restricted() bool {
	return r.restricted
}

// Resolve returns the raw text registered for identifier.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*Text, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, &Error{Kind: KindUnknown, Identifier: identifier}
	}

	location, ok := r.table.Lookup(identifier)
	if !ok {
		return nil, &Error{Kind: KindUnknown, Identifier: identifier}
	}

	if r.restricted {
		return nil, &Error{Kind: KindUnavailable, Identifier: identifier, Location: location}
	}

	exists, err := r.store.Exists(ctx, location)
	if err != nil {
		return nil, &Error{Kind: KindRead, Identifier: identifier, Location: location, Err: err}
	}
	if !exists {
		return nil, &Error{Kind: KindMissing, Identifier: identifier, Location: location}
	}

	content, err := r.store.Read(ctx, location)
	if err != nil {
		return nil, &Error{Kind: KindRead, Identifier: identifier, Location: location, Err: err}
	}

	return &Text{
		Identifier:  identifier,
		Location:    location,
		Content:     string(content),
		ContentType: ContentType,
	}, nil
}
