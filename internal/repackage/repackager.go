// Package repackage turns a pattern's page source into a standalone sandbox
// project: fetch, rewrite, assemble, submit.
package repackage

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mvp-joe/patternbox/internal/sandbox"
)

// State is a step of one repackage invocation.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateRewriting
	StateFailed
	StateAssembling
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateRewriting:
		return "rewriting"
	case StateFailed:
		return "failed(fallback-used)"
	case StateAssembling:
		return "assembling"
	case StateSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Repackager extracts a pattern and submits it to a sandbox.
type Repackager struct {
	extractor *Extractor
	submitter sandbox.Submitter
	options   sandbox.Options
	inflight  *atomic.Int64
}

// New creates a repackager.
func New(extractor *Extractor, submitter sandbox.Submitter, opts sandbox.Options) *Repackager {
	return &Repackager{
		extractor: extractor,
		submitter: submitter,
		options:   opts,
		inflight:  &atomic.Int64{},
	}
}

// WithSubmitter returns a repackager sharing r's pipeline and in-flight count
// that submits through s.
func (r *Repackager) WithSubmitter(s sandbox.Submitter) *Repackager {
	return &Repackager{
		extractor: r.extractor,
		submitter: s,
		options:   r.options,
		inflight:  r.inflight,
	}
}

// InFlight reports whether any invocation is running. Concurrent invocations
// are independent.
func (r *Repackager) InFlight() bool {
	return r.inflight.Load() > 0
}

// Extract runs the extraction step alone.
func (r *Repackager) Extract(ctx context.Context, identifier string) Snippet {
	return r.extractor.Extract(ctx, identifier)
}

// Repackage extracts identifier and submits the result. It reports whether
// the submission was handed off.
func (r *Repackager) Repackage(ctx context.Context, identifier string) bool {
	r.inflight.Add(1)
	defer r.inflight.Add(-1)

	inv := newInvocation(identifier)
	snippet := r.extractor.extract(ctx, identifier, inv.transition)
	return r.submit(ctx, inv, snippet)
}

// Submit assembles and submits an already extracted snippet. It never
// panics; failures are logged and reported as false.
func (r *Repackager) Submit(ctx context.Context, identifier, snippet, name string) bool {
	r.inflight.Add(1)
	defer r.inflight.Add(-1)

	inv := newInvocation(identifier)
	return r.submit(ctx, inv, Snippet{Identifier: identifier, Text: snippet, DeclarationName: name})
}

// Descriptor builds the descriptor for identifier without submitting it.
func (r *Repackager) Descriptor(ctx context.Context, identifier string) (*sandbox.Descriptor, Snippet, error) {
	snippet := r.extractor.Extract(ctx, identifier)
	d, err := sandbox.Build(snippetInput(snippet), r.options)
	return d, snippet, err
}

func (r *Repackager) submit(ctx context.Context, inv *invocation, snippet Snippet) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[repackage %s] %s: submission panicked: %v", inv.id, inv.identifier, p)
			ok = false
		}
	}()

	inv.transition(StateAssembling)
	d, err := sandbox.Build(snippetInput(snippet), r.options)
	if err != nil {
		log.Printf("[repackage %s] %s: failed to assemble descriptor: %v", inv.id, inv.identifier, err)
		return false
	}

	if r.submitter == nil {
		log.Printf("[repackage %s] %s: no submitter configured", inv.id, inv.identifier)
		return false
	}
	if err := r.submitter.Submit(ctx, d); err != nil {
		log.Printf("[repackage %s] %s: failed to submit: %v", inv.id, inv.identifier, err)
		return false
	}

	inv.transition(StateSubmitted)
	return true
}

func snippetInput(s Snippet) sandbox.Input {
	name := s.DeclarationName
	if name == "" {
		name = DefaultFallbackName
	}
	return sandbox.Input{
		Identifier: s.Identifier,
		Snippet:    s.Text,
		Name:       name,
		Degraded:   s.Degraded,
	}
}

type invocation struct {
	id         string
	identifier string
	state      State
}

func newInvocation(identifier string) *invocation {
	return &invocation{id: uuid.NewString()[:8], identifier: identifier, state: StateIdle}
}

func (inv *invocation) transition(next State) {
	log.Printf("[repackage %s] %s: %s -> %s", inv.id, inv.identifier, inv.state, next)
	inv.state = next
}
