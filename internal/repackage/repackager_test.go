package repackage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mvp-joe/patternbox/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Repackager:
// - Repackage of a known pattern submits a descriptor whose App mounts the captured name
// - Repackage of an unavailable pattern still submits, using the placeholder
// - Submit returns false on submitter error, panic, or missing submitter
// - Submit with an explicit snippet mounts the given name
// - InFlight is true only while an invocation runs
// - WithSubmitter shares the in-flight count
// - State names are stable

type recordingSubmitter struct {
	mu          sync.Mutex
	descriptors []*sandbox.Descriptor
	err         error
	panicWith   any
}

func (s *recordingSubmitter) Submit(ctx context.Context, d *sandbox.Descriptor) error {
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descriptors = append(s.descriptors, d)
	return s.err
}

type blockingSubmitter struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSubmitter) Submit(ctx context.Context, d *sandbox.Descriptor) error {
	close(s.entered)
	<-s.release
	return nil
}

func newTestRepackager(t *testing.T, fetcher Fetcher, sub sandbox.Submitter) *Repackager {
	t.Helper()
	return New(NewExtractor(fetcher, newRegex(t), ""), sub, sandbox.Options{})
}

func TestRepackage_SubmitsDescriptor(t *testing.T) {
	t.Parallel()

	sub := &recordingSubmitter{}
	r := newTestRepackager(t, &stubFetcher{content: cardsPage}, sub)

	require.True(t, r.Repackage(context.Background(), "cards"))
	require.Len(t, sub.descriptors, 1)

	d := sub.descriptors[0]
	assert.Equal(t, "cards - UI Pattern", d.Title)
	assert.Equal(t, sandbox.DefaultEndpoint, d.Endpoint)

	app, ok := d.File("src/App.tsx")
	require.True(t, ok)
	assert.Contains(t, app, "<CardsPattern />")
	assert.Contains(t, app, "function CardsPattern() {")
	assert.NotContains(t, app, "export default function CardsPattern")
	assert.Equal(t, 1, strings.Count(app, "export default"))
	assert.False(t, r.InFlight())
}

func TestRepackage_UnavailableSourceStillSubmits(t *testing.T) {
	t.Parallel()

	sub := &recordingSubmitter{}
	r := newTestRepackager(t, &stubFetcher{err: errors.New("503")}, sub)

	require.True(t, r.Repackage(context.Background(), "cards"))
	require.Len(t, sub.descriptors, 1)

	app, _ := sub.descriptors[0].File("src/App.tsx")
	assert.Contains(t, app, placeholderCards)
	assert.Contains(t, app, "<InteractiveExample />")
}

func TestSubmit_FailuresReturnFalse(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{content: cardsPage}

	r := newTestRepackager(t, fetcher, &recordingSubmitter{err: errors.New("network down")})
	assert.False(t, r.Submit(context.Background(), "cards", "const A = 1;", "A"))

	r = newTestRepackager(t, fetcher, &recordingSubmitter{panicWith: "kaboom"})
	assert.NotPanics(t, func() {
		assert.False(t, r.Repackage(context.Background(), "cards"))
	})
	assert.False(t, r.InFlight())

	r = newTestRepackager(t, fetcher, nil)
	assert.False(t, r.Submit(context.Background(), "cards", "const A = 1;", "A"))
}

func TestSubmit_ExplicitSnippet(t *testing.T) {
	t.Parallel()

	sub := &recordingSubmitter{}
	r := newTestRepackager(t, &stubFetcher{}, sub)

	require.True(t, r.Submit(context.Background(), "tabs", "function Tabs() { return null; }", "Tabs"))

	app, _ := sub.descriptors[0].File("src/App.tsx")
	assert.Contains(t, app, "function Tabs() { return null; }\n")
	assert.Contains(t, app, "<Tabs />")
}

func TestRepackage_InFlight(t *testing.T) {
	t.Parallel()

	sub := &blockingSubmitter{entered: make(chan struct{}), release: make(chan struct{})}
	base := newTestRepackager(t, &stubFetcher{content: cardsPage}, &recordingSubmitter{})
	r := base.WithSubmitter(sub)

	assert.False(t, base.InFlight())

	done := make(chan bool)
	go func() { done <- r.Repackage(context.Background(), "cards") }()

	select {
	case <-sub.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("submitter never called")
	}
	assert.True(t, r.InFlight())
	assert.True(t, base.InFlight())

	close(sub.release)
	assert.True(t, <-done)
	assert.False(t, base.InFlight())
}

func TestDescriptor_DoesNotSubmit(t *testing.T) {
	t.Parallel()

	sub := &recordingSubmitter{}
	r := newTestRepackager(t, &stubFetcher{content: cardsPage}, sub)

	d, snippet, err := r.Descriptor(context.Background(), "cards")
	require.NoError(t, err)
	assert.Equal(t, "CardsPattern", snippet.DeclarationName)
	assert.Len(t, d.Files, 9)
	assert.Empty(t, sub.descriptors)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "failed(fallback-used)", StateFailed.String())
	assert.Equal(t, "submitted", StateSubmitted.String())
}
