package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvp-joe/patternbox/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for SourceWatcher:
// - New fails for a missing root
// - Writing a registered page reports its identifier after the debounce
// - Rapid writes to several pages arrive as one sorted batch
// - Files that are not registered pages are ignored
// - A page created inside a new directory is reported
// - Stop is idempotent and ends the watch loop

const testDebounce = 50 * time.Millisecond

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func startWatcher(t *testing.T, root string) (*SourceWatcher, chan []string) {
	t.Helper()
	w, err := New(root, catalog.Default(), testDebounce)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	batches := make(chan []string, 16)
	require.NoError(t, w.Start(context.Background(), func(ids []string) {
		batches <- ids
	}))
	time.Sleep(50 * time.Millisecond)
	return w, batches
}

func waitBatch(t *testing.T, batches chan []string) []string {
	t.Helper()
	select {
	case ids := <-batches:
		return ids
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
		return nil
	}
}

func TestNew_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "missing"), catalog.Default(), 0)
	assert.Error(t, err)
}

func TestSourceWatcher_ReportsRegisteredPage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app/patterns/cards/page.tsx", "v1")
	_, batches := startWatcher(t, root)

	writeFile(t, root, "app/patterns/cards/page.tsx", "v2")

	assert.Equal(t, []string{"cards"}, waitBatch(t, batches))
}

func TestSourceWatcher_BatchesRapidChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app/patterns/tabs/page.tsx", "v1")
	writeFile(t, root, "app/patterns/cards/page.tsx", "v1")
	_, batches := startWatcher(t, root)

	writeFile(t, root, "app/patterns/tabs/page.tsx", "v2")
	writeFile(t, root, "app/patterns/cards/page.tsx", "v2")
	writeFile(t, root, "app/patterns/tabs/page.tsx", "v3")

	assert.Equal(t, []string{"cards", "tabs"}, waitBatch(t, batches))
}

func TestSourceWatcher_IgnoresUnregisteredFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app/patterns/cards/page.tsx", "v1")
	_, batches := startWatcher(t, root)

	writeFile(t, root, "app/patterns/cards/notes.md", "hello")
	writeFile(t, root, "README.md", "hello")

	select {
	case ids := <-batches:
		t.Fatalf("unexpected change report: %v", ids)
	case <-time.After(5 * testDebounce):
	}

	writeFile(t, root, "app/patterns/cards/page.tsx", "v2")
	assert.Equal(t, []string{"cards"}, waitBatch(t, batches))
}

func TestSourceWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app", "patterns"), 0755))
	_, batches := startWatcher(t, root)

	writeFile(t, root, "app/patterns/modal/page.tsx", "v1")

	assert.Equal(t, []string{"modal"}, waitBatch(t, batches))
}

func TestSourceWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, _ := startWatcher(t, t.TempDir())

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("watch loop did not exit")
	}
}

func TestSourceWatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), catalog.Default(), testDebounce)
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}

func TestSourceWatcher_RequiresCallback(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), catalog.Default(), testDebounce)
	require.NoError(t, err)
	defer w.Stop()

	assert.Error(t, w.Start(context.Background(), nil))
}
