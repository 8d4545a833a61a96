package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PathStaysInsideRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := NewFSStore(root)
	require.NoError(t, err)

	path, err := store.Path("app/patterns/cards/page.tsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root(), "app", "patterns", "cards", "page.tsx"), path)

	_, err = store.Path("../secrets.txt")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = store.Path("app/../../secrets.txt")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestFSStore_ExistsAndRead(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := NewFSStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "a/b.tsx")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b.tsx"), []byte("hello"), 0644))

	ok, err = store.Exists(ctx, "a/b.tsx")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := store.Read(ctx, "a/b.tsx")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	ok, err = store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "directories are not artifacts")
}
