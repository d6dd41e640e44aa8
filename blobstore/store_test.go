package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreLifecycle(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "runs/missing.jsonl")
	require.ErrorIs(t, err, ErrNotFound)

	data := []byte(`{"seq":1}` + "\n")
	require.NoError(t, store.Put(ctx, "runs/a.jsonl", data))
	require.NoError(t, store.Put(ctx, "runs/b.jsonl.zst", []byte("zstd")))
	require.NoError(t, store.Put(ctx, "other/c.jsonl", []byte("c")))

	got, err := store.Get(ctx, "runs/a.jsonl")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Mutating the returned slice does not affect the stored blob.
	got[0] = 'X'
	again, err := store.Get(ctx, "runs/a.jsonl")
	require.NoError(t, err)
	assert.Equal(t, data, again)

	names, err := store.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a.jsonl", "runs/b.jsonl.zst"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Overwrite
	require.NoError(t, store.Put(ctx, "runs/a.jsonl", []byte("v2")))
	got, err = store.Get(ctx, "runs/a.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, store.Delete(ctx, "runs/a.jsonl"))
	require.NoError(t, store.Delete(ctx, "runs/a.jsonl"))
	_, err = store.Get(ctx, "runs/a.jsonl")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStoreLifecycle(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	testStoreLifecycle(t, NewLocalStore(root))

	t.Run("NoTempFilesLeft", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Join(root, "runs"))
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp-")
		}
	})

	t.Run("MissingRoot", func(t *testing.T) {
		store := NewLocalStore(filepath.Join(root, "does-not-exist"))
		names, err := store.List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		store := NewLocalStore(root)
		assert.ErrorIs(t, store.Put(ctx, "x", nil), context.Canceled)
		_, err := store.Get(ctx, "x")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
