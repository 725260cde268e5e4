package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBlob(t *testing.T, store BlobStore, name string, data []byte) {
	t.Helper()
	w, err := store.Create(context.Background(), name)
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Close())
}

// testLifecycle exercises the behaviour every BlobStore shares.
func testLifecycle(t *testing.T, store BlobStore) {
	ctx := context.Background()
	data := []byte("hello world, this is a test blob for annie")

	writeBlob(t, store, "data-001.bin", data)

	blob, err := store.Open(ctx, "data-001.bin")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	r, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "this", string(content))

	r, err = NewReader(ctx, blob)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, data, content)
	require.NoError(t, blob.Close())

	t.Run("Overwrite", func(t *testing.T) {
		writeBlob(t, store, "data-001.bin", []byte("v2"))
		blob, err := store.Open(ctx, "data-001.bin")
		require.NoError(t, err)
		defer blob.Close()
		assert.Equal(t, int64(2), blob.Size())
	})

	t.Run("AbortKeepsPrevious", func(t *testing.T) {
		w, err := store.Create(ctx, "data-001.bin")
		require.NoError(t, err)
		_, err = w.Write([]byte("partial garbage"))
		require.NoError(t, err)
		require.NoError(t, w.Abort())

		blob, err := store.Open(ctx, "data-001.bin")
		require.NoError(t, err)
		defer blob.Close()
		assert.Equal(t, int64(2), blob.Size())

		names, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"data-001.bin"}, names)
	})

	t.Run("ListPrefix", func(t *testing.T) {
		writeBlob(t, store, "data-002.bin", nil)
		writeBlob(t, store, "other.bin", []byte("x"))

		names, err := store.List(ctx, "data-")
		require.NoError(t, err)
		assert.Equal(t, []string{"data-001.bin", "data-002.bin"}, names)
	})

	t.Run("EmptyBlob", func(t *testing.T) {
		blob, err := store.Open(ctx, "data-002.bin")
		require.NoError(t, err)
		defer blob.Close()

		r, err := NewReader(ctx, blob)
		require.NoError(t, err)
		content, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Empty(t, content)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "data-001.bin"))
		require.NoError(t, store.Delete(ctx, "data-001.bin"))

		_, err := store.Open(ctx, "data-001.bin")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	testLifecycle(t, store)

	t.Run("NestedNames", func(t *testing.T) {
		writeBlob(t, store, "snapshots/a.annie", []byte("a"))
		_, err := os.Stat(filepath.Join(dir, "snapshots", "a.annie"))
		require.NoError(t, err)

		names, err := store.List(context.Background(), "snapshots/")
		require.NoError(t, err)
		assert.Equal(t, []string{"snapshots/a.annie"}, names)
	})

	t.Run("InvalidName", func(t *testing.T) {
		_, err := store.Create(context.Background(), "../escape")
		assert.Error(t, err)
		_, err = store.Open(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("MissingRoot", func(t *testing.T) {
		names, err := NewLocalStore(filepath.Join(dir, "missing")).List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestMemoryStore(t *testing.T) {
	testLifecycle(t, NewMemoryStore())
}

func TestReadRangeBoundaries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	writeBlob(t, store, "boundary.bin", []byte("0123456789"))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	// Read past end
	r, err := blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))

	// Offset past EOF
	_, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)

	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 8)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)
}
