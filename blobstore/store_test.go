package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put("graphs/core.el", []byte("0 1\n1 2\n"))
	store.Put("graphs/updates.el", []byte("2 3\n"))
	store.Put("other.el", []byte("x"))

	t.Run("Open", func(t *testing.T) {
		blob, err := store.Open(ctx, "graphs/core.el")
		require.NoError(t, err)
		defer blob.Close()

		assert.Equal(t, int64(8), blob.Size())
		buf := make([]byte, 4)
		n, err := blob.ReadAt(buf, 4)
		require.NoError(t, err)
		assert.Equal(t, "1 2\n", string(buf[:n]))
	})

	t.Run("OpenMissing", func(t *testing.T) {
		_, err := store.Open(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx, "graphs/")
		require.NoError(t, err)
		assert.Equal(t, []string{"graphs/core.el", "graphs/updates.el"}, names)
	})

	t.Run("Isolation", func(t *testing.T) {
		blob, err := store.Open(ctx, "other.el")
		require.NoError(t, err)
		defer blob.Close()
		store.Put("other.el", []byte("y"))

		buf := make([]byte, 1)
		_, err = blob.ReadAt(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, byte('x'), buf[0])
	})
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core.el"), []byte("0 1\n"), 0o644))

	store := NewLocalStore(dir)

	blob, err := store.Open(ctx, "core.el")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(4), blob.Size())
	data, err := blob.(Mappable).Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("0 1\n"), data)

	names, err := store.List(ctx, "core")
	require.NoError(t, err)
	assert.Equal(t, []string{"core.el"}, names)

	_, err = store.Open(ctx, "missing.el")
	assert.Error(t, err)
}
