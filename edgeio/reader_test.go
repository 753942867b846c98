package edgeio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/pcsrgo/blobstore"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []Edge{{0, 1}, {0, 2}, {1, 2}, {2, 3}, {3, 0}}

func textSpace(edges []Edge) []byte {
	var buf bytes.Buffer
	for _, e := range edges {
		fmt.Fprintf(&buf, "%d %d\n", e.Src, e.Dst)
	}
	return buf.Bytes()
}

func textComma(edges []Edge) []byte {
	var buf bytes.Buffer
	for _, e := range edges {
		fmt.Fprintf(&buf, "%d,%d\n", e.Src, e.Dst)
	}
	return buf.Bytes()
}

func packedBinary(edges []Edge) []byte {
	buf := make([]byte, len(edges)*elogRecordSize)
	for i, e := range edges {
		binary.NativeEndian.PutUint32(buf[i*elogRecordSize:], e.Src)
		binary.NativeEndian.PutUint32(buf[i*elogRecordSize+4:], e.Dst)
	}
	return buf
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadEdgeList(t *testing.T) {
	t.Run("SpaceSeparated", func(t *testing.T) {
		path := writeFile(t, "core.el", textSpace(sample))
		edges, err := ReadEdgeList(path)
		require.NoError(t, err)
		assert.Equal(t, sample, edges)
	})

	t.Run("CommaSeparated", func(t *testing.T) {
		path := writeFile(t, "core.csv", textComma(sample))
		edges, err := ReadEdgeList(path)
		require.NoError(t, err)
		assert.Equal(t, sample, edges)
	})

	t.Run("Binary", func(t *testing.T) {
		path := writeFile(t, "core.elog", packedBinary(sample))
		edges, err := ReadEdgeList(path)
		require.NoError(t, err)
		assert.Equal(t, sample, edges)
	})

	t.Run("BinaryIgnoresTrailingPartial", func(t *testing.T) {
		data := append(packedBinary(sample), 0xde, 0xad)
		path := writeFile(t, "core.elog", data)
		edges, err := ReadEdgeList(path)
		require.NoError(t, err)
		assert.Equal(t, sample, edges)
	})

	t.Run("Gzip", func(t *testing.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write(textSpace(sample))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		path := writeFile(t, "core.el.gz", buf.Bytes())
		edges, err := ReadEdgeList(path)
		require.NoError(t, err)
		assert.Equal(t, sample, edges)
	})

	t.Run("LZ4Binary", func(t *testing.T) {
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		_, err := zw.Write(packedBinary(sample))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		path := writeFile(t, "core.elog.lz4", buf.Bytes())
		edges, err := ReadEdgeList(path)
		require.NoError(t, err)
		assert.Equal(t, sample, edges)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := ReadEdgeList(filepath.Join(t.TempDir(), "nope.el"))
		require.Error(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		path := writeFile(t, "bad.el", []byte("0 1\nnot an edge\n"))
		_, err := ReadEdgeList(path)
		require.Error(t, err)
	})
}

func TestReadFromStore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	store.Put("graphs/core.csv", textComma(sample))
	store.Put("graphs/updates.elog", packedBinary(sample))

	edges, err := ReadFromStore(ctx, store, "graphs/core.csv")
	require.NoError(t, err)
	assert.Equal(t, sample, edges)

	edges, err = ReadFromStore(ctx, store, "graphs/updates.elog")
	require.NoError(t, err)
	assert.Equal(t, sample, edges)

	_, err = ReadFromStore(ctx, store, "graphs/missing.el")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
