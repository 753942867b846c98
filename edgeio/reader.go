// Package edgeio reads edge lists in the formats the driver consumes: space
// or comma separated text, the packed binary .elog format, and gzip or lz4
// compressed variants of any of them.
package edgeio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/pcsrgo/blobstore"
	"github.com/hupe1980/pcsrgo/internal/mmap"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// Edge is one (src, dst) pair of an input edge list.
type Edge struct {
	Src uint32
	Dst uint32
}

// elogRecordSize is the packed record size of the binary format:
// two native-endian uint32 values.
const elogRecordSize = 8

// ReadEdgeList loads the edge list at path. The format is chosen by suffix:
// .elog is the packed binary format (memory mapped), .gz and .lz4 wrap any
// inner format, and everything else is text with comma detection on the
// first line.
func ReadEdgeList(path string) ([]Edge, error) {
	switch {
	case strings.HasSuffix(path, ".elog"):
		return readBinaryFile(path)
	default:
		m, err := mmap.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = m.Close() }()
		return decode(bytesReader(m.Bytes()), path)
	}
}

// ReadFrom loads an edge list from r; name selects the format by suffix the
// same way ReadEdgeList does.
func ReadFrom(r io.Reader, name string) ([]Edge, error) {
	return decode(r, name)
}

// ReadFromStore fetches the named blob from store and decodes it.
func ReadFromStore(ctx context.Context, store blobstore.Store, name string) ([]Edge, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return decode(bytesReader(data), name)
	}
	return decode(io.NewSectionReader(blob, 0, blob.Size()), name)
}

func decode(r io.Reader, name string) ([]Edge, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", name, err)
		}
		defer func() { _ = zr.Close() }()
		return decode(zr, strings.TrimSuffix(name, ".gz"))
	case strings.HasSuffix(name, ".lz4"):
		return decode(lz4.NewReader(r), strings.TrimSuffix(name, ".lz4"))
	case strings.HasSuffix(name, ".elog"):
		return readBinary(r)
	default:
		return readText(r)
	}
}

// readBinaryFile maps the .elog file and parses it without copying.
func readBinaryFile(path string) ([]Edge, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = m.Close() }()
	return parseBinary(m.Bytes()), nil
}

func readBinary(r io.Reader) ([]Edge, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseBinary(data), nil
}

// parseBinary decodes packed {uint32 src; uint32 dst} records in native
// endianness. A trailing partial record is ignored, matching the record
// count = size/8 contract.
func parseBinary(data []byte) []Edge {
	count := len(data) / elogRecordSize
	edges := make([]Edge, count)
	for i := 0; i < count; i++ {
		off := i * elogRecordSize
		edges[i] = Edge{
			Src: binary.NativeEndian.Uint32(data[off:]),
			Dst: binary.NativeEndian.Uint32(data[off+4:]),
		}
	}
	return edges
}

// readText parses one edge per line. The separator is detected on the first
// non-empty line: a comma if present, whitespace otherwise.
func readText(r io.Reader) ([]Edge, error) {
	var (
		edges []Edge
		comma bool
		first = true
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if first {
			comma = strings.ContainsRune(line, ',')
			first = false
		}

		var srcField, dstField string
		if comma {
			var ok bool
			srcField, dstField, ok = strings.Cut(line, ",")
			if !ok {
				return nil, fmt.Errorf("line %d: expected \"src,dst\", got %q", lineNo, line)
			}
		} else {
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: expected \"src dst\", got %q", lineNo, line)
			}
			srcField, dstField = fields[0], fields[1]
		}

		src, err := strconv.ParseUint(strings.TrimSpace(srcField), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad src: %w", lineNo, err)
		}
		dst, err := strconv.ParseUint(strings.TrimSpace(dstField), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad dst: %w", lineNo, err)
		}
		edges = append(edges, Edge{Src: uint32(src), Dst: uint32(dst)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return edges, nil
}

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
