//go:build windows

package mmap

import (
	"io"
	"os"
)

// Windows has no unix.Mmap; fall back to reading the file into memory.
func mapFile(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func unmapFile([]byte) error { return nil }
