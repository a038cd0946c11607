// Package zlib compresses page bodies before they enter the page cache.
// The cache stores raw zlib streams at maximum compression.
package zlib

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compress deflates data at the highest compression level.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress inflates a zlib stream produced by Compress.
func Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
