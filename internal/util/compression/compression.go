// Package compression wraps the codecs used for stored editor snapshots.
package compression

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// MaxDecompressed caps the size of a decompressed snapshot.
const MaxDecompressed = 16 << 20

var (
	ErrUnknownFormat = errors.New("unknown compression format")
	ErrTooLarge      = errors.New("decompressed snapshot is too large")
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// ByName returns the codec configured for autosaves.
func ByName(name string) (Compressor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zstd":
		return ZstdCompressor{}, nil
	case "gzip":
		return GzipCompressor{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Detect picks the codec a payload was written with from its magic bytes.
func Detect(data []byte) (Compressor, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return ZstdCompressor{}, nil
	case bytes.HasPrefix(data, gzipMagic):
		return GzipCompressor{}, nil
	}
	return nil, ErrUnknownFormat
}

// Decompress reads data written by any codec of this package, so snapshots
// stored before the configured codec changed stay readable.
func Decompress(data []byte) ([]byte, error) {
	c, err := Detect(data)
	if err != nil {
		return nil, err
	}
	return c.Decompress(data)
}
