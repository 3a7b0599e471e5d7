package handler

import (
	"compress/gzip"
	"io"
	"os"
)

// Compressor archives a retired log file and returns the path of the
// archive. Implementations own the fate of the source file; the
// bundled gzip compressor removes it after a successful archive.
// Compression failures are reported by the caller but never abort a
// rotation.
type Compressor interface {
	Compress(source string) (string, error)
}

// GzipCompressor archives retired files as <source>.gz and removes
// the source.
type GzipCompressor struct {
	// Level is the gzip compression level (default:
	// gzip.DefaultCompression).
	Level int
}

// NewGzipCompressor creates a gzip compressor at the default level.
func NewGzipCompressor() *GzipCompressor {
	return &GzipCompressor{Level: gzip.DefaultCompression}
}

// Compress implements Compressor.
func (c *GzipCompressor) Compress(source string) (string, error) {
	in, err := os.Open(source)
	if err != nil {
		return "", err
	}

	destination := source + ".gz"
	out, err := os.Create(destination)
	if err != nil {
		in.Close()
		return "", err
	}

	level := c.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	zw, err := gzip.NewWriterLevel(out, level)
	if err != nil {
		in.Close()
		out.Close()
		return "", err
	}

	_, err = io.Copy(zw, in)
	in.Close()
	if err != nil {
		zw.Close()
		out.Close()
		os.Remove(destination)
		return "", err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(destination)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	if err := os.Remove(source); err != nil {
		return "", err
	}
	return destination, nil
}
