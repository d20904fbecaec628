package compression

import (
	"bytes"
	"fmt"
	"io"

	gzip "github.com/klauspost/pgzip"
)

// Compressor defines the contract for data compression
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// GzipCompressor compresses with gzip, spreading large inputs over
// several goroutines. Output is plain gzip and readable by any decoder.
type GzipCompressor struct {
	level int
}

// NewGzipCompressor returns a compressor at gzip.BestSpeed, which is
// usually sufficient for data that gets encrypted right after.
func NewGzipCompressor() *GzipCompressor {
	return &GzipCompressor{level: gzip.BestSpeed}
}

// NewGzipCompressorLevel returns a compressor at the given gzip level.
func NewGzipCompressorLevel(level int) (*GzipCompressor, error) {
	if level < gzip.DefaultCompression || level > gzip.BestCompression {
		return nil, fmt.Errorf("invalid gzip level %d", level)
	}
	return &GzipCompressor{level: level}, nil
}

func (g *GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, err
	}

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (g *GzipCompressor) Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// NopCompressor passes data through unchanged, for inputs known to be
// incompressible.
type NopCompressor struct{}

func (NopCompressor) Compress(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

func (NopCompressor) Decompress(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

// ByName returns the compressor registered under name ("gzip" or "none").
func ByName(name string) (Compressor, error) {
	switch name {
	case "", "gzip":
		return NewGzipCompressor(), nil
	case "none":
		return NopCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}
