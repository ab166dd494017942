// Package parquet writes query results to Parquet files, for handing store
// contents to external column-oriented tooling. Tags are flattened to their
// canonical "k1=v1,k2=v2" form so the schema stays flat.
package parquet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/pulsedb/pulse/internal/storage/types"
)

// Options configures the export writer.
type Options struct {
	// Compression algorithm.
	Compression CompressionType
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// DefaultOptions returns default export options.
func DefaultOptions() Options {
	return Options{
		Compression: CompressionZstd,
	}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none", "":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// PointRow represents a data point in Parquet format.
type PointRow struct {
	Timestamp int64   `parquet:"timestamp"`
	Metric    string  `parquet:"metric,zstd"`
	Value     float64 `parquet:"value"`
	Tags      string  `parquet:"tags,optional,zstd"`
}

// PointToRow converts a DataPoint to a PointRow.
func PointToRow(p types.DataPoint) PointRow {
	return PointRow{
		Timestamp: p.Timestamp(),
		Metric:    p.Metric(),
		Value:     p.Value(),
		Tags:      p.TagString(),
	}
}

// WriteFile writes points to a Parquet file at path, creating parent
// directories as needed.
func WriteFile(path string, points []types.DataPoint, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	writer := parquet.NewGenericWriter[PointRow](f,
		parquet.Compression(getCompression(opts.Compression)),
	)

	rows := make([]PointRow, len(points))
	for i, p := range points {
		rows[i] = PointToRow(p)
	}

	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			writer.Close()
			f.Close()
			return fmt.Errorf("write rows: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}

// ReadFile reads all point rows back from a Parquet file.
func ReadFile(path string) ([]PointRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[PointRow](f)
	defer reader.Close()

	rows := make([]PointRow, reader.NumRows())
	if len(rows) == 0 {
		return rows, nil
	}

	read := 0
	for read < len(rows) {
		n, err := reader.Read(rows[read:])
		read += n
		if err != nil {
			break
		}
	}
	return rows[:read], nil
}
