package parquet

import (
	"path/filepath"
	"testing"

	"github.com/pulsedb/pulse/internal/storage/types"
)

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.parquet")

	points := []types.DataPoint{
		types.NewDataPoint(1000, "cpu", 45.2, map[string]string{"host": "a", "dc": "dc1"}),
		types.NewDataPoint(2000, "cpu", 46.1, map[string]string{"host": "b"}),
		types.NewDataPoint(3000, "cpu", 47.9, nil),
	}

	if err := WriteFile(path, points, DefaultOptions()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rows, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rows) != len(points) {
		t.Fatalf("read %d rows, want %d", len(rows), len(points))
	}

	if rows[0].Tags != "dc=dc1,host=a" {
		t.Errorf("tags flattened = %q, want dc=dc1,host=a", rows[0].Tags)
	}
	if rows[2].Tags != "" {
		t.Errorf("untagged point should have empty tags column, got %q", rows[2].Tags)
	}
	for i, p := range points {
		if rows[i].Timestamp != p.Timestamp() || rows[i].Metric != p.Metric() || rows[i].Value != p.Value() {
			t.Errorf("row %d mismatch: %+v vs %v", i, rows[i], p)
		}
	}
}

func TestWriteFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	if err := WriteFile(path, nil, Options{Compression: CompressionNone}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	rows, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestParseCompressionType(t *testing.T) {
	tests := []struct {
		in   string
		want CompressionType
	}{
		{"snappy", CompressionSnappy},
		{"zstd", CompressionZstd},
		{"lz4", CompressionLZ4},
		{"gzip", CompressionGzip},
		{"none", CompressionNone},
		{"", CompressionNone},
		{"bogus", CompressionZstd},
	}
	for _, tt := range tests {
		if got := ParseCompressionType(tt.in); got != tt.want {
			t.Errorf("ParseCompressionType(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
