package wal

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pulsedb/pulse/internal/storage/types"
)

// Log record format: one JSON object per line carrying exactly the data
// model's fields:
//
//	{"timestamp":1700000000000,"metric":"cpu.usage","value":42.5,"tags":{"host":"web-1"}}
//
// Tags are always present, as an empty object when the point has none.
// Values that JSON cannot represent as numbers (NaN, ±Inf) are encoded as
// the strings "NaN", "+Inf" and "-Inf" so every point round-trips.

// record is the persisted form of a DataPoint.
type record struct {
	Timestamp int64             `json:"timestamp"`
	Metric    string            `json:"metric"`
	Value     recordValue       `json:"value"`
	Tags      map[string]string `json:"tags"`
}

// recordValue is a float64 that survives JSON encoding for non-finite values.
type recordValue float64

func (v recordValue) MarshalJSON() ([]byte, error) {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(f)
}

func (v *recordValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN":
			*v = recordValue(math.NaN())
		case "+Inf", "Inf", "Infinity":
			*v = recordValue(math.Inf(1))
		case "-Inf", "-Infinity":
			*v = recordValue(math.Inf(-1))
		default:
			return fmt.Errorf("invalid value %q", s)
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = recordValue(f)
	return nil
}

// encodeRecord serializes a point to a single log line, without the trailing
// newline.
func encodeRecord(p types.DataPoint) ([]byte, error) {
	tags := p.Tags()
	if tags == nil {
		tags = map[string]string{}
	}
	return json.Marshal(record{
		Timestamp: p.Timestamp(),
		Metric:    p.Metric(),
		Value:     recordValue(p.Value()),
		Tags:      tags,
	})
}

// EncodeLine serializes a point in the log's line format, without the
// trailing newline. Sample-data files use the same format as the log itself.
func EncodeLine(p types.DataPoint) ([]byte, error) {
	return encodeRecord(p)
}

// DecodeLine parses one line in the log's record format.
func DecodeLine(line []byte) (types.DataPoint, error) {
	return decodeRecord(line)
}

// decodeRecord parses a single log line back into a point. Lines that do not
// carry a non-empty metric name are rejected.
func decodeRecord(line []byte) (types.DataPoint, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return types.DataPoint{}, fmt.Errorf("parse record: %w", err)
	}
	if rec.Metric == "" {
		return types.DataPoint{}, fmt.Errorf("record has empty metric")
	}
	return types.NewDataPoint(rec.Timestamp, rec.Metric, float64(rec.Value), rec.Tags), nil
}
