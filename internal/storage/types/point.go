package types

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// DataPoint is a single measurement: a metric name, a millisecond timestamp,
// a float64 value, and an optional set of string tags.
//
// A DataPoint is immutable once constructed. Tags are copied on construction
// and only ever exposed as copies, so no caller can alias or mutate stored
// state through a point it inserted or received from a query.
type DataPoint struct {
	timestamp int64
	metric    string
	value     float64
	tags      map[string]string
}

// NewDataPoint constructs a point. The tags map is defensively copied;
// a nil map is treated as empty. The timestamp may be any int64, including
// zero and negative values, and the value is stored unvalidated (NaN and
// infinities pass through).
func NewDataPoint(timestamp int64, metric string, value float64, tags map[string]string) DataPoint {
	var copied map[string]string
	if len(tags) > 0 {
		copied = make(map[string]string, len(tags))
		for k, v := range tags {
			copied[k] = v
		}
	}
	return DataPoint{
		timestamp: timestamp,
		metric:    metric,
		value:     value,
		tags:      copied,
	}
}

// Timestamp returns the point's Unix timestamp in milliseconds.
func (p DataPoint) Timestamp() int64 { return p.timestamp }

// Time returns the timestamp as a time.Time.
func (p DataPoint) Time() time.Time { return time.UnixMilli(p.timestamp) }

// Metric returns the metric name.
func (p DataPoint) Metric() string { return p.metric }

// Value returns the measured value.
func (p DataPoint) Value() float64 { return p.value }

// Tags returns a copy of the point's tags. The returned map is owned by the
// caller; mutating it does not affect the point.
func (p DataPoint) Tags() map[string]string {
	out := make(map[string]string, len(p.tags))
	for k, v := range p.tags {
		out[k] = v
	}
	return out
}

// Tag returns the value for a single tag key.
func (p DataPoint) Tag(key string) (string, bool) {
	v, ok := p.tags[key]
	return v, ok
}

// NumTags returns the number of tags on the point.
func (p DataPoint) NumTags() int { return len(p.tags) }

// MatchesTags reports whether the point's tags contain every (key, value)
// pair in filters with exactly the given value. A nil or empty filter set
// matches every point; a missing key never matches.
func (p DataPoint) MatchesTags(filters map[string]string) bool {
	for k, want := range filters {
		got, ok := p.tags[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// TagString returns a canonical string representation of the tags, formatted
// as "k1=v1,k2=v2" with keys sorted alphabetically. Points with no tags
// return the empty string.
func (p DataPoint) TagString() string {
	if len(p.tags) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.tags))
	for k, v := range p.tags {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// String returns a human-readable representation of the point.
func (p DataPoint) String() string {
	if len(p.tags) == 0 {
		return fmt.Sprintf("%s %g @%d", p.metric, p.value, p.timestamp)
	}
	return fmt.Sprintf("%s{%s} %g @%d", p.metric, p.TagString(), p.value, p.timestamp)
}

// Equal reports whether two points carry identical data. Values are compared
// bitwise so that NaN-valued points compare equal to themselves.
func (p DataPoint) Equal(other DataPoint) bool {
	if p.timestamp != other.timestamp || p.metric != other.metric {
		return false
	}
	if math.Float64bits(p.value) != math.Float64bits(other.value) {
		return false
	}
	if len(p.tags) != len(other.tags) {
		return false
	}
	for k, v := range p.tags {
		if other.tags[k] != v {
			return false
		}
	}
	return true
}
