// Package datagen generates realistic sample data for exercising the store:
// multiple metrics with daily cycles, spikes and noise, tagged with a
// configurable number of hosts across regions and datacenters. Generation is
// seeded and fully deterministic.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pulsedb/pulse/internal/storage/types"
)

// Pattern selects the shape of a generated metric's values.
type Pattern int

const (
	// PatternDailyCycle follows a 24h sine wave with noise.
	PatternDailyCycle Pattern = iota
	// PatternStableSpikes stays near the low end with occasional spikes.
	PatternStableSpikes
	// PatternRandomSpikes is uniform noise with rare large outliers.
	PatternRandomSpikes
)

// Metric describes one generated metric.
type Metric struct {
	Name    string
	Min     float64
	Max     float64
	Pattern Pattern
}

// DefaultMetrics returns the standard set of generated metrics.
func DefaultMetrics() []Metric {
	return []Metric{
		{Name: "cpu.usage", Min: 0, Max: 100, Pattern: PatternDailyCycle},
		{Name: "memory.used", Min: 10, Max: 95, Pattern: PatternDailyCycle},
		{Name: "disk.io", Min: 0, Max: 250, Pattern: PatternStableSpikes},
		{Name: "request.latency", Min: 1, Max: 500, Pattern: PatternStableSpikes},
		{Name: "network.in", Min: 0, Max: 1000, Pattern: PatternRandomSpikes},
	}
}

var (
	regions     = []string{"us-east", "us-west", "eu-central"}
	datacenters = []string{"dc1", "dc2"}
)

// Options configures a Generator.
type Options struct {
	// Start and End bound the generated timestamps (ms, half-open).
	Start int64
	End   int64

	// Interval between consecutive points per series. Default: 60s.
	Interval time.Duration

	// Hosts is the number of simulated hosts. Default: 5.
	Hosts int

	// Metrics to generate. Default: DefaultMetrics().
	Metrics []Metric

	// Seed for the random source. The same options always generate the same
	// points.
	Seed int64
}

// Generator produces sample points.
type Generator struct {
	opts Options
	rng  *rand.Rand
}

// New creates a generator. Zero-valued options are defaulted; if End is not
// after Start, the range defaults to the 24 hours before now.
func New(opts Options) *Generator {
	if opts.Interval <= 0 {
		opts.Interval = 60 * time.Second
	}
	if opts.Hosts <= 0 {
		opts.Hosts = 5
	}
	if len(opts.Metrics) == 0 {
		opts.Metrics = DefaultMetrics()
	}
	if opts.End <= opts.Start {
		now := time.Now().UnixMilli()
		opts.Start = now - 24*time.Hour.Milliseconds()
		opts.End = now
	}
	return &Generator{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}
}

// Points generates the full sample set: for every metric, host, and interval
// step, one tagged point. Points are ordered by timestamp, then metric, then
// host.
func (g *Generator) Points() []types.DataPoint {
	step := g.opts.Interval.Milliseconds()
	var points []types.DataPoint

	for ts := g.opts.Start; ts < g.opts.End; ts += step {
		for _, m := range g.opts.Metrics {
			for h := 0; h < g.opts.Hosts; h++ {
				tags := map[string]string{
					"host":   fmt.Sprintf("host-%02d", h+1),
					"region": regions[h%len(regions)],
					"dc":     datacenters[h%len(datacenters)],
				}
				points = append(points, types.NewDataPoint(ts, m.Name, g.value(m, ts), tags))
			}
		}
	}
	return points
}

// value computes one sample for metric m at timestamp ts.
func (g *Generator) value(m Metric, ts int64) float64 {
	span := m.Max - m.Min

	var v float64
	switch m.Pattern {
	case PatternDailyCycle:
		// Position within the day, peaking mid-afternoon.
		dayMs := float64(ts % (24 * time.Hour.Milliseconds()))
		phase := dayMs / float64(24*time.Hour.Milliseconds())
		base := (math.Sin(2*math.Pi*(phase-0.25)) + 1) / 2
		v = m.Min + span*(0.15+0.7*base) + g.noise(span*0.05)
	case PatternStableSpikes:
		v = m.Min + span*0.1 + g.noise(span*0.05)
		if g.rng.Float64() < 0.02 {
			v = m.Min + span*(0.7+0.3*g.rng.Float64())
		}
	case PatternRandomSpikes:
		v = m.Min + span*0.3*g.rng.Float64()
		if g.rng.Float64() < 0.05 {
			v = m.Min + span*(0.8+0.2*g.rng.Float64())
		}
	default:
		v = m.Min + span*g.rng.Float64()
	}

	return clamp(v, m.Min, m.Max)
}

// noise returns a symmetric random perturbation of the given magnitude.
func (g *Generator) noise(magnitude float64) float64 {
	return (g.rng.Float64()*2 - 1) * magnitude
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
