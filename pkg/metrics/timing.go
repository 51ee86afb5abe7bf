// Package metrics records timing for the hot paths of casedash: loading,
// filtering, rendering and exporting.
//
// Collection is enabled by default and can be disabled with CASEDASH_METRICS=0.
//
//	func Apply(...) {
//	    defer metrics.Timer(metrics.Filter)()
//	    ...
//	}
package metrics

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("CASEDASH_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric accumulates durations for one named operation. Safe for
// concurrent use.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for {
		old := m.max.Load()
		if ns <= old || m.max.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of recorded measurements.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats returns a snapshot of the metric.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	total := m.total.Load()
	var avg int64
	if count > 0 {
		avg = total / count
	}
	return TimingStats{
		Name:  m.name,
		Count: count,
		Total: time.Duration(total),
		Avg:   time.Duration(avg),
		Max:   time.Duration(m.max.Load()),
	}
}

// Reset clears all recorded measurements.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
}

// TimingStats is a point-in-time view of a TimingMetric.
type TimingStats struct {
	Name  string
	Count int64
	Total time.Duration
	Avg   time.Duration
	Max   time.Duration
}

// Timer returns a function that records the elapsed time when called.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// Timing metrics for each pipeline stage.
var (
	Load   = newTimingMetric("load")
	Filter = newTimingMetric("filter")
	Render = newTimingMetric("render")
	Export = newTimingMetric("export")
)

// All returns every registered metric.
func All() []*TimingMetric {
	return []*TimingMetric{Load, Filter, Render, Export}
}

// ResetAll resets every metric.
func ResetAll() {
	for _, m := range All() {
		m.Reset()
	}
}

// WriteSummary prints one line per metric that has data.
func WriteSummary(w io.Writer) error {
	for _, m := range All() {
		s := m.Stats()
		if s.Count == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-8s n=%-6d avg=%-12v max=%-12v total=%v\n",
			s.Name, s.Count, s.Avg, s.Max, s.Total); err != nil {
			return err
		}
	}
	return nil
}
