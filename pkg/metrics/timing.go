// Package metrics times the hot paths of laneboard: one metric per action
// kind plus script decoding, exports and UI renders. Set LANEBOARD_METRICS=0
// to turn collection off.
//
//	defer metrics.Timer(metrics.ForAction(kind))()
package metrics

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/stat"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("LANEBOARD_METRICS") != "0")
}

// sampleWindow bounds the per-metric ring used for percentiles.
const sampleWindow = 512

// Enabled reports whether Record and Timer collect anything.
func Enabled() bool { return enabled.Load() }

// SetEnabled switches collection on or off for the whole process.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric accumulates durations for one named operation. Count and
// total are lock-free; extremes and the sample ring share a mutex.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64

	mu       sync.Mutex
	lo, hi   time.Duration
	samples  []float64 // milliseconds, oldest overwritten first
	ringHead int
}

var registry []*TimingMetric

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

func register(name string) *TimingMetric {
	m := newTimingMetric(name)
	registry = append(registry, m)
	return m
}

// Record adds d to the metric.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	m.count.Add(1)
	m.total.Add(int64(d))

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lo == 0 || d < m.lo {
		m.lo = d
	}
	m.hi = max(m.hi, d)

	ms := float64(d) / float64(time.Millisecond)
	if len(m.samples) < sampleWindow {
		m.samples = append(m.samples, ms)
		return
	}
	m.samples[m.ringHead] = ms
	m.ringHead = (m.ringHead + 1) % sampleWindow
}

func (m *TimingMetric) Name() string { return m.name }

func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats snapshots the metric. Percentiles cover the most recent
// sampleWindow records only.
func (m *TimingMetric) Stats() TimingStats {
	n := m.count.Load()
	total := time.Duration(m.total.Load())

	m.mu.Lock()
	lo, hi := m.lo, m.hi
	window := slices.Clone(m.samples)
	m.mu.Unlock()

	st := TimingStats{
		Name:    m.name,
		Count:   n,
		TotalMs: toMs(total),
		MaxMs:   toMs(hi),
		MinMs:   toMs(lo),
	}
	if n > 0 {
		st.AvgMs = toMs(total / time.Duration(n))
	}
	if len(window) > 0 {
		slices.Sort(window)
		st.P50Ms = stat.Quantile(0.50, stat.Empirical, window, nil)
		st.P95Ms = stat.Quantile(0.95, stat.Empirical, window, nil)
		st.StdDevMs = stat.StdDev(window, nil)
	}
	return st
}

func toMs(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// Reset forgets every recorded duration.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.mu.Lock()
	m.lo, m.hi = 0, 0
	m.samples, m.ringHead = nil, 0
	m.mu.Unlock()
}

// TimingStats is a point-in-time view of a TimingMetric.
type TimingStats struct {
	Name     string  `json:"name"`
	Count    int64   `json:"count"`
	TotalMs  float64 `json:"total_ms"`
	AvgMs    float64 `json:"avg_ms"`
	MaxMs    float64 `json:"max_ms"`
	MinMs    float64 `json:"min_ms,omitempty"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	StdDevMs float64 `json:"stddev_ms"`
}

// Timer starts timing m; call the result to record the elapsed time.
//
//	defer metrics.Timer(metrics.UIRender)()
func Timer(m *TimingMetric) func() {
	if m == nil || !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

var (
	DispatchAdd     = register("dispatch_add_task")
	DispatchMove    = register("dispatch_move_card")
	DispatchDelete  = register("dispatch_delete_task")
	DispatchEdit    = register("dispatch_edit_card")
	DispatchUnknown = register("dispatch_unknown")
	ScriptDecode    = register("script_decode")
	SnapshotExport  = register("snapshot_export")
	UIRender        = register("ui_render")
)

// ForAction maps a wire action type to its dispatch metric.
func ForAction(kind string) *TimingMetric {
	switch kind {
	case "ADD_TASK":
		return DispatchAdd
	case "MOVE_CARD":
		return DispatchMove
	case "DELETE_TASK":
		return DispatchDelete
	case "EDIT_CARD":
		return DispatchEdit
	default:
		return DispatchUnknown
	}
}

// AllTimingMetrics lists the registered metrics in registration order.
func AllTimingMetrics() []*TimingMetric {
	return slices.Clone(registry)
}

func ResetAll() {
	for _, m := range registry {
		m.Reset()
	}
}

// AllTimingStats returns stats for every metric that has data.
func AllTimingStats() []TimingStats {
	var out []TimingStats
	for _, m := range registry {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}

// WriteSummary prints a fixed-width table of AllTimingStats to w.
func WriteSummary(w io.Writer) error {
	stats := AllTimingStats()
	if len(stats) == 0 {
		_, err := fmt.Fprintln(w, "no metrics recorded")
		return err
	}
	if _, err := fmt.Fprintf(w, "%-22s %7s %9s %9s %9s %9s\n", "metric", "count", "avg_ms", "p50_ms", "p95_ms", "max_ms"); err != nil {
		return err
	}
	for _, s := range stats {
		if _, err := fmt.Fprintf(w, "%-22s %7d %9.3f %9.3f %9.3f %9.3f\n", s.Name, s.Count, s.AvgMs, s.P50Ms, s.P95Ms, s.MaxMs); err != nil {
			return err
		}
	}
	return nil
}
