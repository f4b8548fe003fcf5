package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	m := newTimingMetric("test")
	for _, d := range []time.Duration{time.Millisecond, 3 * time.Millisecond, 2 * time.Millisecond} {
		m.Record(d)
	}

	st := m.Stats()
	if st.Count != 3 {
		t.Fatalf("count = %d, want 3", st.Count)
	}
	if st.MaxMs != 3 || st.MinMs != 1 {
		t.Fatalf("min/max = %v/%v", st.MinMs, st.MaxMs)
	}
	if st.P50Ms != 2 {
		t.Fatalf("p50 = %v, want 2", st.P50Ms)
	}
	if st.P95Ms != 3 {
		t.Fatalf("p95 = %v, want 3", st.P95Ms)
	}

	m.Reset()
	if m.Count() != 0 || m.Stats().P50Ms != 0 {
		t.Fatalf("reset did not clear metric")
	}
}

func TestSampleRingIsBounded(t *testing.T) {
	m := newTimingMetric("ring")
	for i := 0; i < sampleWindow+10; i++ {
		m.Record(time.Microsecond)
	}
	if len(m.samples) != sampleWindow {
		t.Fatalf("samples = %d, want %d", len(m.samples), sampleWindow)
	}
	if m.Count() != int64(sampleWindow+10) {
		t.Fatalf("count should include every record")
	}
}

func TestForAction(t *testing.T) {
	if ForAction("MOVE_CARD") != DispatchMove {
		t.Fatalf("MOVE_CARD should map to DispatchMove")
	}
	if ForAction("SOMETHING_NEW") != DispatchUnknown {
		t.Fatalf("unknown kinds should map to DispatchUnknown")
	}
}

func TestDisabledTimerIsNoop(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	Timer(m)()
	m.Record(time.Second)
	if m.Count() != 0 {
		t.Fatalf("disabled metrics should not record")
	}
}

func TestWriteSummary(t *testing.T) {
	ResetAll()
	defer ResetAll()

	var buf bytes.Buffer
	if err := WriteSummary(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no metrics") {
		t.Fatalf("expected empty summary, got %q", buf.String())
	}

	DispatchAdd.Record(2 * time.Millisecond)
	buf.Reset()
	if err := WriteSummary(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "dispatch_add_task") {
		t.Fatalf("summary missing metric: %q", buf.String())
	}
}
