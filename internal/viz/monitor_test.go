package viz

import (
	"strings"
	"testing"
	"time"

	"github.com/san-kum/attractor/internal/field"
	"github.com/san-kum/attractor/internal/storage"
)

func TestMonitorHistoryBounded(t *testing.T) {
	m := NewMonitor(3)
	for i := 0; i < 5; i++ {
		force := field.Vec3{float64(i), 0, 0}
		m.OnTick(time.Now(), field.KinematicState{}, force, i%2 == 0)
	}

	f := m.snapshot()
	if len(f.history) != 3 {
		t.Fatalf("history length = %d, want 3", len(f.history))
	}
	// Oldest samples are evicted first.
	want := []float64{2, 3, 4}
	for i, v := range want {
		if f.history[i] != v {
			t.Errorf("history[%d] = %f, want %f", i, f.history[i], v)
		}
	}
	if f.ticks != 5 {
		t.Errorf("ticks = %d, want 5", f.ticks)
	}
	if f.published != 3 {
		t.Errorf("published = %d, want 3", f.published)
	}
}

func TestMonitorSnapshotIsCopy(t *testing.T) {
	m := NewMonitor(8)
	m.OnTick(time.Now(), field.KinematicState{}, field.Vec3{1, 0, 0}, true)

	f := m.snapshot()
	f.history[0] = -1

	if got := m.snapshot().history[0]; got != 1 {
		t.Fatalf("mutating a snapshot leaked into the monitor: history[0] = %f", got)
	}
}

func TestPlotTrace(t *testing.T) {
	rows := []storage.Row{
		{T: 0.0, Force: [3]float64{3, 4, 0}},
		{T: 0.0005, Force: [3]float64{0, 0, 0}},
		{T: 0.001, Force: [3]float64{0, 0, 12}},
	}
	out := PlotTrace(rows, 6)
	if !strings.Contains(out, "|force| (N) per tick") {
		t.Errorf("missing caption in plot output:\n%s", out)
	}
	if !strings.Contains(out, "3 ticks over 0.001 s") {
		t.Errorf("missing sample summary in plot output:\n%s", out)
	}

	if got := PlotTrace(rows[:1], 6); got != "not enough samples to plot" {
		t.Errorf("single sample: got %q", got)
	}
}

func TestPlotComponent(t *testing.T) {
	rows := []storage.Row{
		{T: 0, Force: [3]float64{1, 2, 3}},
		{T: 1, Force: [3]float64{4, 5, 6}},
	}
	if got := PlotComponent(rows, 3, 4); got != "no such axis 3" {
		t.Errorf("axis bound check: got %q", got)
	}
	out := PlotComponent(rows, 1, 4)
	if !strings.Contains(out, "fy (N) per tick") {
		t.Errorf("missing axis caption:\n%s", out)
	}
}
