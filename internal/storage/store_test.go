package storage

import (
	"testing"
	"time"

	"github.com/san-kum/attractor/internal/config"
	"github.com/san-kum/attractor/internal/field"
)

func sampleRows() []Row {
	return []Row{
		{T: 0, Position: [3]float64{1, 0, 0}, Force: [3]float64{-2000, 0, 0}, Published: true},
		{T: 0.0005, Position: [3]float64{0.9, 0, 0}, Velocity: [3]float64{-0.2, 0, 0}, Force: [3]float64{-1798, 0, 0}, Published: true},
		{T: 0.001, Position: [3]float64{0.8, 0, 0}, Force: [3]float64{-1600, 0, 0}, Published: false},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	cfg := config.GetPreset("line-z")
	runID, err := store.Save(cfg, sampleRows(), map[string]float64{"peak_force": 2000})
	if err != nil {
		t.Fatal(err)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Ticks != 3 {
		t.Errorf("expected 3 ticks, got %d", meta.Ticks)
	}
	if meta.Published != 2 {
		t.Errorf("expected 2 published, got %d", meta.Published)
	}
	if meta.Config == nil || meta.Config.Stiffness != 2000 {
		t.Error("config not preserved in metadata")
	}
	if meta.Metrics["peak_force"] != 2000 {
		t.Errorf("metrics not preserved: %v", meta.Metrics)
	}

	rows, err := store.LoadRows(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Force[0] != -2000 {
		t.Errorf("force not preserved: %v", rows[0].Force)
	}
	if rows[1].Velocity[0] != -0.2 {
		t.Errorf("velocity not preserved: %v", rows[1].Velocity)
	}
	if rows[2].Published {
		t.Error("published flag not preserved")
	}
}

func TestList(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if _, err := store.Save(config.DefaultConfig(), sampleRows(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(config.DefaultConfig(), nil, nil); err != nil {
		t.Fatal(err)
	}

	runs, err = store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestRecorder_RingBuffer(t *testing.T) {
	rec := NewRecorder(2)
	start := time.Now()

	for i := 0; i < 4; i++ {
		rec.OnTick(start.Add(time.Duration(i)*time.Millisecond),
			field.KinematicState{Position: field.Vec3{float64(i), 0, 0}},
			field.Vec3{}, true)
	}

	rows := rec.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected ring of 2 rows, got %d", len(rows))
	}
	// Oldest rows discarded.
	if rows[0].Position[0] != 2 || rows[1].Position[0] != 3 {
		t.Errorf("ring kept wrong rows: %v", rows)
	}
}

func TestRecorder_OrderAfterManyWraps(t *testing.T) {
	// Overwriting wraps around the buffer; Rows must still come
	// back oldest first, however many times the ring cycled.
	rec := NewRecorder(3)
	start := time.Now()

	for i := 0; i < 1000; i++ {
		rec.OnTick(start.Add(time.Duration(i)*time.Millisecond),
			field.KinematicState{Position: field.Vec3{float64(i), 0, 0}},
			field.Vec3{}, true)
	}

	rows := rec.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []float64{997, 998, 999} {
		if rows[i].Position[0] != want {
			t.Errorf("rows[%d] = %v, want position x %v", i, rows[i].Position, want)
		}
		if i > 0 && rows[i].T <= rows[i-1].T {
			t.Errorf("rows out of tick order at %d: %f <= %f", i, rows[i].T, rows[i-1].T)
		}
	}
}
