// Package storage records force traces to per-run directories:
// metadata.json describing the configuration and forces.csv with one
// row per sampled tick.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/attractor/internal/config"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Ticks     int                `json:"ticks"`
	Published int                `json:"published"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Config    *config.Config     `json:"config,omitempty"`
}

// Row is one recorded sampling tick.
type Row struct {
	T         float64 // seconds since recording started
	Position  [3]float64
	Velocity  [3]float64
	Force     [3]float64
	Published bool
}

var csvHeader = []string{
	"time",
	"px", "py", "pz",
	"vx", "vy", "vz",
	"fx", "fy", "fz",
	"published",
}

func (s *Store) Save(cfg *config.Config, rows []Row, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("run_%s", uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	published := 0
	for _, r := range rows {
		if r.Published {
			published++
		}
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Ticks:     len(rows),
		Published: published,
		Metrics:   metrics,
		Config:    cfg,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "forces.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		rec := make([]string, 0, len(csvHeader))
		rec = append(rec, strconv.FormatFloat(r.T, 'f', 6, 64))
		for _, v := range [][3]float64{r.Position, r.Velocity, r.Force} {
			for _, c := range v {
				rec = append(rec, strconv.FormatFloat(c, 'f', 6, 64))
			}
		}
		rec = append(rec, strconv.FormatBool(r.Published))
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRows reads back the recorded trace of a run.
func (s *Store) LoadRows(runID string) ([]Row, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "forces.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Row{}, nil
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(csvHeader) {
			return nil, fmt.Errorf("malformed row in %s: %d fields", runID, len(rec))
		}
		vals := make([]float64, 10)
		for i := 0; i < 10; i++ {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		published, err := strconv.ParseBool(rec[10])
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			T:         vals[0],
			Position:  [3]float64{vals[1], vals[2], vals[3]},
			Velocity:  [3]float64{vals[4], vals[5], vals[6]},
			Force:     [3]float64{vals[7], vals[8], vals[9]},
			Published: published,
		})
	}
	return rows, nil
}
