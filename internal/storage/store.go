// Package storage persists simulation runs. Each run gets its own
// directory with metadata.json and the displacement/velocity series as
// CSV; a SQLite catalog indexes all runs for listing.
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

	"github.com/pavshv/mdof/internal/logging"
	"github.com/pavshv/mdof/internal/sim"
)

type Store struct {
	baseDir string
	catalog *catalog
}

// New opens (or creates) the data directory and its catalog database.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	cat, err := openCatalog(filepath.Join(baseDir, "catalog.db"))
	if err != nil {
		return nil, err
	}
	return &Store{baseDir: baseDir, catalog: cat}, nil
}

func (s *Store) Close() error {
	return s.catalog.close()
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	TMax        float64            `json:"tmax"`
	Steps       int                `json:"steps"`
	Bodies      int                `json:"bodies"`
	Integrator  string             `json:"integrator"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes the run payload and registers it in the catalog. The run id
// combines the scenario name with a short random suffix.
func (s *Store) Save(name string, cfg sim.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   time.Now().UTC(),
		Dt:          cfg.Dt,
		TMax:        cfg.TMax,
		Steps:       result.Steps,
		Bodies:      result.NumBodies(),
		Integrator:  result.Integrator,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}

	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), &meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, "displacements.csv"), "x", result.Times, result.Displacements); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, "velocities.csv"), "v", result.Times, result.Velocities); err != nil {
		return "", err
	}

	if err := s.catalog.insert(&meta); err != nil {
		return "", fmt.Errorf("storage: catalog insert: %w", err)
	}

	logging.Logger.Debug().Str("run", runID).Str("dir", runDir).Msg("run saved")
	return runID, nil
}

// List returns catalog entries, newest first. Per-run metric maps are not
// materialized here; Load reads the full metadata.
func (s *Store) List() ([]RunMetadata, error) {
	return s.catalog.list()
}

// Load reads the full metadata of one run.
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

// LoadSeries reads the stored state history of a run.
func (s *Store) LoadSeries(runID string) (times []float64, disp, vel [][]float64, err error) {
	times, disp, err = readSeries(filepath.Join(s.baseDir, runID, "displacements.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	_, vel, err = readSeries(filepath.Join(s.baseDir, runID, "velocities.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	return times, disp, vel, nil
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// writeSeries stores one [step][body] series. Column names are 1-based to
// match body ids.
func writeSeries(path, prefix string, times []float64, series [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if len(series) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range series[0] {
		header = append(header, fmt.Sprintf("%s%d", prefix, i+1))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, row := range series {
		record := make([]string, 0, len(row)+1)
		record = append(record, strconv.FormatFloat(times[i], 'g', -1, 64))
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

func readSeries(path string) ([]float64, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, [][]float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	series := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: bad time value %q: %w", record[0], err)
		}
		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: bad series value %q: %w", field, err)
			}
			row = append(row, v)
		}
		times = append(times, t)
		series = append(series, row)
	}
	return times, series, nil
}
