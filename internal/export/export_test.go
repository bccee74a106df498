package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleSeries() *Series {
	return &Series{
		Times: []float64{0, 0.1, 0.2},
		Displacements: [][]float64{
			{1.0, -2.0},
			{0.5, -1.5},
			{0.25, -1.0},
		},
		Velocities: [][]float64{
			{0, 0},
			{-0.3, 0.7},
			{-0.6, 1.4},
		},
	}
}

func TestCSVLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, sampleSeries()); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}

	wantHeader := []string{"t", "x1", "x2", "v1", "v2"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Errorf("header column %d: expected %q, got %q", i, h, rows[0][i])
		}
	}
	if rows[1][1] != "1" || rows[1][2] != "-2" {
		t.Errorf("expected first displacements 1, -2, got %q, %q", rows[1][1], rows[1][2])
	}
	if rows[2][4] != "0.7" {
		t.Errorf("expected v2 at step 1 to be 0.7, got %q", rows[2][4])
	}
}

func TestJSONRoundTrip(t *testing.T) {
	src := sampleSeries()

	var buf bytes.Buffer
	if err := JSON(&buf, src); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var got Series
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Times) != 3 {
		t.Fatalf("expected 3 times, got %d", len(got.Times))
	}
	for i := range src.Times {
		if got.Times[i] != src.Times[i] {
			t.Errorf("time %d: expected %g, got %g", i, src.Times[i], got.Times[i])
		}
		for j := range src.Displacements[i] {
			if got.Displacements[i][j] != src.Displacements[i][j] {
				t.Errorf("x[%d][%d]: expected %g, got %g",
					i, j, src.Displacements[i][j], got.Displacements[i][j])
			}
		}
	}
}

func TestValidation(t *testing.T) {
	var buf bytes.Buffer

	empty := &Series{}
	if err := CSV(&buf, empty); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}

	ragged := sampleSeries()
	ragged.Velocities = ragged.Velocities[:2]
	if err := JSON(&buf, ragged); !errors.Is(err, ErrRaggedSeries) {
		t.Errorf("expected ErrRaggedSeries, got %v", err)
	}
}

func TestChartFormats(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"out.png", "out.svg"} {
		path := filepath.Join(dir, name)
		if err := Chart(path, sampleSeries()); err != nil {
			t.Fatalf("Chart(%s) error = %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("expected %s to have content", name)
		}
	}
}

func TestChartSVGMentionsBodies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.svg")

	if err := Chart(path, sampleSeries()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, label := range []string{"body 1", "body 2"} {
		if !strings.Contains(string(data), label) {
			t.Errorf("expected legend entry %q in SVG output", label)
		}
	}
}

func TestChartRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	if err := Chart(filepath.Join(dir, "out.bmp"), sampleSeries()); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestChartRejectsEmptySeries(t *testing.T) {
	dir := t.TempDir()
	if err := Chart(filepath.Join(dir, "out.png"), &Series{}); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}
