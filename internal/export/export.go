// Package export turns stored run series into portable formats: CSV and
// JSON streams for other tools, line charts for people.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var (
	ErrNoData       = errors.New("export: no samples to export")
	ErrRaggedSeries = errors.New("export: series lengths disagree")
)

// Series bundles the sampled history of one run.
type Series struct {
	Times         []float64   `json:"times"`
	Displacements [][]float64 `json:"displacements"`
	Velocities    [][]float64 `json:"velocities"`
}

func (s *Series) validate() error {
	if len(s.Times) == 0 {
		return ErrNoData
	}
	if len(s.Displacements) != len(s.Times) || len(s.Velocities) != len(s.Times) {
		return ErrRaggedSeries
	}
	return nil
}

func (s *Series) bodies() int {
	return len(s.Displacements[0])
}

// CSV writes one row per time step: t, x1..xN, v1..vN. Values use the
// shortest exact decimal form so a round trip loses nothing.
func CSV(w io.Writer, s *Series) error {
	if err := s.validate(); err != nil {
		return err
	}
	n := s.bodies()

	cw := csv.NewWriter(w)
	header := []string{"t"}
	for j := 0; j < n; j++ {
		header = append(header, fmt.Sprintf("x%d", j+1))
	}
	for j := 0; j < n; j++ {
		header = append(header, fmt.Sprintf("v%d", j+1))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, 1+2*n)
	for i, t := range s.Times {
		row = row[:0]
		row = append(row, strconv.FormatFloat(t, 'g', -1, 64))
		for _, x := range s.Displacements[i] {
			row = append(row, strconv.FormatFloat(x, 'g', -1, 64))
		}
		for _, v := range s.Velocities[i] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSON writes the whole series as a single indented document.
func JSON(w io.Writer, s *Series) error {
	if err := s.validate(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
