package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/spheresim/internal/experiment"
	"github.com/san-kum/spheresim/internal/metrics"
	"github.com/san-kum/spheresim/internal/sim"
)

type ExportData struct {
	Meta    RunMetadata `json:"meta"`
	Columns []string    `json:"columns"`
	Series  [][]float64 `json:"series"`
	Final   sim.Frame   `json:"final"`
}

func NewExportData(meta RunMetadata, result *experiment.Result) ExportData {
	data := ExportData{
		Meta:    meta,
		Columns: metrics.Columns(),
		Series:  make([][]float64, len(result.Samples)),
		Final:   result.Final,
	}
	for i, s := range result.Samples {
		data.Series[i] = s.Values()
	}
	return data
}

func ExportJSON(path string, meta RunMetadata, result *experiment.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, result)
}

func WriteJSON(w io.Writer, meta RunMetadata, result *experiment.Result) error {
	data := NewExportData(meta, result)
	return data.Encode(w)
}

func ExportCSV(path string, result *experiment.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteSeries(file, result.Samples)
}

// Export rebuilds the export document of a stored run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	header, rows, err := s.LoadSeries(runID)
	if err != nil {
		return nil, err
	}
	final, err := s.LoadFinal(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Meta: *meta, Columns: header, Series: rows, Final: *final}, nil
}

// Encode writes data as indented JSON.
func (d *ExportData) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
