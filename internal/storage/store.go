package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/experiment"
	"github.com/san-kum/spheresim/internal/metrics"
	"github.com/san-kum/spheresim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	finalFile    = "final.json"
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
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Frames    int                `json:"frames"`
	Mode      string             `json:"mode"`
	ForceLaw  string             `json:"force_law"`
	Final     sim.Counts         `json:"final"`
	Commands  int                `json:"commands"`
	Clamped   int                `json:"clamped"`
	Rejected  int                `json:"rejected"`
	Metrics   map[string]float64 `json:"metrics"`
	Config    *config.Config     `json:"config,omitempty"`
}

func NewMetadata(name string, cfg *config.Config, result *experiment.Result) RunMetadata {
	now := time.Now()
	return RunMetadata{
		ID:        fmt.Sprintf("%s_%d", name, now.UnixNano()),
		Name:      name,
		Timestamp: now,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Frames:    result.Frames,
		Mode:      cfg.Mode,
		ForceLaw:  cfg.ForceLaw,
		Final:     result.Final.Counts,
		Commands:  result.Commands,
		Clamped:   result.Clamped,
		Rejected:  result.Rejected,
		Metrics:   result.Metrics,
		Config:    cfg,
	}
}

// Save writes a run directory and returns its id.
func (s *Store) Save(name string, cfg *config.Config, result *experiment.Result) (string, error) {
	meta := NewMetadata(name, cfg, result)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	if err := writeJSON(filepath.Join(runDir, finalFile), result.Final); err != nil {
		return "", fmt.Errorf("write final frame: %w", err)
	}

	f, err := os.Create(filepath.Join(runDir, seriesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteSeries(f, result.Samples); err != nil {
		return "", fmt.Errorf("write series: %w", err)
	}

	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSeries writes samples as CSV with a metrics.Columns header.
func WriteSeries(w io.Writer, samples []metrics.Sample) error {
	rows := make([][]float64, len(samples))
	for i, s := range samples {
		rows[i] = s.Values()
	}
	return WriteRows(w, metrics.Columns(), rows)
}

func WriteRows(w io.Writer, header []string, rows [][]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, vals := range rows {
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every readable run, oldest first.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadFinal(runID string) (*sim.Frame, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, finalFile))
	if err != nil {
		return nil, err
	}

	var f sim.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadSeries returns the CSV header and one row per sample. Unparseable
// cells are read as 0.
func (s *Store) LoadSeries(runID string) ([]string, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return []string{}, [][]float64{}, nil
	}

	header := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		row := make([]float64, len(header))
		for j := 0; j < len(header) && j < len(record); j++ {
			if v, err := strconv.ParseFloat(record[j], 64); err == nil {
				row[j] = v
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// Column extracts a named column from LoadSeries output.
func Column(header []string, rows [][]float64, name string) ([]float64, error) {
	for i, h := range header {
		if h != name {
			continue
		}
		out := make([]float64, len(rows))
		for j, row := range rows {
			out[j] = row[i]
		}
		return out, nil
	}
	return nil, fmt.Errorf("column %q not in series", name)
}
