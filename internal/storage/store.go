package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/sweep"
)

const (
	KindRun   = "run"
	KindSweep = "sweep"

	metadataFile = "metadata.json"
	energiesFile = "energies.csv"
	sweepFile    = "sweep.csv"
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

// RunMetadata describes a stored run or sweep.
type RunMetadata struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Timestamp     time.Time `json:"timestamp"`
	Rows          int       `json:"rows"`
	Cols          int       `json:"cols"`
	Seed          int64     `json:"seed"`
	Temperature   float64   `json:"temperature,omitempty"`
	Field         float64   `json:"field"`
	Etol          float64   `json:"etol"`
	StepsPerCycle int       `json:"steps_per_cycle"`
	Cycles        int       `json:"cycles,omitempty"`
	Mean          float64   `json:"mean,omitempty"`
	Acceptance    float64   `json:"acceptance,omitempty"`
	Converged     bool      `json:"converged"`
	Points        int       `json:"points,omitempty"`
}

// Trajectory is the per-cycle record of a stored run.
type Trajectory struct {
	Energies       []float64
	Magnetizations []float64
}

// SweepRow is one stored temperature point.
type SweepRow struct {
	Temperature    float64
	Energy         float64
	Magnetization  float64
	StdDev         float64
	Cycles         int
	AcceptanceRate float64
	Converged      bool
	Error          string
}

func (s *Store) newRunDir(kind string) (string, string, error) {
	// timestamp first so IDs sort by creation
	runID := fmt.Sprintf("%s_%d_%s", kind, time.Now().UnixNano(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", "", err
	}
	return runID, runDir, nil
}

func writeMetadata(runDir string, meta RunMetadata) error {
	f, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SaveRun stores one single-temperature run. meta's ID, Kind and Timestamp
// are filled in; the run statistics are taken from result.
func (s *Store) SaveRun(meta RunMetadata, result *ising.Result, converged bool) (string, error) {
	runID, runDir, err := s.newRunDir(KindRun)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Kind = KindRun
	meta.Timestamp = time.Now()
	meta.Cycles = result.Cycles
	meta.Mean = result.Mean
	meta.Acceptance = result.AcceptanceRate()
	meta.Converged = converged

	if err := writeMetadata(runDir, meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, energiesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"cycle", "energy"}
	track := len(result.Magnetizations) > 0
	if track {
		header = append(header, "magnetization")
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, e := range result.Energies {
		row := []string{strconv.Itoa(i), formatFloat(e)}
		if track && i < len(result.Magnetizations) {
			row = append(row, formatFloat(result.Magnetizations[i]))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return runID, w.Error()
}

// SaveSweep stores the summary points of a temperature sweep.
func (s *Store) SaveSweep(meta RunMetadata, points []sweep.Point) (string, error) {
	runID, runDir, err := s.newRunDir(KindSweep)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Kind = KindSweep
	meta.Timestamp = time.Now()
	meta.Points = len(points)
	meta.Converged = true
	for _, p := range points {
		if !p.Converged {
			meta.Converged = false
		}
	}

	if err := writeMetadata(runDir, meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, sweepFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"temperature", "energy", "magnetization", "stddev", "cycles", "acceptance", "converged", "error"}); err != nil {
		return "", err
	}

	for _, p := range points {
		errText := ""
		if p.Err != nil {
			errText = p.Err.Error()
		}
		row := []string{
			formatFloat(p.Temperature),
			formatFloat(p.Energy),
			formatFloat(p.Magnetization),
			formatFloat(p.StdDev),
			strconv.Itoa(p.Cycles),
			formatFloat(p.AcceptanceRate),
			strconv.FormatBool(p.Converged),
			errText,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return runID, w.Error()
}

// List returns every stored run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	records, err := s.readCSV(runID, energiesFile)
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{Energies: make([]float64, 0, len(records))}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			continue
		}

		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", energiesFile, i+1, err)
		}
		traj.Energies = append(traj.Energies, e)

		if len(record) > 2 {
			m, err := strconv.ParseFloat(record[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", energiesFile, i+1, err)
			}
			traj.Magnetizations = append(traj.Magnetizations, m)
		}
	}

	return traj, nil
}

var ErrNotSweep = errors.New("storage: run is not a sweep")

func (s *Store) LoadSweep(runID string) ([]SweepRow, error) {
	records, err := s.readCSV(runID, sweepFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotSweep, runID)
		}
		return nil, err
	}

	rows := make([]SweepRow, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 7 {
			continue
		}

		var row SweepRow
		var perr error
		parse := func(s string) float64 {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil && perr == nil {
				perr = err
			}
			return v
		}
		row.Temperature = parse(rec[0])
		row.Energy = parse(rec[1])
		row.Magnetization = parse(rec[2])
		row.StdDev = parse(rec[3])
		row.AcceptanceRate = parse(rec[5])
		if row.Cycles, err = strconv.Atoi(rec[4]); err != nil && perr == nil {
			perr = err
		}
		if row.Converged, err = strconv.ParseBool(rec[6]); err != nil && perr == nil {
			perr = err
		}
		if perr != nil {
			return nil, fmt.Errorf("%s line %d: %w", sweepFile, i+1, perr)
		}
		if len(rec) > 7 {
			row.Error = rec[7]
		}
		rows = append(rows, row)
	}

	return rows, nil
}
