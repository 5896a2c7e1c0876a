package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/isingsim/internal/storage"
)

// RunData is the JSON document for a stored run or sweep.
type RunData struct {
	Metadata       storage.RunMetadata `json:"metadata"`
	Energies       []float64           `json:"energies,omitempty"`
	Magnetizations []float64           `json:"magnetizations,omitempty"`
	Sweep          []storage.SweepRow  `json:"sweep,omitempty"`
}

// Collect reads everything stored under runID.
func Collect(st *storage.Store, runID string) (*RunData, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	data := &RunData{Metadata: *meta}

	switch meta.Kind {
	case storage.KindSweep:
		rows, err := st.LoadSweep(runID)
		if err != nil {
			return nil, err
		}
		data.Sweep = rows
	default:
		traj, err := st.LoadTrajectory(runID)
		if err != nil {
			return nil, err
		}
		data.Energies = traj.Energies
		data.Magnetizations = traj.Magnetizations
	}
	return data, nil
}

func WriteJSON(w io.Writer, data *RunData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *RunData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
