package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Samples int            `json:"samples"`
	Rows    []ExportSample `json:"rows"`
}

type ExportSample struct {
	Time     float64    `json:"time"`
	Agent    string     `json:"agent"`
	Role     string     `json:"role"`
	Position [3]float64 `json:"position"`
	Setpoint [3]float64 `json:"setpoint"`
	Target   [2]float64 `json:"target"`
	Stalled  bool       `json:"stalled,omitempty"`
}

// ExportJSON writes a run and its trajectory as one indented JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	rows, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	data := ExportData{Run: *meta, Samples: len(rows), Rows: make([]ExportSample, len(rows))}
	for i, r := range rows {
		data.Rows[i] = ExportSample{
			Time:     r.Time,
			Agent:    r.Agent,
			Role:     string(r.Role),
			Position: [3]float64{r.Position.X, r.Position.Y, r.Position.Z},
			Setpoint: [3]float64{r.Setpoint.X, r.Setpoint.Y, r.Setpoint.Z},
			Target:   [2]float64{r.Target.X, r.Target.Y},
			Stalled:  r.Stalled,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
