package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/swarmfield/internal/config"
	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/swarm"
	"github.com/san-kum/swarmfield/internal/telemetry"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	configFile     = "config.yaml"
)

var ErrRunNotFound = errors.New("storage: run not found")

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
	Rate      float64            `json:"rate"`
	Duration  float64            `json:"duration"`
	Agents    []string           `json:"agents"`
	Features  config.Features    `json:"features"`
	Ticks     int                `json:"ticks"`
	Stalls    int                `json:"stalls"`
	Errors    int                `json:"errors"`
	Metrics   map[string]float64 `json:"metrics"`
}

// TrajectoryRow is one agent at one tick.
type TrajectoryRow struct {
	Time     float64
	Agent    string
	Role     swarm.Role
	Position geom.Vec3
	Setpoint geom.Vec3
	Target   geom.Vec3
	Stalled  bool
}

var trajectoryHeader = []string{
	"time", "agent", "role",
	"x", "y", "z",
	"sp_x", "sp_y", "sp_z",
	"target_x", "target_y",
	"stalled",
}

// Save writes a run under a fresh id: metadata, the config that produced it
// and the full trajectory.
func (s *Store) Save(name string, cfg *config.Config, result *swarm.Result, history []telemetry.Row) (string, error) {
	runID := uuid.New().String()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: time.Now(),
		Seed:      cfg.Seed,
		Rate:      cfg.Rate,
		Duration:  cfg.Duration,
		Agents:    cfg.Agents,
		Features:  cfg.Features,
		Ticks:     result.Ticks,
		Stalls:    result.Stalls,
		Errors:    len(result.Errors),
		Metrics:   finite(result.Metrics),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteTrajectory(f, history); err != nil {
		return "", err
	}
	return runID, nil
}

// finite drops values JSON cannot carry, such as the clearance of a run
// without obstacles.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func WriteTrajectory(w io.Writer, history []telemetry.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trajectoryHeader); err != nil {
		return err
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, r := range history {
		a := r.Agent
		row := []string{
			ff(r.Time), a.ID, string(a.Role),
			ff(a.Position.X), ff(a.Position.Y), ff(a.Position.Z),
			ff(a.Setpoint.X), ff(a.Setpoint.Y), ff(a.Setpoint.Z),
			ff(r.Target.X), ff(r.Target.Y),
			strconv.FormatBool(a.Stalled),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns the stored runs, newest first. Directories without readable
// metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadConfig returns the configuration a run was recorded with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadTrajectory(runID string) ([]TrajectoryRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()
	return ReadTrajectory(file)
}

func ReadTrajectory(r io.Reader) ([]TrajectoryRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(trajectoryHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TrajectoryRow{}, nil
	}

	rows := make([]TrajectoryRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		var nums [9]float64
		for j, idx := range []int{0, 3, 4, 5, 6, 7, 8, 9, 10} {
			v, err := strconv.ParseFloat(rec[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: trajectory line %d: %w", i+2, err)
			}
			nums[j] = v
		}
		stalled, err := strconv.ParseBool(rec[11])
		if err != nil {
			return nil, fmt.Errorf("storage: trajectory line %d: %w", i+2, err)
		}
		rows = append(rows, TrajectoryRow{
			Time:     nums[0],
			Agent:    rec[1],
			Role:     swarm.Role(rec[2]),
			Position: geom.Vec3{X: nums[1], Y: nums[2], Z: nums[3]},
			Setpoint: geom.Vec3{X: nums[4], Y: nums[5], Z: nums[6]},
			Target:   geom.Vec3{X: nums[7], Y: nums[8]},
			Stalled:  stalled,
		})
	}
	return rows, nil
}

// Paths groups a trajectory's setpoints by agent, in first-seen order.
func Paths(rows []TrajectoryRow) (ids []string, paths map[string][]geom.Vec2) {
	paths = make(map[string][]geom.Vec2)
	for _, r := range rows {
		if _, ok := paths[r.Agent]; !ok {
			ids = append(ids, r.Agent)
		}
		paths[r.Agent] = append(paths[r.Agent], r.Setpoint.XY())
	}
	return ids, paths
}
