package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swarmfield/internal/field"
	"github.com/san-kum/swarmfield/internal/formation"
	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/impedance"
	"github.com/san-kum/swarmfield/internal/integrators"
	"github.com/san-kum/swarmfield/internal/obstacle"
	"github.com/san-kum/swarmfield/internal/planner"
	"github.com/san-kum/swarmfield/internal/safety"
)

const (
	DefaultRate          = 200.0 // Hz
	DefaultDuration      = 10.0  // seconds
	DefaultTakeoffHeight = 1.0
	DefaultTakeoffTime   = 5.0
	DefaultPosCoef       = 4.0
	DefaultSwarmRadius   = 0.3
	DefaultRandomCount   = 8
	DefaultImpedanceGain = 0.1
	DefaultTraceLimit    = 1000

	MaxAgents = formation.MaxFollowers + 1
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Rate          float64  `yaml:"rate"`
	Duration      float64  `yaml:"duration"`
	Seed          int64    `yaml:"seed"`
	Agents        []string `yaml:"agents"`
	Human         string   `yaml:"human"`
	TakeoffHeight float64  `yaml:"takeoff_height"`
	TakeoffTime   float64  `yaml:"takeoff_time"`
	PosCoef       float64  `yaml:"pos_coef"`
	SwarmRadius   float64  `yaml:"swarm_radius"`

	Features  Features        `yaml:"features"`
	Obstacles ObstacleConfig  `yaml:"obstacles"`
	Field     FieldConfig     `yaml:"field"`
	Planner   PlannerConfig   `yaml:"planner"`
	Impedance ImpedanceConfig `yaml:"impedance"`
	Limits    safety.Envelope `yaml:"limits"`
	Sim       SimConfig       `yaml:"sim"`

	TraceLimit int       `yaml:"trace_limit"`
	Log        LogConfig `yaml:"log"`
}

// Features toggle the optional stages of a tick.
type Features struct {
	RandomObstacles   bool `yaml:"random_obstacles" json:"random_obstacles"`
	MovingObstacles   bool `yaml:"moving_obstacles" json:"moving_obstacles"`
	Impedance         bool `yaml:"impedance" json:"impedance"`
	FormationGradient bool `yaml:"formation_gradient" json:"formation_gradient"`
	PutLimits         bool `yaml:"put_limits" json:"put_limits"`
}

type ObstacleConfig struct {
	Count  int     `yaml:"num_random_obstacles"`
	Radius float64 `yaml:"radius"`
	Speed  float64 `yaml:"speed"`
	// Disabled runs in free space. Otherwise Layout, when set, replaces the
	// fixed room layout unless random obstacles are on.
	Disabled bool                `yaml:"disabled"`
	Layout   []obstacle.Obstacle `yaml:"layout,omitempty"`
}

type FieldConfig struct {
	GridSize     int     `yaml:"grid_size"`
	Resolution   float64 `yaml:"resolution"`
	Border       int     `yaml:"border"`
	field.Params `yaml:",inline"`
}

type PlannerConfig struct {
	StepLength float64 `yaml:"step_length"`
	Window     int     `yaml:"window"`
}

type ImpedanceConfig struct {
	Mode       string  `yaml:"mode"`
	Integrator string  `yaml:"integrator"`
	Gain       float64 `yaml:"gain"`
	MaxSubstep float64 `yaml:"max_substep"`
	MaxGap     float64 `yaml:"max_gap"`
}

// SimConfig drives the simulated world used when no motion capture is
// attached.
type SimConfig struct {
	LeaderStart geom.Vec2   `yaml:"leader_start"`
	HumanStart  geom.Vec2   `yaml:"human_start"`
	Waypoints   []geom.Vec2 `yaml:"waypoints"`
	HumanSpeed  float64     `yaml:"human_speed"` // m/s
	Kp          float64     `yaml:"kp"`
	Ki          float64     `yaml:"ki"`
	Kd          float64     `yaml:"kd"`
	MaxSpeed    float64     `yaml:"max_speed"` // m/s
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

func DefaultConfig() *Config {
	return &Config{
		Rate:          DefaultRate,
		Duration:      DefaultDuration,
		Agents:        []string{"cf1", "cf2", "cf3", "cf4"},
		Human:         "palm",
		TakeoffHeight: DefaultTakeoffHeight,
		TakeoffTime:   DefaultTakeoffTime,
		PosCoef:       DefaultPosCoef,
		SwarmRadius:   DefaultSwarmRadius,
		Features: Features{
			MovingObstacles:   true,
			Impedance:         true,
			FormationGradient: true,
			PutLimits:         true,
		},
		Obstacles: ObstacleConfig{
			Count:  DefaultRandomCount,
			Radius: obstacle.DefaultRadius,
			Speed:  obstacle.DefaultSpeed,
		},
		Field: FieldConfig{
			GridSize:   geom.DefaultGridSize,
			Resolution: geom.DefaultResolution,
			Border:     1,
			Params:     field.DefaultParams(),
		},
		Planner: PlannerConfig{
			StepLength: planner.DefaultStepLength,
			Window:     planner.DefaultWindow,
		},
		Impedance: ImpedanceConfig{
			Mode:       impedance.CriticallyDamped.String(),
			Integrator: "rk4",
			Gain:       DefaultImpedanceGain,
			MaxSubstep: impedance.DefaultMaxSubstep,
			MaxGap:     impedance.DefaultMaxGap,
		},
		Limits: safety.DefaultEnvelope(),
		Sim: SimConfig{
			LeaderStart: geom.Vec2{X: -1.2, Y: 1.2},
			Waypoints:   []geom.Vec2{{X: 0.6, Y: -0.6}},
			HumanSpeed:  0.25,
			Kp:          8,
			Ki:          0.2,
			Kd:          2,
			MaxSpeed:    3,
		},
		TraceLimit: DefaultTraceLimit,
		Log:        LogConfig{Level: "info", Encoding: "console"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	switch {
	case c.Rate <= 0:
		return invalid("rate must be positive, got %g", c.Rate)
	case c.Duration <= 0:
		return invalid("duration must be positive, got %g", c.Duration)
	case len(c.Agents) == 0:
		return invalid("at least one agent (the leader) is required")
	case len(c.Agents) > MaxAgents:
		return fmt.Errorf("%w: %d agents: %w", ErrInvalid, len(c.Agents), formation.ErrFormationSize)
	case c.SwarmRadius <= 0:
		return invalid("swarm_radius must be positive")
	case c.Obstacles.Radius <= 0:
		return invalid("obstacle radius must be positive")
	case c.Obstacles.Count < 0:
		return invalid("num_random_obstacles must not be negative")
	case c.Planner.StepLength <= 0:
		return invalid("planner step_length must be positive")
	case c.Planner.Window <= 0:
		return invalid("planner window must be positive")
	case c.Field.GridSize <= 2*c.Field.Border+1:
		return invalid("grid_size %d leaves no free cells", c.Field.GridSize)
	case c.Field.Resolution <= 0:
		return invalid("field resolution must be positive")
	case c.Field.InfluenceRadius <= 1:
		return invalid("influence_radius must exceed 1, got %g", c.Field.InfluenceRadius)
	case c.TraceLimit < 0:
		return invalid("trace_limit must not be negative")
	}

	seen := make(map[string]bool, len(c.Agents))
	for _, id := range c.Agents {
		if id == "" || seen[id] {
			return invalid("agent ids must be unique and non-empty")
		}
		seen[id] = true
	}

	if _, err := impedance.ParseMode(c.Impedance.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := integrators.New(c.Impedance.Integrator); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) Dt() float64 { return 1 / c.Rate }

// Ticks is the number of control ticks in Duration.
func (c *Config) Ticks() int { return int(c.Duration*c.Rate + 0.5) }

func (c *Config) Frame() geom.Frame {
	return geom.Frame{Cols: c.Field.GridSize, Rows: c.Field.GridSize, Resolution: c.Field.Resolution}
}

func (c *Config) Followers() int { return len(c.Agents) - 1 }

// InitialObstacles returns the obstacle layout a run starts from.
func (c *Config) InitialObstacles(rng *rand.Rand) []obstacle.Obstacle {
	switch {
	case c.Obstacles.Disabled:
		return nil
	case c.Features.RandomObstacles:
		return obstacle.Random(rng, c.Obstacles.Count, c.Obstacles.Radius)
	case c.Obstacles.Layout != nil:
		return append([]obstacle.Obstacle(nil), c.Obstacles.Layout...)
	default:
		return obstacle.Fixed(c.Obstacles.Radius)
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Agents = append([]string(nil), c.Agents...)
	out.Obstacles.Layout = append([]obstacle.Obstacle(nil), c.Obstacles.Layout...)
	out.Sim.Waypoints = append([]geom.Vec2(nil), c.Sim.Waypoints...)
	return &out
}
