package config

import (
	"sort"

	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/obstacle"
)

// Presets adjust DefaultConfig into named scenarios.
var Presets = map[string]func(*Config){
	"room": func(c *Config) {},
	"random": func(c *Config) {
		c.Features.RandomObstacles = true
		c.Obstacles.Count = DefaultRandomCount
	},
	"static": func(c *Config) {
		c.Features.MovingObstacles = false
	},
	"rigid": func(c *Config) {
		c.Features.Impedance = false
		c.Features.FormationGradient = false
	},
	"solo": func(c *Config) {
		c.Agents = c.Agents[:1]
	},
	"underdamped": func(c *Config) {
		c.Impedance.Mode = "underdamped"
	},
	"diagonal": func(c *Config) {
		diagonal(c)
		c.Obstacles.Disabled = true
	},
	"diagonal_obstacle": func(c *Config) {
		diagonal(c)
		c.Obstacles.Layout = []obstacle.Obstacle{{ID: "obstacle_0", Radius: obstacle.DefaultRadius}}
	},
}

// diagonal crosses an 8 m arena corner to corner, far enough from the
// border that it does not shape the path.
func diagonal(c *Config) {
	c.Agents = c.Agents[:1]
	c.Features = Features{}
	c.Field.GridSize = 800
	c.Sim.LeaderStart = geom.Vec2{X: -1.8, Y: 1.8}
	c.Sim.HumanStart = geom.Vec2{}
	c.Sim.Waypoints = []geom.Vec2{{X: 0.9, Y: -0.9}}
	c.Sim.HumanSpeed = 2
	c.Duration = 3
}

// GetPreset returns a fresh config for name, or nil when unknown.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
