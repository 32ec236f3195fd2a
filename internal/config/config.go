package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides DefaultPath.
const (
	EnvPath     = "SIMCORE_CONFIG"
	DefaultPath = "config/simcore.toml"
)

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Logging    LoggingConfig    `toml:"logging"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Data       DataConfig       `toml:"data"`
	Input      InputConfig      `toml:"input"`
}

type SimulationConfig struct {
	TickRate            time.Duration `toml:"tick_rate"`
	CellSize            float64       `toml:"cell_size"`
	CollisionRadius     float64       `toml:"collision_radius"`   // entity-entity proximity
	EntityHalfExtent    float64       `toml:"entity_half_extent"` // bounding square vs map geometry
	DefaultMoveSpeed    float64       `toml:"default_move_speed"` // units/s when SPD is absent
	ArriveThreshold2D   float64       `toml:"arrive_threshold_2d"`
	WaypointThreshold2D float64       `toml:"waypoint_threshold_2d"`
	ArriveThreshold3D   float64       `toml:"arrive_threshold_3d"`
	WaypointThreshold3D float64       `toml:"waypoint_threshold_3d"`
	ImpactThreshold     float64       `toml:"impact_threshold"`
	CollisionQueueSize  int           `toml:"collision_queue_size"`
	Seed                int64         `toml:"seed"`       // 0 = seed from the clock
	MaxFrames           uint64        `toml:"max_frames"` // 0 = run until interrupted
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	BindAddress string `toml:"bind_address"`
}

type DataConfig struct {
	Skills  string `toml:"skills"`
	Items   string `toml:"items"`
	Scenes  string `toml:"scenes"`
	Scripts string `toml:"scripts"`
}

// InputConfig binds logical actions to device controls, and hotbar actions
// to the skill or item they trigger.
type InputConfig struct {
	Bindings   map[string][]string `toml:"bindings"`
	Abilities  map[string]int32    `toml:"abilities"`   // action -> skill id
	Items      map[string]int32    `toml:"items"`       // action -> item id
	PickRadius float64             `toml:"pick_radius"` // cursor target acquisition
	Script     string              `toml:"script"`      // recorded polls; empty disables input
}

// Path returns the config path from the environment, or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config { return defaults() }

func (c *Config) validate() error {
	s := c.Simulation
	switch {
	case s.TickRate <= 0:
		return fmt.Errorf("simulation.tick_rate must be positive")
	case s.CellSize <= 0:
		return fmt.Errorf("simulation.cell_size must be positive")
	case s.CollisionRadius > s.CellSize:
		return fmt.Errorf("simulation.collision_radius %.1f exceeds cell_size %.1f", s.CollisionRadius, s.CellSize)
	case s.CollisionQueueSize <= 0:
		return fmt.Errorf("simulation.collision_queue_size must be positive")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:            time.Second / 60,
			CellSize:            64,
			CollisionRadius:     64,
			EntityHalfExtent:    16,
			DefaultMoveSpeed:    100,
			ArriveThreshold2D:   2.0,
			WaypointThreshold2D: 2.0,
			ArriveThreshold3D:   0.5,
			WaypointThreshold3D: 0.8,
			ImpactThreshold:     4.0,
			CollisionQueueSize:  4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled:     false,
			BindAddress: "127.0.0.1:9108",
		},
		Data: DataConfig{
			Skills:  "data/skills.yaml",
			Items:   "data/items.yaml",
			Scenes:  "data/scenes.yaml",
			Scripts: "scripts",
		},
		Input: InputConfig{
			Bindings: map[string][]string{
				"move":      {"mouse:right", "pad:a"},
				"ability_1": {"key:1", "pad:x"},
				"ability_2": {"key:2", "pad:y"},
				"item_1":    {"key:q"},
			},
			Abilities:  map[string]int32{"ability_1": 1, "ability_2": 2},
			Items:      map[string]int32{"item_1": 100},
			PickRadius: 48,
		},
	}
}
