// Package experiments runs engines against each other and reports the
// results as CSV files.
package experiments

import (
	"errors"
	"fmt"
	"os"
	"time"

	"multigame/agent"
	"multigame/experiments/metrics"
	"multigame/meta"

	"gopkg.in/yaml.v3"
)

// EngineSpec is a named engine configuration.
type EngineSpec struct {
	Name         string `yaml:"name"`
	agent.Config `yaml:",inline"`
}

// Config of a tournament.
//
//	name: connectfour
//	game: connectfour
//	games: 4
//	budget: 100ms
//	engines:
//	  - name: random
//	    kind: random
//	  - name: montecarlo
//	    kind: montecarlo
//	    playouts: 50
type Config struct {
	Name string `yaml:"name"`
	Game string `yaml:"game"`
	// Games per pairing, colors alternate
	Games    int `yaml:"games"`
	MaxTurns int `yaml:"maxTurns"`
	// Budget per move, zero searches with the engine defaults
	Budget     time.Duration `yaml:"budget"`
	Goroutines int           `yaml:"goroutines"`
	// Output is the root directory of the reports
	Output string `yaml:"output"`
	// Searches per engine in the throughput experiment
	Searches int          `yaml:"searches"`
	Engines  []EngineSpec `yaml:"engines"`
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML config and fills in defaults.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	c.setDefaults()
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = c.Game
	}
	if c.Games <= 0 {
		c.Games = 2
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = meta.MAX_TURNS
	}
	if c.Goroutines <= 0 {
		c.Goroutines = meta.GO_ROUTINES
	}
	if c.Output == "" {
		c.Output = "experiments"
	}
	if c.Searches <= 0 {
		c.Searches = 10
	}
	for i := range c.Engines {
		if c.Engines[i].Name == "" {
			c.Engines[i].Name = fmt.Sprintf("engine-%d", i+1)
		}
	}
}

func (c *Config) validate() error {
	if _, err := agent.NewGame(c.Game); err != nil {
		return err
	}
	if len(c.Engines) == 0 {
		return errors.New("no engines configured")
	}
	names := map[string]bool{}
	for _, e := range c.Engines {
		if names[e.Name] {
			return fmt.Errorf("duplicate engine name %q", e.Name)
		}
		names[e.Name] = true
	}
	return nil
}

// engineConfigs returns the report rows of the engines, numbered from 1.
func (c *Config) engineConfigs() []metrics.EngineConfig {
	configs := make([]metrics.EngineConfig, len(c.Engines))
	for i, e := range c.Engines {
		configs[i] = metrics.EngineConfig{
			ID:       i + 1,
			Name:     e.Name,
			Kind:     string(e.Kind),
			Depth:    e.Depth,
			Duration: e.Duration,
			Playouts: e.Playouts,
		}
	}
	return configs
}
