package agent

import (
	"fmt"
	"time"

	"multigame/experiments/metrics"
	"multigame/game"
	"multigame/lookup"
	"multigame/searcher"
)

type Kind string

const (
	Default    Kind = "default"
	Random     Kind = "random"
	MinMax     Kind = "minmax"
	MonteCarlo Kind = "montecarlo"
)

// Config describes an engine. Zero values fall back to the engine defaults.
type Config struct {
	Kind     Kind          `yaml:"kind"`
	Depth    int           `yaml:"depth"`
	Duration time.Duration `yaml:"duration"`
	Playouts int           `yaml:"playouts"`
	MaxTurns int           `yaml:"maxTurns"`
	Seed     uint64        `yaml:"seed"`
	// Book is the path of an opening book file
	Book string `yaml:"book"`
	// Tablebase is the base URL of a chess endgame tablebase server
	Tablebase string `yaml:"tablebase"`

	Tables []searcher.LookupTable `yaml:"-"`
}

func (c Config) options() []searcher.Option {
	options := []searcher.Option{searcher.WithMetrics()}
	if c.Depth > 0 {
		options = append(options, searcher.WithDepth(c.Depth))
	}
	if c.Duration > 0 {
		options = append(options, searcher.WithDuration(c.Duration))
	}
	if c.Playouts > 0 {
		options = append(options, searcher.WithPlayouts(c.Playouts))
	}
	if c.MaxTurns > 0 {
		options = append(options, searcher.WithMaxTurns(c.MaxTurns))
	}
	if c.Seed != 0 {
		options = append(options, searcher.WithSeed(c.Seed))
	}
	return options
}

// LoadTables opens the lookup tables named by Book and Tablebase and adds
// them to the config.
func (c Config) LoadTables(name string) (Config, error) {
	if c.Book != "" {
		newGame, err := GameFactory(name)
		if err != nil {
			return c, err
		}
		book, err := lookup.LoadBook(c.Book, newGame)
		if err != nil {
			return c, err
		}
		c.Tables = append(c.Tables, book)
	}
	if c.Tablebase != "" {
		if name != Chess {
			return c, fmt.Errorf("tablebase is only available for %s", Chess)
		}
		c.Tables = append(c.Tables, lookup.NewTablebase(lookup.WithBaseURL(c.Tablebase)))
	}
	return c, nil
}

// String describes the engine for logs and reports.
func (c Config) String() string {
	return fmt.Sprintf("%s(depth=%d duration=%v playouts=%d)", c.kind(), c.Depth, c.Duration, c.Playouts)
}

func (c Config) kind() Kind {
	if c.Kind == "" {
		return Default
	}
	return c.Kind
}

// Agent plays one side of a game with an engine and a time budget per move.
type Agent struct {
	Name   string
	Engine searcher.Engine
	Budget time.Duration
}

func New(name string, engine searcher.Engine, budget time.Duration) *Agent {
	return &Agent{Name: name, Engine: engine, Budget: budget}
}

// FindMove searches the current state of the engine's game and returns the
// move with the metrics of the search, if the engine collects them.
func (a *Agent) FindMove() (string, metrics.SearchMetric) {
	var move string
	if a.Budget > 0 {
		move = a.Engine.BestMoveWithin(a.Budget).Get()
	} else {
		move = a.Engine.BestMove()
	}

	var metric metrics.SearchMetric
	if m, ok := a.Engine.(searcher.Measured); ok {
		metric = m.LastMetrics()
	}
	return move, metric
}

// Game returns the game the agent plays on.
func (a *Agent) Game() game.Game {
	return a.Engine.Game()
}
