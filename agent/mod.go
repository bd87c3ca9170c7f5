// Package agent maps game names to game and engine constructors.
package agent

import (
	"fmt"
	"sort"

	"multigame/game"
	"multigame/game/chess"
	"multigame/game/stones"
	"multigame/searcher"
)

const (
	Chess       = "chess"
	TicTacToe   = "tictactoe"
	Gomoku      = "gomoku"
	ConnectFour = "connectfour"
)

type entry struct {
	newGame func() game.Game
	// kind of the engine used when a config asks for the default
	defaultKind Kind
}

var registry = map[string]entry{
	Chess:       {newGame: func() game.Game { return chess.New() }, defaultKind: MinMax},
	TicTacToe:   {newGame: func() game.Game { return stones.New(stones.TicTacToe()) }, defaultKind: MonteCarlo},
	Gomoku:      {newGame: func() game.Game { return stones.New(stones.Gomoku()) }, defaultKind: MonteCarlo},
	ConnectFour: {newGame: func() game.Game { return stones.New(stones.ConnectFour()) }, defaultKind: MonteCarlo},
}

// Names returns the known game names in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupEntry(name string) (entry, error) {
	e, ok := registry[name]
	if !ok {
		return entry{}, fmt.Errorf("%w: %q", game.ErrUnknownGame, name)
	}
	return e, nil
}

// NewGame returns the game in its start position.
func NewGame(name string) (game.Game, error) {
	e, err := lookupEntry(name)
	if err != nil {
		return nil, err
	}
	return e.newGame(), nil
}

// GameFactory returns the constructor of the named game.
func GameFactory(name string) (func() game.Game, error) {
	e, err := lookupEntry(name)
	if err != nil {
		return nil, err
	}
	return e.newGame, nil
}

// NewEngine creates the engine described by config for g. Lookup tables in
// config are consulted before the search.
func NewEngine(name string, g game.Game, config Config) (searcher.Engine, error) {
	e, err := lookupEntry(name)
	if err != nil {
		return nil, err
	}

	kind := config.Kind
	if kind == "" || kind == Default {
		kind = e.defaultKind
	}

	options := config.options()
	var engine searcher.Engine
	switch kind {
	case Random:
		engine = searcher.NewRandom(g, options...)
	case MinMax:
		engine = searcher.NewMinMax(g, options...)
	case MonteCarlo:
		engine = searcher.NewMonteCarlo(g, options...)
	default:
		return nil, fmt.Errorf("unknown engine kind %q", config.Kind)
	}

	if len(config.Tables) > 0 {
		engine = searcher.NewLookup(engine, config.Tables...)
	}
	return engine, nil
}

// Factory returns a constructor of engines with their own game for any
// known game name. The book and tablebase of config are chess tables, they
// are loaded per call and only for chess.
func Factory(config Config) func(name string) (searcher.Engine, error) {
	return func(name string) (searcher.Engine, error) {
		g, err := NewGame(name)
		if err != nil {
			return nil, err
		}
		c := config
		if name != Chess {
			c.Book, c.Tablebase = "", ""
		}
		loaded, err := c.LoadTables(name)
		if err != nil {
			return nil, err
		}
		return NewEngine(name, g, loaded)
	}
}
