package searcher

import (
	"errors"
	"time"

	"multigame/calculation"
	"multigame/experiments/metrics"
	"multigame/game"
)

var (
	ErrNoMoves      = errors.New("no moves")
	ErrNoValidMoves = errors.New("no valid moves")
)

// Engine finds the best move for the side to move of its game.
// An engine runs one search at a time; callers must not start a search
// while another one of the same engine is still running.
type Engine interface {
	Game() game.Game
	// BestMove searches synchronously.
	BestMove() string
	// BestMoveWithin searches for roughly the given budget. The returned
	// calculation can be stopped early.
	BestMoveWithin(budget time.Duration) calculation.Calculation[string]
}

// Measured engines report the metrics of their last search.
type Measured interface {
	LastMetrics() metrics.SearchMetric
}

// LookupTable recommends moves from precomputed knowledge, e.g. an opening
// book or an endgame tablebase.
type LookupTable interface {
	BestMove(g game.Game) (string, bool)
}
