package searcher

import (
	"sync/atomic"
	"time"

	"multigame/calculation"
	"multigame/experiments/metrics"
	"multigame/game"

	"github.com/rs/zerolog/log"
)

// Lookup answers from the first table that knows a valid move for the
// current state and asks the wrapped engine otherwise.
type Lookup struct {
	lastMetrics
	engine  Engine
	tables  []LookupTable
	metrics metrics.Collector
	// answered is set when the last move came from a table
	answered atomic.Bool
}

func NewLookup(engine Engine, tables ...LookupTable) *Lookup {
	return &Lookup{engine: engine, tables: tables, metrics: metrics.NewCollector()}
}

func (l *Lookup) Game() game.Game {
	return l.engine.Game()
}

func (l *Lookup) BestMove() string {
	if move, ok := l.lookup(); ok {
		l.answered.Store(true)
		return move
	}
	l.answered.Store(false)
	return l.engine.BestMove()
}

func (l *Lookup) BestMoveWithin(budget time.Duration) calculation.Calculation[string] {
	if move, ok := l.lookup(); ok {
		l.answered.Store(true)
		return calculation.Value(move)
	}
	l.answered.Store(false)
	return l.engine.BestMoveWithin(budget)
}

func (l *Lookup) lookup() (string, bool) {
	g := l.engine.Game()
	for _, table := range l.tables {
		move, ok := table.BestMove(g)
		if !ok {
			continue
		}
		if !game.Contains(g.AllMoves(), move) || !g.IsValid(move) {
			log.Warn().Msgf("lookup table recommends invalid move %s in %s", move, g.State())
			continue
		}
		l.metrics.Start("lookup", 0)
		l.metrics.SetLookup(true)
		l.store(l.metrics.Complete())
		log.Debug().Msgf("lookup move %s", move)
		return move, true
	}
	return "", false
}

// LastMetrics returns the metrics of the last lookup or, if the wrapped
// engine answered, of its last search.
func (l *Lookup) LastMetrics() metrics.SearchMetric {
	if m, ok := l.engine.(Measured); ok && !l.answered.Load() {
		return m.LastMetrics()
	}
	return l.lastMetrics.LastMetrics()
}
