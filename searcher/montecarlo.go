package searcher

import (
	"fmt"
	"math"
	"time"

	"multigame/calculation"
	"multigame/experiments/metrics"
	"multigame/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// MonteCarlo rates every valid move by random playouts to the end of the
// game and returns the move with the best win ratio.
type MonteCarlo struct {
	lastMetrics
	game     game.Game
	duration time.Duration
	playouts int
	maxTurns int
	rand     *rand.Rand
	metrics  metrics.Collector
}

func NewMonteCarlo(g game.Game, options ...Option) *MonteCarlo {
	c := newConfig(options)
	return &MonteCarlo{
		game:     g,
		duration: c.duration,
		playouts: c.playouts,
		maxTurns: c.maxTurns,
		rand:     c.rand,
		metrics:  c.metrics,
	}
}

func (m *MonteCarlo) Game() game.Game {
	return m.game
}

// BestMove searches for the configured duration.
func (m *MonteCarlo) BestMove() string {
	return m.BestMoveWithin(m.duration).Get()
}

// BestMoveWithin starts the playouts in the background. Panics if the game
// has no valid move.
func (m *MonteCarlo) BestMoveWithin(budget time.Duration) calculation.Calculation[string] {
	m.metrics.Start("montecarlo", 0)
	root := m.game.Clone()
	moves := root.ValidMoves()
	switch len(moves) {
	case 0:
		panic(fmt.Errorf("%w: %s", ErrNoValidMoves, root.State()))
	case 1:
		m.store(m.metrics.Complete())
		return calculation.Value(moves[0].Move)
	}

	search := &playoutSearch{
		engine: m,
		root:   root,
		side:   root.SideToMove(),
		moves:  moves,
		stats:  make([]playoutStats, len(moves)),
	}
	return calculation.Start[string](budget, search)
}

type playoutStats struct {
	wins  int
	draws int
	total int
}

// value is the win ratio with draws counted as half a win.
func (s playoutStats) value() float64 {
	if s.total == 0 {
		return math.Inf(-1)
	}
	return float64(2*s.wins+s.draws) / float64(2*s.total)
}

// playoutSearch is driven by a single goroutine, see calculation.Timed.
type playoutSearch struct {
	engine *MonteCarlo
	root   game.Game
	side   game.Side
	moves  []game.MoveValue
	stats  []playoutStats
	rounds int
}

// Chunk plays one round: a single playout for every candidate move.
func (p *playoutSearch) Chunk(remaining time.Duration) bool {
	p.engine.metrics.AddChunk()
	for i, mv := range p.moves {
		local := p.root.Clone()
		local.Move(mv.Move)
		winner := p.playout(local)

		stats := &p.stats[i]
		stats.total++
		switch winner {
		case p.side:
			stats.wins++
		case game.None:
			stats.draws++
		}
	}
	p.rounds++
	return p.engine.playouts > 0 && p.rounds >= p.engine.playouts
}

// playout plays random moves until the game is finished. Games running
// longer than maxTurns are counted as a draw.
func (p *playoutSearch) playout(g game.Game) game.Side {
	p.engine.metrics.AddPlayout()
	for turn := 0; !g.IsFinished(); turn++ {
		if turn >= p.engine.maxTurns {
			return game.None
		}
		g.Move(randomMove(g, p.engine.rand, p.engine.metrics.AddNode))
	}
	return g.Winner()
}

func (p *playoutSearch) Result() string {
	best := 0
	for i := range p.stats {
		if p.stats[i].value() > p.stats[best].value() {
			best = i
		}
	}

	metric := p.engine.metrics.Complete()
	p.engine.store(metric)
	log.Debug().Msgf("montecarlo: %d rounds, best %s with %.3f (%d/%d/%d) in %v",
		p.rounds, p.moves[best].Move, p.stats[best].value(),
		p.stats[best].wins, p.stats[best].draws, p.stats[best].total, metric.Duration)
	return p.moves[best].Move
}
