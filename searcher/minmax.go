package searcher

import (
	"math"
	"time"

	"multigame/calculation"
	"multigame/experiments/metrics"
	"multigame/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// MinMax searches the valid moves to a fixed depth with alpha-beta pruning.
// White maximizes the game score, Black minimizes it.
type MinMax struct {
	lastMetrics
	game    game.Game
	depth   int
	rand    *rand.Rand
	metrics metrics.Collector
}

func NewMinMax(g game.Game, options ...Option) *MinMax {
	c := newConfig(options)
	return &MinMax{game: g, depth: c.depth, rand: c.rand, metrics: c.metrics}
}

func (m *MinMax) Game() game.Game {
	return m.game
}

func (m *MinMax) Depth() int {
	return m.depth
}

// BestMove returns one of the best moves, chosen uniformly at random among
// moves of equal value. Returns "" if the game has no valid move.
func (m *MinMax) BestMove() string {
	m.metrics.Start("minmax", m.depth)
	maximize := m.game.SideToMove() == game.White
	value, best := m.search(m.game, m.depth, math.Inf(-1), math.Inf(1), maximize)

	metric := m.metrics.Complete()
	m.store(metric)
	log.Debug().Msgf("minmax depth %d: value %.3f, %d best moves %v, %d nodes in %v",
		m.depth, value, len(best), best, metric.Nodes, metric.Duration)

	if len(best) == 0 {
		return ""
	}
	return best[m.rand.Intn(len(best))]
}

func (m *MinMax) BestMoveWithin(budget time.Duration) calculation.Calculation[string] {
	return calculation.NewTrivial(m.BestMove)
}

// search returns the value of g and the moves reaching it. Siblings are cut
// only once beta < alpha, so values equal to the best value are exact and
// ties at the root are all collected.
func (m *MinMax) search(g game.Game, depth int, alpha, beta float64, maximize bool) (float64, []string) {
	m.metrics.AddNode()
	if depth == 0 || g.IsFinished() {
		return g.Score(), nil
	}

	moves := g.ValidMovesWithScore()
	// favorable moves first for tighter cutoffs
	game.Sort(moves, maximize)

	best := math.Inf(1)
	if maximize {
		best = math.Inf(-1)
	}
	var bestMoves []string
	for _, mv := range moves {
		var value float64
		if depth == 1 {
			m.metrics.AddNode()
			value = mv.Value
		} else {
			child := g.Clone()
			child.Move(mv.Move)
			value, _ = m.search(child, depth-1, alpha, beta, !maximize)
		}

		switch {
		case value == best:
			bestMoves = append(bestMoves, mv.Move)
		case maximize == (value > best):
			best = value
			bestMoves = append(bestMoves[:0], mv.Move)
		}

		if maximize {
			alpha = math.Max(alpha, value)
		} else {
			beta = math.Min(beta, value)
		}
		if beta < alpha {
			break
		}
	}
	return best, bestMoves
}
