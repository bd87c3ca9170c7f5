package searcher

import (
	"fmt"
	"time"

	"multigame/calculation"
	"multigame/experiments/metrics"
	"multigame/game"
	"multigame/meta"

	"golang.org/x/exp/rand"
)

// Random picks a valid move with a probability proportional to its value.
type Random struct {
	lastMetrics
	game    game.Game
	rand    *rand.Rand
	metrics metrics.Collector
}

func NewRandom(g game.Game, options ...Option) *Random {
	c := newConfig(options)
	return &Random{game: g, rand: c.rand, metrics: c.metrics}
}

func (r *Random) Game() game.Game {
	return r.game
}

// BestMove draws a few weighted moves from all moves and returns the first
// valid one. If all tries fail it draws from the valid moves instead.
// Panics if there is no valid move; check IsFinished first.
func (r *Random) BestMove() string {
	r.metrics.Start("random", 0)
	move := randomMove(r.game, r.rand, r.metrics.AddNode)
	r.store(r.metrics.Complete())
	return move
}

func (r *Random) BestMoveWithin(budget time.Duration) calculation.Calculation[string] {
	return calculation.NewTrivial(r.BestMove)
}

func randomMove(g game.Game, rnd *rand.Rand, tried func()) string {
	all := g.AllMoves()
	if len(all) == 0 {
		panic(fmt.Errorf("%w: %s", ErrNoMoves, g.State()))
	}

	for i := 0; i < meta.RANDOM_TRIES; i++ {
		move, ok := game.PickWeighted(rnd, all)
		tried()
		if ok && g.IsValid(move) {
			return move
		}
	}

	valid := g.ValidMoves()
	move, ok := game.PickWeighted(rnd, valid)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrNoValidMoves, g.State()))
	}
	return move
}
