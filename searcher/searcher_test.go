package searcher

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"multigame/game"

	"github.com/stretchr/testify/require"
)

func requirePanicsWith(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "Call should panic")
		err, ok := r.(error)
		require.True(t, ok, "Panic value should be an error, got %v", r)
		require.True(t, errors.Is(err, target), "Panic %v should wrap %v", err, target)
	}()
	f()
}

func TestRandom(t *testing.T) {
	t.Run("only valid moves are returned", func(t *testing.T) {
		root := &mockNode{
			side:    game.White,
			moves:   []game.MoveValue{{Move: "a", Value: 100}, {Move: "b", Value: 1}},
			invalid: map[string]bool{"a": true},
		}
		engine := NewRandom(newMockGame(root), WithSeed(1))

		for i := 0; i < 50; i++ {
			require.Equal(t, "b", engine.BestMove())
		}
	})

	t.Run("moves are drawn by weight", func(t *testing.T) {
		root := &mockNode{
			side:  game.White,
			moves: []game.MoveValue{{Move: "x", Value: 3}, {Move: "y", Value: 1}},
		}
		engine := NewRandom(newMockGame(root), WithSeed(7))

		counts := map[string]int{}
		const draws = 4000
		for i := 0; i < draws; i++ {
			counts[engine.BestMoveWithin(time.Second).Get()]++
		}
		require.InDelta(t, 0.75, float64(counts["x"])/draws, 0.05)
	})

	t.Run("no moves panics", func(t *testing.T) {
		engine := NewRandom(newMockGame(&mockNode{side: game.White}))
		requirePanicsWith(t, ErrNoMoves, func() { engine.BestMove() })
	})

	t.Run("no valid moves panics", func(t *testing.T) {
		root := &mockNode{
			side:    game.White,
			moves:   []game.MoveValue{{Move: "a", Value: 1}},
			invalid: map[string]bool{"a": true},
		}
		engine := NewRandom(newMockGame(root))
		requirePanicsWith(t, ErrNoValidMoves, func() { engine.BestMove() })
	})
}

func TestMinMax(t *testing.T) {
	t.Run("white maximizes and black minimizes", func(t *testing.T) {
		white := scoredMoves(game.White,
			game.MoveValue{Move: "a", Value: -1},
			game.MoveValue{Move: "b", Value: 4},
			game.MoveValue{Move: "c", Value: 2})
		require.Equal(t, "b", NewMinMax(newMockGame(white), WithDepth(1)).BestMove())

		black := scoredMoves(game.Black,
			game.MoveValue{Move: "a", Value: -1},
			game.MoveValue{Move: "b", Value: 4},
			game.MoveValue{Move: "c", Value: 2})
		require.Equal(t, "a", NewMinMax(newMockGame(black), WithDepth(1)).BestMove())
	})

	t.Run("pruning keeps the minimax result", func(t *testing.T) {
		root := &mockNode{
			side:  game.White,
			moves: []game.MoveValue{{Move: "a", Value: 1}, {Move: "b", Value: 1}},
			children: map[string]*mockNode{
				"a": scoredMoves(game.Black,
					game.MoveValue{Move: "a1", Value: 3},
					game.MoveValue{Move: "a2", Value: 5}),
				"b": scoredMoves(game.Black,
					game.MoveValue{Move: "b1", Value: 2},
					game.MoveValue{Move: "b2", Value: 9}),
			},
		}
		engine := NewMinMax(newMockGame(root), WithDepth(2), WithMetrics())

		require.Equal(t, "a", engine.BestMove())
		metric := engine.LastMetrics()
		require.Equal(t, "minmax", metric.Engine)
		require.Equal(t, 2, metric.Depth)
		require.Equal(t, 6, metric.Nodes, "b2 should be pruned")
	})

	t.Run("ties are picked uniformly", func(t *testing.T) {
		root := &mockNode{
			side: game.White,
			moves: []game.MoveValue{
				{Move: "a", Value: 1}, {Move: "b", Value: 1}, {Move: "c", Value: 1},
			},
			children: map[string]*mockNode{
				"a": scoredMoves(game.Black,
					game.MoveValue{Move: "a1", Value: 1},
					game.MoveValue{Move: "a2", Value: 2}),
				"b": scoredMoves(game.Black,
					game.MoveValue{Move: "b1", Value: 1},
					game.MoveValue{Move: "b2", Value: 3}),
				"c": scoredMoves(game.Black,
					game.MoveValue{Move: "c1", Value: 0},
					game.MoveValue{Move: "c2", Value: 5}),
			},
		}

		seen := map[string]bool{}
		for seed := uint64(0); seed < 64; seed++ {
			seen[NewMinMax(newMockGame(root), WithDepth(2), WithSeed(seed)).BestMove()] = true
		}
		require.Equal(t, map[string]bool{"a": true, "b": true}, seen)
	})

	t.Run("finished game has no best move", func(t *testing.T) {
		engine := NewMinMax(newMockGame(leaf(3)))
		require.Equal(t, "", engine.BestMove())
	})

	t.Run("game is not modified", func(t *testing.T) {
		g := newMockGame(coin(game.White, 1, 1))
		NewMinMax(g, WithDepth(3)).BestMoveWithin(time.Second).Get()
		require.Equal(t, "", g.State())
	})
}

// twoCoins offers a move a that White wins with probability 0.6 and a move
// b that White wins with probability 0.4.
func twoCoins() *mockNode {
	return &mockNode{
		side:  game.White,
		moves: []game.MoveValue{{Move: "b", Value: 1}, {Move: "a", Value: 1}},
		children: map[string]*mockNode{
			"a": coin(game.Black, 3, 2),
			"b": coin(game.Black, 2, 3),
		},
	}
}

func TestMonteCarlo(t *testing.T) {
	t.Run("more playouts find the better move", func(t *testing.T) {
		for seed := uint64(1); seed <= 5; seed++ {
			engine := NewMonteCarlo(newMockGame(twoCoins()),
				WithPlayouts(500), WithSeed(seed), WithMetrics())

			calc := engine.BestMoveWithin(time.Minute)
			require.Equal(t, "a", calc.Get(), fmt.Sprintf("seed %d", seed))
			metric := engine.LastMetrics()
			require.Equal(t, 500, metric.Chunks)
			require.Equal(t, 1000, metric.Playouts)
		}
	})

	t.Run("the better move is found more often with more playouts", func(t *testing.T) {
		found := func(playouts int) int {
			count := 0
			for seed := uint64(1); seed <= 100; seed++ {
				engine := NewMonteCarlo(newMockGame(twoCoins()), WithPlayouts(playouts), WithSeed(seed))
				if engine.BestMoveWithin(time.Minute).Get() == "a" {
					count++
				}
			}
			return count
		}

		few, many := found(1), found(200)
		require.Greater(t, many, few)
		require.Less(t, few, 60, "A single round mostly ties or misjudges the coins")
		require.GreaterOrEqual(t, many, 90)
	})

	t.Run("single playout still returns a valid move", func(t *testing.T) {
		engine := NewMonteCarlo(newMockGame(twoCoins()), WithPlayouts(1), WithSeed(3))
		require.Contains(t, []string{"a", "b"}, engine.BestMove())
	})

	t.Run("single valid move is returned immediately", func(t *testing.T) {
		root := &mockNode{
			side:    game.White,
			moves:   []game.MoveValue{{Move: "a", Value: 1}, {Move: "b", Value: 1}},
			invalid: map[string]bool{"b": true},
		}
		calc := NewMonteCarlo(newMockGame(root)).BestMoveWithin(time.Hour)
		require.True(t, calc.Done())
		require.Equal(t, "a", calc.Get())
	})

	t.Run("no valid moves panics", func(t *testing.T) {
		root := &mockNode{
			side:    game.White,
			moves:   []game.MoveValue{{Move: "a", Value: 1}},
			invalid: map[string]bool{"a": true},
		}
		engine := NewMonteCarlo(newMockGame(root))
		requirePanicsWith(t, ErrNoValidMoves, func() { engine.BestMoveWithin(time.Second) })
	})

	t.Run("endless playouts are cut at max turns", func(t *testing.T) {
		loop := &mockNode{
			side:  game.White,
			moves: []game.MoveValue{{Move: "x", Value: 1}, {Move: "y", Value: 1}},
		}
		loop.children = map[string]*mockNode{"x": loop, "y": loop}
		engine := NewMonteCarlo(newMockGame(loop),
			WithMaxTurns(10), WithPlayouts(3), WithMetrics(), WithSeed(1))

		require.Equal(t, "x", engine.BestMoveWithin(time.Minute).Get(),
			"Equal values should keep the first move")
		require.Equal(t, 6, engine.LastMetrics().Playouts)
	})

	t.Run("stop ends the search", func(t *testing.T) {
		engine := NewMonteCarlo(newMockGame(twoCoins()), WithSeed(5))
		calc := engine.BestMoveWithin(time.Hour)
		time.Sleep(20 * time.Millisecond)
		calc.Stop()

		result := make(chan string)
		go func() { result <- calc.Get() }()
		select {
		case move := <-result:
			require.Contains(t, []string{"a", "b"}, move)
		case <-time.After(5 * time.Second):
			t.Fatal("Search should end after stop")
		}
	})
}

func TestLookup(t *testing.T) {
	t.Run("first recommending table wins", func(t *testing.T) {
		g := newMockGame(twoCoins())
		empty := &mockTable{}
		first := &mockTable{move: "a"}
		second := &mockTable{move: "b"}
		engine := NewLookup(NewMinMax(g, WithMetrics()), empty, first, second)

		require.Equal(t, "a", engine.BestMove())
		calc := engine.BestMoveWithin(time.Second)
		require.True(t, calc.Done())
		require.Equal(t, "a", calc.Get())
		require.Equal(t, 0, second.calls)
		require.True(t, engine.LastMetrics().Lookup)
	})

	t.Run("invalid recommendations are skipped", func(t *testing.T) {
		root := scoredMoves(game.White,
			game.MoveValue{Move: "a", Value: 1},
			game.MoveValue{Move: "b", Value: 2})
		root.invalid = map[string]bool{"b": true}
		g := newMockGame(root)
		engine := NewLookup(NewMinMax(g, WithDepth(1)),
			&mockTable{move: "zz"}, &mockTable{move: "b"}, &mockTable{move: "a"})

		require.Equal(t, "a", engine.BestMove())
	})

	t.Run("engine answers when no table knows a move", func(t *testing.T) {
		g := newMockGame(scoredMoves(game.White,
			game.MoveValue{Move: "a", Value: 1},
			game.MoveValue{Move: "b", Value: 2}))
		engine := NewLookup(NewMinMax(g, WithDepth(1), WithMetrics()), &mockTable{})

		require.Equal(t, "b", engine.BestMoveWithin(time.Second).Get())
		metric := engine.LastMetrics()
		require.False(t, metric.Lookup)
		require.Equal(t, "minmax", metric.Engine)
		require.Same(t, g, engine.Game())
	})
}
