package uci

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"multigame/agent"
	"multigame/game"
	"multigame/game/stones"
	"multigame/meta"
	"multigame/searcher"

	"github.com/stretchr/testify/require"
)

func testFactory(name string) (searcher.Engine, error) {
	g, err := agent.NewGame(name)
	if err != nil {
		return nil, err
	}
	config := agent.Config{Kind: agent.MinMax, Depth: 1, Seed: 1}
	if name == agent.ConnectFour {
		config = agent.Config{Kind: agent.MonteCarlo, Seed: 1}
	}
	return agent.NewEngine(name, g, config)
}

func run(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	p, err := New(strings.NewReader(input), &out, testFactory, agent.TicTacToe)
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))
	return out.String()
}

func TestProtocol(t *testing.T) {
	t.Run("handshake", func(t *testing.T) {
		require.Equal(t, "id name multigame\nid author multigame authors\nuciok\nreadyok\n",
			run(t, "uci\n\nisready\n"))
	})

	t.Run("position and valid moves", func(t *testing.T) {
		expected := stones.New(stones.TicTacToe())
		expected.Move("bb")
		expected.Move("aa")

		out := run(t, "position startpos moves bb aa\nvalidmoves\n")
		require.Equal(t, "validmoves "+strings.Join(game.Moves(expected.ValidMoves()), " ")+"\n", out)
	})

	t.Run("finished and winner", func(t *testing.T) {
		out := run(t, "position startpos moves aa ab ba bb ca\nfinished\nwinner\n")
		require.Equal(t, "finished true\nwinner White\n", out)
	})

	t.Run("position from state", func(t *testing.T) {
		out := run(t, "position fen b2/1w1/3 w moves cc\nd\n")
		require.Contains(t, out, "FEN b2/1w1/2w b\n")
	})

	t.Run("invalid input keeps the game", func(t *testing.T) {
		out := run(t, "move aa\nmove aa\nmove zz\nposition fen x/y\nposition startpos moves bb bb\nd\n")
		require.Contains(t, out, "info string invalid move aa\n")
		require.Contains(t, out, "info string invalid move zz\n")
		require.Contains(t, out, "info string invalid move bb\n")
		require.Contains(t, out, "info string invalid state")
		require.Contains(t, out, "FEN w2/3/3 b\n")
	})

	t.Run("go plays the best move", func(t *testing.T) {
		out := run(t, "position startpos moves aa ab ba bb\ngo movetime 1600\nd\n")
		require.True(t, strings.HasPrefix(out, "bestmove ca\n"), out)
		require.Contains(t, out, "FEN www/bb1/3 b\n")
	})

	t.Run("go on a finished game", func(t *testing.T) {
		out := run(t, "position startpos moves aa ab ba bb ca\ngo\n")
		require.Equal(t, "bestmove (none)\n", out)
	})

	t.Run("switch game", func(t *testing.T) {
		out := run(t, "game chess\nposition fen 8/8/8/8/8/8/8/K6k w - - 0 1\nd\ngame mill\n")
		require.Contains(t, out, "FEN 8/8/8/8/8/8/8/K6k w - - 0 1\n")
		require.Contains(t, out, `info string unknown game: "mill"`)
	})

	t.Run("stop ends an infinite search", func(t *testing.T) {
		done := make(chan string)
		go func() {
			done <- run(t, "game connectfour\ngo infinite\nstop\nisready\n")
		}()

		select {
		case out := <-done:
			require.True(t, strings.HasPrefix(out, "bestmove "), out)
			require.True(t, strings.HasSuffix(out, "readyok\n"), out)
		case <-time.After(10 * time.Second):
			t.Fatal("Stop should end the search")
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		require.Equal(t, "Unknown command: hello world\n", run(t, "hello world\n"))
	})

	t.Run("quit ends the loop", func(t *testing.T) {
		require.Equal(t, "readyok\n", run(t, "isready\nquit\nisready\n"))
	})
}

func TestThinkingTime(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		side     game.Side
		expected time.Duration
	}{
		{"default", "", game.White, meta.MOVE_TIME},
		{"movetime keeps a reserve", "movetime 3000", game.White, 1500 * time.Millisecond},
		{"movetime below reserve", "movetime 1000", game.White, 0},
		{"depth", "depth 4", game.Black, 400 * time.Millisecond},
		{"white clock", "wtime 60000 btime 20000", game.White, 3000 * time.Millisecond},
		{"black clock", "wtime 60000 btime 20000", game.Black, 1000 * time.Millisecond},
		{"moves to go", "wtime 60000 btime 60000 movestogo 10", game.White, 12000 * time.Millisecond},
		{"one clock is not enough", "wtime 60000", game.White, meta.MOVE_TIME},
		{"malformed number", "movetime soon", game.White, meta.MOVE_TIME},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ThinkingTime(strings.Fields(tt.args), tt.side))
		})
	}

	require.Greater(t, ThinkingTime([]string{"infinite"}, game.White), time.Hour)
}
