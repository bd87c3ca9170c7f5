package chess

import (
	"testing"

	"multigame/game"

	notnil "github.com/notnil/chess"
	"github.com/stretchr/testify/require"
)

// referenceMoves returns the legal moves computed by github.com/notnil/chess.
func referenceMoves(t *testing.T, fen string) []string {
	t.Helper()
	option, err := notnil.FEN(fen)
	require.NoError(t, err)
	g := notnil.NewGame(option)

	var moves []string
	for _, m := range g.ValidMoves() {
		moves = append(moves, notnil.UCINotation{}.Encode(g.Position(), m))
	}
	return moves
}

// Positions without a possible en passant capture.
func TestValidMovesMatchReference(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"start position", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"},
		{"kiwipete black", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b KQkq - 0 1"},
		{"rook endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"},
		{"promotion with kill", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8"},
		{"pinned pieces", "4k3/8/8/1b6/8/3N4/4K3/4r3 w - - 0 1"},
		{"double check", "4k3/8/8/8/8/5n2/8/r3K3 w - - 0 1"},
		{"black promotions", "8/8/8/8/8/2k5/p6p/4K2R b K - 0 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			require.NoError(t, c.SetState(tt.fen))

			require.ElementsMatch(t, referenceMoves(t, tt.fen), game.Moves(c.ValidMoves()))
		})
	}
}

func TestRandomGamesMatchReference(t *testing.T) {
	c := New()
	// A fixed game that avoids en passant and reaches castling for both sides.
	moves := []string{
		"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "e1g1", "g8f6",
		"d2d3", "e8g8", "c1g5", "h7h6", "g5h4", "d7d6", "b1c3", "c8g4",
	}
	for _, m := range moves {
		require.True(t, game.Contains(c.ValidMoves(), m), "Move %s should be valid in %s", m, c.State())
		c.Move(m)

		require.ElementsMatch(t, referenceMoves(t, c.State()), game.Moves(c.ValidMoves()), "Valid moves of %s", c.State())
	}
}
