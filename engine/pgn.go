package engine

import (
	"fmt"

	"multigame/game"

	"github.com/notnil/chess"
)

// PGN converts a chess game given as start FEN and moves in UCI notation to
// portable game notation.
func PGN(start string, moves []string, winner game.Side, finished bool, tags map[string]string) (string, error) {
	option, err := chess.FEN(start)
	if err != nil {
		return "", fmt.Errorf("%w: %v", game.ErrInvalidState, err)
	}
	g := chess.NewGame(option)
	if start != chess.StartingPosition().String() {
		g.AddTagPair("SetUp", "1")
		g.AddTagPair("FEN", start)
	}
	for key, value := range tags {
		g.AddTagPair(key, value)
	}

	for i, move := range moves {
		m, ok := findMove(g, move)
		if !ok {
			return "", fmt.Errorf("%w: move %d %s", game.ErrInvalidMove, i+1, move)
		}
		if err := g.Move(m); err != nil {
			return "", fmt.Errorf("%w: move %d %s: %v", game.ErrInvalidMove, i+1, move, err)
		}
	}

	if finished && g.Outcome() == chess.NoOutcome {
		switch winner {
		case game.White:
			g.Resign(chess.Black)
		case game.Black:
			g.Resign(chess.White)
		default:
			if err := g.Draw(chess.FiftyMoveRule); err != nil {
				g.AddTagPair("Result", string(chess.Draw))
			}
		}
	}
	return g.String(), nil
}

func findMove(g *chess.Game, move string) (*chess.Move, bool) {
	notation := chess.UCINotation{}
	for _, m := range g.ValidMoves() {
		if notation.Encode(g.Position(), m) == move {
			return m, true
		}
	}
	return nil, false
}
