package chess

import (
	"fmt"

	"multigame/game"
)

const letters = "abcdefgh"

// Position is a piece of a side standing on a square. Positions are values:
// a move creates new positions instead of changing existing ones.
type Position struct {
	Piece Piece
	Side  game.Side
	X     int
	Y     int
}

func NewPosition(piece Piece, side game.Side, x, y int) Position {
	if !onBoard(x, y) {
		panic(fmt.Errorf("%w: square %d,%d is off the board", game.ErrInvalidMove, x, y))
	}
	return Position{Piece: piece, Side: side, X: x, Y: y}
}

// Char returns the FEN letter of the piece.
func (p Position) Char() byte {
	return p.Piece.CharOf(p.Side)
}

// Square returns the square in algebraic notation, e.g. "e4".
func (p Position) Square() string {
	return squareString(p.X, p.Y)
}

func (p Position) String() string {
	return string(p.Char()) + p.Square()
}

func onBoard(x, y int) bool {
	return x >= 0 && x < 8 && y >= 0 && y < 8
}

func squareString(x, y int) string {
	return string([]byte{letters[x], byte('1' + y)})
}

func parseSquare(s string) (int, int, error) {
	if len(s) != 2 {
		return 0, 0, fmt.Errorf("%w: square %q", game.ErrInvalidMove, s)
	}
	x := int(s[0] - 'a')
	y := int(s[1] - '1')
	if !onBoard(x, y) {
		return 0, 0, fmt.Errorf("%w: square %q", game.ErrInvalidMove, s)
	}
	return x, y, nil
}
