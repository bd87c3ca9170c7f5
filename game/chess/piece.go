package chess

import (
	"multigame/game"
)

type Piece int8

const (
	NoPiece Piece = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

type pieceInfo struct {
	char       byte
	value      float64
	maxMoves   int
	maxAttacks int
}

var pieceInfos = [...]pieceInfo{
	NoPiece: {char: ' '},
	Pawn:    {char: 'p', value: 1, maxMoves: 4, maxAttacks: 2},
	Knight:  {char: 'n', value: 3, maxMoves: 8, maxAttacks: 8},
	Bishop:  {char: 'b', value: 3, maxMoves: 13, maxAttacks: 4},
	Rook:    {char: 'r', value: 5, maxMoves: 14, maxAttacks: 4},
	Queen:   {char: 'q', value: 9, maxMoves: 27, maxAttacks: 8},
	King:    {char: 'k', value: 4, maxMoves: 8, maxAttacks: 8},
}

var promotions = []Piece{Knight, Bishop, Rook, Queen}

// Positional multipliers, indexed by file or by rank as seen from the owner.
var (
	pawnValueX    = [8]float64{1.0, 1.02, 1.05, 1.08, 1.08, 1.05, 1.02, 1.0}
	pawnValueY    = [8]float64{1.0, 1.1, 1.3, 1.6, 2.0, 2.5, 3.1, 3.8}
	knightValueXY = [8]float64{1.0, 1.01, 1.03, 1.05, 1.05, 1.03, 1.01, 1.0}
)

// Char returns the lowercase letter of the piece.
func (p Piece) Char() byte {
	return pieceInfos[p].char
}

// CharOf returns the FEN letter: uppercase for White, lowercase for Black.
func (p Piece) CharOf(side game.Side) byte {
	c := p.Char()
	if side == game.White {
		return c - 'a' + 'A'
	}
	return c
}

func (p Piece) MaxMoves() int {
	return pieceInfos[p].maxMoves
}

func (p Piece) MaxAttacks() int {
	return pieceInfos[p].maxAttacks
}

// Value returns the material value of the piece standing on (x, y).
func (p Piece) Value(side game.Side, x, y int) float64 {
	value := pieceInfos[p].value
	switch p {
	case Pawn:
		value *= pawnValueY[pawnLine(side, y)]
		value *= pawnValueX[x]
	case Knight:
		value *= knightValueXY[x]
		value *= knightValueXY[y]
	}
	return value
}

func (p Piece) String() string {
	switch p {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// PieceOf parses a FEN letter into a piece and its side.
func PieceOf(c byte) (Piece, game.Side, bool) {
	side := game.Black
	if c >= 'A' && c <= 'Z' {
		side = game.White
		c = c - 'A' + 'a'
	}
	for p := Pawn; p <= King; p++ {
		if pieceInfos[p].char == c {
			return p, side, true
		}
	}
	return NoPiece, game.None, false
}

func pawnLine(side game.Side, y int) int {
	if side == game.Black {
		return 7 - y
	}
	return y
}

func pawnDirection(side game.Side) int {
	if side == game.Black {
		return -1
	}
	return 1
}

func pawnStart(side game.Side) int {
	if side == game.Black {
		return 6
	}
	return 1
}

func lastRow(side game.Side) int {
	if side == game.Black {
		return 0
	}
	return 7
}

func baseRow(side game.Side) int {
	if side == game.Black {
		return 7
	}
	return 0
}
