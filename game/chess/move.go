package chess

import (
	"fmt"
	"strings"

	"multigame/game"
)

const (
	killValueFactor    = 5.0
	convertValueFactor = 5.0
)

// Move is a candidate move of a single piece. The kill-or-castle slot holds
// the captured enemy piece or, for castling, the own rook; which of the two
// it is follows from comparing sides.
type Move struct {
	Source    Position
	TargetX   int
	TargetY   int
	Promotion Piece

	other    Position
	hasOther bool
	value    float64
}

func NewMove(source Position, targetX, targetY int, killOrCastle *Position, promotion Piece) Move {
	if !onBoard(targetX, targetY) {
		panic(fmt.Errorf("%w: target %d,%d is off the board", game.ErrInvalidMove, targetX, targetY))
	}
	m := Move{
		Source:    source,
		TargetX:   targetX,
		TargetY:   targetY,
		Promotion: promotion,
	}
	if killOrCastle != nil {
		m.other = *killOrCastle
		m.hasOther = true
	}
	m.value = m.calculateValue()
	return m
}

// Kill returns the captured enemy position, if any.
func (m Move) Kill() (Position, bool) {
	if m.hasOther && m.other.Side != m.Source.Side {
		return m.other, true
	}
	return Position{}, false
}

// Castle returns the rook castled with, if any.
func (m Move) Castle() (Position, bool) {
	if m.hasOther && m.other.Side == m.Source.Side {
		return m.other, true
	}
	return Position{}, false
}

// Value is the heuristic value computed once at construction.
func (m Move) Value() float64 {
	return m.value
}

func (m Move) TargetSquare() string {
	return squareString(m.TargetX, m.TargetY)
}

func (m Move) calculateValue() float64 {
	src := m.Source
	result := 1.0
	result -= src.Piece.Value(src.Side, src.X, src.Y)
	result += src.Piece.Value(src.Side, m.TargetX, m.TargetY)

	if kill, ok := m.Kill(); ok {
		result += kill.Piece.Value(kill.Side, kill.X, kill.Y) * killValueFactor
	}
	if castle, ok := m.Castle(); ok {
		result += castle.Piece.Value(castle.Side, castle.X, castle.Y)
	}
	if m.Promotion != NoPiece {
		result += m.Promotion.Value(src.Side, src.X, src.Y) * convertValueFactor
	}
	return result
}

// UCI returns the move in coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) UCI() string {
	var sb strings.Builder
	sb.WriteString(m.Source.Square())
	sb.WriteString(m.TargetSquare())
	if m.Promotion != NoPiece {
		sb.WriteByte(m.Promotion.Char())
	}
	return sb.String()
}

// String returns a descriptive notation including captures and the value,
// e.g. "Pe4xpd5(5.123)".
func (m Move) String() string {
	var sb strings.Builder
	sb.WriteString(m.Source.String())
	if kill, ok := m.Kill(); ok {
		sb.WriteByte('x')
		sb.WriteByte(kill.Char())
	}
	if castle, ok := m.Castle(); ok {
		sb.WriteByte('-')
		sb.WriteByte(castle.Char())
	}
	sb.WriteString(m.TargetSquare())
	if m.Promotion != NoPiece {
		sb.WriteByte('=')
		sb.WriteByte(m.Promotion.CharOf(m.Source.Side))
	}
	fmt.Fprintf(&sb, "(%4.3f)", m.value)
	return sb.String()
}
