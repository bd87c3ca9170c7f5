package chess

import (
	"fmt"

	"multigame/game"
)

const (
	// fiftyMoveLimit is the number of half moves without capture or pawn
	// advance after which the game is drawn.
	fiftyMoveLimit = 100

	wonValue   = 100.0
	tempoValue = 0.5
	checkValue = 1.0
)

var startRanks = [8]Piece{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Chess implements game.Game for standard chess without en passant.
type Chess struct {
	positions     []Position
	sideToMove    game.Side
	castles       []Position // rooks that may still castle
	halfMoveClock int
	moveNumber    int

	analysis *Analysis // nil when stale
}

func New() *Chess {
	c := &Chess{}
	c.SetStartPosition()
	return c
}

func (c *Chess) SetStartPosition() {
	c.Clear()
	for x, piece := range startRanks {
		c.positions = append(c.positions, NewPosition(piece, game.White, x, 0))
	}
	for x := 0; x < 8; x++ {
		c.positions = append(c.positions, NewPosition(Pawn, game.White, x, 1))
	}
	for x, piece := range startRanks {
		c.positions = append(c.positions, NewPosition(piece, game.Black, x, 7))
	}
	for x := 0; x < 8; x++ {
		c.positions = append(c.positions, NewPosition(Pawn, game.Black, x, 6))
	}
	c.castles = []Position{
		NewPosition(Rook, game.White, 7, 0),
		NewPosition(Rook, game.White, 0, 0),
		NewPosition(Rook, game.Black, 7, 7),
		NewPosition(Rook, game.Black, 0, 7),
	}
}

// Clear removes all pieces and castle rights and resets the counters.
// White is to move.
func (c *Chess) Clear() {
	c.positions = c.positions[:0]
	c.castles = c.castles[:0]
	c.sideToMove = game.White
	c.halfMoveClock = 0
	c.moveNumber = 1
	c.invalidate()
}

// AddPosition places a piece given as FEN letter and square, e.g. "Ke4" or
// "pb7".
func (c *Chess) AddPosition(s string) error {
	if len(s) != 3 {
		return fmt.Errorf("%w: position %q", game.ErrInvalidState, s)
	}
	piece, side, ok := PieceOf(s[0])
	if !ok {
		return fmt.Errorf("%w: unknown piece in position %q", game.ErrInvalidState, s)
	}
	x, y, err := parseSquare(s[1:])
	if err != nil {
		return fmt.Errorf("%w: position %q", game.ErrInvalidState, s)
	}
	if _, ok := c.PositionAt(x, y); ok {
		return fmt.Errorf("%w: square of %q is occupied", game.ErrInvalidState, s)
	}
	c.positions = append(c.positions, NewPosition(piece, side, x, y))
	c.invalidate()
	return nil
}

func (c *Chess) SetSideToMove(side game.Side) {
	c.sideToMove = side
	c.invalidate()
}

func (c *Chess) SideToMove() game.Side {
	return c.sideToMove
}

// Positions returns a copy of all pieces on the board.
func (c *Chess) Positions() []Position {
	return append([]Position(nil), c.positions...)
}

func (c *Chess) PositionAt(x, y int) (Position, bool) {
	for _, p := range c.positions {
		if p.X == x && p.Y == y {
			return p, true
		}
	}
	return Position{}, false
}

// Analysis returns the move and attack analysis of the current position.
// It is computed on first use after every change.
func (c *Chess) Analysis() *Analysis {
	if c.analysis == nil {
		c.analysis = newAnalysis(c.positions, c.castles)
	}
	return c.analysis
}

func (c *Chess) invalidate() {
	c.analysis = nil
}

func (c *Chess) IsCheck(side game.Side) bool {
	return c.Analysis().IsCheck(side)
}

// IsCheckmate reports whether the side to move is in check without a valid move.
func (c *Chess) IsCheckmate() bool {
	return c.IsCheck(c.sideToMove) && !c.hasValidMove()
}

// IsStalemate reports whether the side to move is not in check but has no valid move.
func (c *Chess) IsStalemate() bool {
	return !c.IsCheck(c.sideToMove) && !c.hasValidMove()
}

func (c *Chess) HalfMoveClock() int {
	return c.halfMoveClock
}

func (c *Chess) MoveNumber() int {
	return c.moveNumber
}

func (c *Chess) AllMoves() []game.MoveValue {
	a := c.Analysis()
	var moves []game.MoveValue
	for _, p := range c.positions {
		if p.Side != c.sideToMove {
			continue
		}
		for _, m := range a.Moves(p) {
			moves = append(moves, game.MoveValue{Move: m.UCI(), Value: m.Value()})
		}
	}
	return moves
}

// IsValid reports whether move does not leave the own king in check.
// A king may not castle out of or through check.
func (c *Chess) IsValid(move string) bool {
	if king, direction, ok := c.castling(move); ok {
		if c.IsCheck(c.sideToMove) {
			return false
		}
		crossed := c.clone()
		crossed.execute(NewMove(king, king.X+direction, king.Y, nil, NoPiece))
		if crossed.IsCheck(c.sideToMove) {
			return false
		}
	}
	local := c.clone()
	local.Move(move)
	return !local.IsCheck(c.sideToMove)
}

func (c *Chess) ValidMoves() []game.MoveValue {
	return game.FilterValid(c)
}

func (c *Chess) ValidMovesWithScore() []game.MoveValue {
	return game.ScoreValid(c)
}

// hasValidMove stops at the first valid move.
func (c *Chess) hasValidMove() bool {
	for _, mv := range c.AllMoves() {
		if c.IsValid(mv.Move) {
			return true
		}
	}
	return false
}

func (c *Chess) IsFinished() bool {
	return c.halfMoveClock >= fiftyMoveLimit || !c.hasValidMove()
}

// Winner returns the opponent of a checkmated side to move, otherwise None.
func (c *Chess) Winner() game.Side {
	if c.IsCheckmate() {
		return c.sideToMove.Other()
	}
	return game.None
}

// Score returns the value of the white pieces minus the value of the black
// pieces. A finished game scores +-100 for the winner and 0 for a draw.
func (c *Chess) Score() float64 {
	if !c.hasValidMove() {
		switch {
		case !c.IsCheck(c.sideToMove):
			return 0
		case c.sideToMove == game.White:
			return -wonValue
		default:
			return wonValue
		}
	}
	if c.halfMoveClock >= fiftyMoveLimit {
		return 0
	}
	return c.sideValue(game.White) - c.sideValue(game.Black)
}

func (c *Chess) sideValue(side game.Side) float64 {
	a := c.Analysis()
	value := 0.0
	if side == c.sideToMove && !a.IsCheck(side) {
		value += tempoValue
	}
	if a.IsCheck(side.Other()) {
		value += checkValue
	}
	for _, p := range c.positions {
		if p.Side == side {
			value += a.Value(p)
		}
	}
	return value
}

// Move executes a move in coordinate notation, e.g. "e2e4", "e7e8q" or the
// king move "e1g1" for castling.
func (c *Chess) Move(move string) {
	if len(move) != 4 && len(move) != 5 {
		panic(fmt.Errorf("%w: %q", game.ErrInvalidMove, move))
	}
	sourceX, sourceY, err := parseSquare(move[0:2])
	if err != nil {
		panic(err)
	}
	targetX, targetY, err := parseSquare(move[2:4])
	if err != nil {
		panic(err)
	}
	promotion := NoPiece
	if len(move) == 5 {
		piece, _, ok := PieceOf(move[4])
		if !ok || piece == Pawn || piece == King {
			panic(fmt.Errorf("%w: promotion in %q", game.ErrInvalidMove, move))
		}
		promotion = piece
	}

	source, ok := c.PositionAt(sourceX, sourceY)
	if !ok {
		panic(fmt.Errorf("%w: no piece on %s in %q", game.ErrInvalidMove, move[0:2], move))
	}

	if source.Piece == King && targetY == sourceY && abs(targetX-sourceX) == 2 {
		rook, ok := c.castleRook(source, targetX > sourceX)
		if !ok {
			panic(fmt.Errorf("%w: %s may not castle in %q", game.ErrInvalidMove, source.Side, move))
		}
		c.execute(NewMove(source, targetX, targetY, &rook, NoPiece))
		return
	}

	var kill *Position
	if target, ok := c.PositionAt(targetX, targetY); ok {
		if target.Side == source.Side {
			panic(fmt.Errorf("%w: own piece on %s in %q", game.ErrInvalidMove, move[2:4], move))
		}
		kill = &target
	}
	promotes := source.Piece == Pawn && targetY == lastRow(source.Side)
	if promotion != NoPiece && !promotes {
		panic(fmt.Errorf("%w: %s may not promote in %q", game.ErrInvalidMove, source.Piece, move))
	}
	if promotes && promotion == NoPiece {
		promotion = Queen
	}
	c.execute(NewMove(source, targetX, targetY, kill, promotion))
}

// castling returns the king and the direction of a castling move.
func (c *Chess) castling(move string) (Position, int, bool) {
	if len(move) != 4 || move[1] != move[3] {
		return Position{}, 0, false
	}
	x, y, err := parseSquare(move[0:2])
	if err != nil {
		return Position{}, 0, false
	}
	king, ok := c.PositionAt(x, y)
	if !ok || king.Piece != King {
		return Position{}, 0, false
	}
	switch int(move[2]) - int(move[0]) {
	case 2:
		return king, 1, true
	case -2:
		return king, -1, true
	default:
		return Position{}, 0, false
	}
}

func (c *Chess) castleRook(king Position, right bool) (Position, bool) {
	for _, rook := range c.castles {
		if rook.Side == king.Side && rook.Y == king.Y && (rook.X > king.X) == right {
			return rook, true
		}
	}
	return Position{}, false
}

func (c *Chess) execute(m Move) {
	source := m.Source
	c.remove(source)

	if castle, ok := m.Castle(); ok {
		c.remove(castle)
		direction := 1
		if castle.X < source.X {
			direction = -1
		}
		c.positions = append(c.positions,
			NewPosition(King, source.Side, source.X+2*direction, source.Y),
			NewPosition(Rook, source.Side, source.X+direction, source.Y))
	} else {
		piece := source.Piece
		if m.Promotion != NoPiece {
			piece = m.Promotion
		}
		c.positions = append(c.positions, NewPosition(piece, source.Side, m.TargetX, m.TargetY))
	}

	kill, killed := m.Kill()
	if killed {
		c.remove(kill)
	}
	c.updateCastles(source, kill, killed)

	c.sideToMove = c.sideToMove.Other()
	if c.sideToMove == game.White {
		c.moveNumber++
	}
	if killed || source.Piece == Pawn {
		c.halfMoveClock = 0
	} else {
		c.halfMoveClock++
	}
	c.invalidate()
}

// updateCastles drops the castle rights lost by moving the king or a castle
// rook, or by losing a castle rook.
func (c *Chess) updateCastles(source, kill Position, killed bool) {
	castles := c.castles[:0]
	for _, rook := range c.castles {
		switch {
		case source.Piece == King && rook.Side == source.Side:
		case rook == source:
		case killed && rook == kill:
		default:
			castles = append(castles, rook)
		}
	}
	c.castles = castles
}

func (c *Chess) remove(p Position) {
	for i, existing := range c.positions {
		if existing == p {
			c.positions = append(c.positions[:i], c.positions[i+1:]...)
			return
		}
	}
}

func (c *Chess) Clone() game.Game {
	return c.clone()
}

func (c *Chess) clone() *Chess {
	return &Chess{
		positions:     append([]Position(nil), c.positions...),
		sideToMove:    c.sideToMove,
		castles:       append([]Position(nil), c.castles...),
		halfMoveClock: c.halfMoveClock,
		moveNumber:    c.moveNumber,
		analysis:      c.analysis,
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
