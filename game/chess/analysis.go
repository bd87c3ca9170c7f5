package chess

import (
	"multigame/game"
)

var (
	knightOffsets = [8][2]int{{-2, 1}, {-1, 2}, {1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}

	bishopDirections = [][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	rookDirections   = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	queenDirections  = append(append([][2]int{}, rookDirections...), bishopDirections...)
)

// Analysis is a read-only snapshot of a chess position: for every occupied
// square the semi-legal moves, the attacked enemy pieces and the defended own
// pieces, plus the inverse attacker and defender indexes.
type Analysis struct {
	board    [64]Position
	occupied [64]bool

	moves     map[Position][]Move
	attacks   map[Position][]Position
	defends   map[Position][]Position
	attackers map[Position][]Position
	defenders map[Position][]Position

	whiteCheck bool
	blackCheck bool
}

func newAnalysis(positions []Position, castles []Position) *Analysis {
	a := &Analysis{
		moves:     make(map[Position][]Move, len(positions)),
		attacks:   make(map[Position][]Position, len(positions)),
		defends:   make(map[Position][]Position, len(positions)),
		attackers: make(map[Position][]Position),
		defenders: make(map[Position][]Position),
	}
	for _, p := range positions {
		a.board[p.X+p.Y*8] = p
		a.occupied[p.X+p.Y*8] = true
	}

	for _, p := range positions {
		a.analyse(p, castles)
	}

	for _, p := range positions {
		if p.Piece != King || len(a.attackers[p]) == 0 {
			continue
		}
		switch p.Side {
		case game.White:
			a.whiteCheck = true
		case game.Black:
			a.blackCheck = true
		}
	}
	return a
}

// PositionAt returns the piece on (x, y), if any.
func (a *Analysis) PositionAt(x, y int) (Position, bool) {
	if !onBoard(x, y) {
		return Position{}, false
	}
	return a.board[x+y*8], a.occupied[x+y*8]
}

func (a *Analysis) Moves(p Position) []Move {
	return a.moves[p]
}

func (a *Analysis) Attacks(p Position) []Position {
	return a.attacks[p]
}

func (a *Analysis) Defends(p Position) []Position {
	return a.defends[p]
}

func (a *Analysis) Attackers(p Position) []Position {
	return a.attackers[p]
}

func (a *Analysis) Defenders(p Position) []Position {
	return a.defenders[p]
}

// IsCheck reports whether the king of side is attacked.
func (a *Analysis) IsCheck(side game.Side) bool {
	switch side {
	case game.White:
		return a.whiteCheck
	case game.Black:
		return a.blackCheck
	default:
		panic("side " + side.String() + " not supported")
	}
}

// Value returns the material value of p adjusted by its mobility, the pieces
// it attacks and defends and the pieces attacking and defending it.
func (a *Analysis) Value(p Position) float64 {
	value := p.Piece.Value(p.Side, p.X, p.Y)

	switch p.Piece {
	case Knight, Bishop, Rook, Queen:
		value *= 1.0 + ratio(len(a.moves[p]), p.Piece.MaxMoves())*0.1
	}

	value *= 1.0 + ratio(len(a.attacks[p]), p.Piece.MaxAttacks())*0.2
	value *= 1.0 + ratio(len(a.defends[p]), p.Piece.MaxAttacks())*0.15

	value *= 1.0 + ratio(len(a.defenders[p]), 16)*0.1
	value *= 1.0 - ratio(len(a.attackers[p]), 16)*0.1

	return value
}

func ratio(n, max int) float64 {
	return float64(n) / float64(max)
}

type collector struct {
	moves   []Move
	attacks []Position
	defends []Position
}

func (a *Analysis) analyse(p Position, castles []Position) {
	c := &collector{}
	switch p.Piece {
	case Pawn:
		a.addPawnMoves(p, c)
	case Knight:
		a.addOffsetMoves(p, knightOffsets[:], c)
	case Bishop:
		a.addRayMoves(p, bishopDirections, c)
	case Rook:
		a.addRayMoves(p, rookDirections, c)
	case Queen:
		a.addRayMoves(p, queenDirections, c)
	case King:
		a.addOffsetMoves(p, kingOffsets[:], c)
		a.addCastleMoves(p, castles, c)
	}

	a.moves[p] = c.moves
	a.attacks[p] = c.attacks
	a.defends[p] = c.defends
	for _, attacked := range c.attacks {
		a.attackers[attacked] = append(a.attackers[attacked], p)
	}
	for _, defended := range c.defends {
		a.defenders[defended] = append(a.defenders[defended], p)
	}
}

func (a *Analysis) addPawnMoves(p Position, c *collector) {
	direction := pawnDirection(p.Side)
	if a.addPawnMoveIfFree(p, p.X, p.Y+direction, c) && p.Y == pawnStart(p.Side) {
		a.addPawnMoveIfFree(p, p.X, p.Y+2*direction, c)
	}
	a.addPawnMoveMustKill(p, p.X+1, p.Y+direction, c)
	a.addPawnMoveMustKill(p, p.X-1, p.Y+direction, c)
}

func (a *Analysis) addPawnMoveIfFree(p Position, x, y int, c *collector) bool {
	if !onBoard(x, y) {
		return false
	}
	if _, ok := a.PositionAt(x, y); ok {
		return false
	}
	if y == lastRow(p.Side) {
		for _, promotion := range promotions {
			c.moves = append(c.moves, NewMove(p, x, y, nil, promotion))
		}
	} else {
		c.moves = append(c.moves, NewMove(p, x, y, nil, NoPiece))
	}
	return true
}

func (a *Analysis) addPawnMoveMustKill(p Position, x, y int, c *collector) {
	target, ok := a.PositionAt(x, y)
	if !ok {
		return
	}
	if target.Side == p.Side {
		c.defends = append(c.defends, target)
		return
	}
	if y == lastRow(p.Side) {
		for _, promotion := range promotions {
			c.moves = append(c.moves, NewMove(p, x, y, &target, promotion))
		}
	} else {
		c.moves = append(c.moves, NewMove(p, x, y, &target, NoPiece))
	}
	c.attacks = append(c.attacks, target)
}

func (a *Analysis) addOffsetMoves(p Position, offsets [][2]int, c *collector) {
	for _, offset := range offsets {
		a.addMove(p, p.X+offset[0], p.Y+offset[1], c)
	}
}

func (a *Analysis) addRayMoves(p Position, directions [][2]int, c *collector) {
	for _, d := range directions {
		x, y := p.X, p.Y
		for {
			x += d[0]
			y += d[1]
			if !a.addMove(p, x, y, c) {
				break
			}
		}
	}
}

// addMove records the move, attack or defense onto (x, y) and reports
// whether the square was empty, so a ray may continue.
func (a *Analysis) addMove(p Position, x, y int, c *collector) bool {
	if !onBoard(x, y) {
		return false
	}
	target, ok := a.PositionAt(x, y)
	if !ok {
		c.moves = append(c.moves, NewMove(p, x, y, nil, NoPiece))
		return true
	}
	if target.Side != p.Side {
		c.moves = append(c.moves, NewMove(p, x, y, &target, NoPiece))
		c.attacks = append(c.attacks, target)
	} else {
		c.defends = append(c.defends, target)
	}
	return false
}

// addCastleMoves adds the 2-square king move towards every rook that is still
// allowed to castle, if all squares between king and rook are empty.
func (a *Analysis) addCastleMoves(king Position, castles []Position, c *collector) {
	if king.Y != baseRow(king.Side) {
		return
	}
	for _, rook := range castles {
		if rook.Side != king.Side || rook.Y != king.Y {
			continue
		}
		if current, ok := a.PositionAt(rook.X, rook.Y); !ok || current != rook {
			continue
		}
		direction := 1
		if rook.X < king.X {
			direction = -1
		}
		targetX := king.X + 2*direction
		if !onBoard(targetX, king.Y) || !a.emptyBetween(king.X, rook.X, king.Y) {
			continue
		}
		if blocker, ok := a.PositionAt(targetX, king.Y); ok && blocker != rook {
			continue
		}
		c.moves = append(c.moves, NewMove(king, targetX, king.Y, &rook, NoPiece))
	}
}

func (a *Analysis) emptyBetween(x1, x2, y int) bool {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1 + 1; x < x2; x++ {
		if _, ok := a.PositionAt(x, y); ok {
			return false
		}
	}
	return true
}
