package chess

import (
	"fmt"
	"strconv"
	"strings"

	"multigame/game"
)

// SetState parses a FEN string. Only the ranks are required; side to move,
// castling, en passant, half move clock and move number default to
// "w - - 0 1". The en passant field is ignored. On error the game is left
// unchanged.
func (c *Chess) SetState(state string) error {
	fields := strings.Fields(state)
	if len(fields) == 0 || len(fields) > 6 {
		return fmt.Errorf("%w: %q", game.ErrInvalidState, state)
	}

	parsed := &Chess{}
	parsed.Clear()
	positions, err := parseRanks(fields[0])
	if err != nil {
		return fmt.Errorf("%w: %q: %v", game.ErrInvalidState, state, err)
	}
	parsed.positions = positions

	if len(fields) > 1 {
		switch fields[1] {
		case "w":
			parsed.sideToMove = game.White
		case "b":
			parsed.sideToMove = game.Black
		default:
			return fmt.Errorf("%w: side to move %q", game.ErrInvalidState, fields[1])
		}
	}
	if len(fields) > 2 {
		if err := parsed.parseCastles(fields[2]); err != nil {
			return fmt.Errorf("%w: %q: %v", game.ErrInvalidState, state, err)
		}
	}
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return fmt.Errorf("%w: half move clock %q", game.ErrInvalidState, fields[4])
		}
		parsed.halfMoveClock = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return fmt.Errorf("%w: move number %q", game.ErrInvalidState, fields[5])
		}
		parsed.moveNumber = n
	}

	*c = *parsed
	return nil
}

func parseRanks(s string) ([]Position, error) {
	ranks := strings.Split(s, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("expected 8 ranks, got %d", len(ranks))
	}
	var positions []Position
	for i, rank := range ranks {
		y := 7 - i
		x := 0
		for j := 0; j < len(rank); j++ {
			ch := rank[j]
			if ch >= '1' && ch <= '8' {
				x += int(ch - '0')
				if x > 8 {
					return nil, fmt.Errorf("rank %d is too long", y+1)
				}
				continue
			}
			piece, side, ok := PieceOf(ch)
			if !ok {
				return nil, fmt.Errorf("unknown character %q", ch)
			}
			if x >= 8 {
				return nil, fmt.Errorf("rank %d is too long", y+1)
			}
			positions = append(positions, NewPosition(piece, side, x, y))
			x++
		}
		if x != 8 {
			return nil, fmt.Errorf("rank %d has %d squares", y+1, x)
		}
	}
	return positions, nil
}

// parseCastles accepts "KQkq" and the file letter form "AHah". Letters that
// do not name a rook of the matching side on its base row are ignored.
func (c *Chess) parseCastles(s string) error {
	if s == "-" {
		return nil
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		var x, y int
		var side game.Side
		switch {
		case ch == 'K':
			x, y, side = 7, 0, game.White
		case ch == 'Q':
			x, y, side = 0, 0, game.White
		case ch == 'k':
			x, y, side = 7, 7, game.Black
		case ch == 'q':
			x, y, side = 0, 7, game.Black
		case ch >= 'A' && ch <= 'H':
			x, y, side = int(ch-'A'), 0, game.White
		case ch >= 'a' && ch <= 'h':
			x, y, side = int(ch-'a'), 7, game.Black
		default:
			return fmt.Errorf("unknown castling character %q", ch)
		}
		rook, ok := c.PositionAt(x, y)
		if !ok || rook.Piece != Rook || rook.Side != side || containsPosition(c.castles, rook) {
			continue
		}
		c.castles = append(c.castles, rook)
	}
	return nil
}

func containsPosition(positions []Position, p Position) bool {
	for _, existing := range positions {
		if existing == p {
			return true
		}
	}
	return false
}

// State returns the FEN string of the game.
func (c *Chess) State() string {
	return c.PositionState() + " " + strconv.Itoa(c.halfMoveClock) + " " + strconv.Itoa(c.moveNumber)
}

// PositionState returns the FEN string without the half move clock and move
// number.
func (c *Chess) PositionState() string {
	var sb strings.Builder
	for y := 7; y >= 0; y-- {
		empty := 0
		for x := 0; x < 8; x++ {
			p, ok := c.PositionAt(x, y)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Char())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if y > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if c.sideToMove == game.Black {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}

	sb.WriteByte(' ')
	if len(c.castles) == 0 {
		sb.WriteByte('-')
	}
	for _, rook := range c.castles {
		sb.WriteByte(castleChar(rook))
	}

	sb.WriteString(" -")
	return sb.String()
}

func castleChar(rook Position) byte {
	var ch byte
	switch rook.X {
	case 0:
		ch = 'q'
	case 7:
		ch = 'k'
	default:
		ch = letters[rook.X]
	}
	if rook.Side == game.White {
		ch = ch - 'a' + 'A'
	}
	return ch
}
