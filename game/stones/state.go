package stones

import (
	"fmt"
	"strconv"
	"strings"

	"multigame/game"
)

// State returns the rows from top to bottom separated by '/', with 'w' and
// 'b' stones and the number of consecutive empty squares, followed by the
// side to move, e.g. "w2/1b1/3 w".
func (s *Stones) State() string {
	var sb strings.Builder
	for y := 0; y < s.cfg.Height; y++ {
		if y > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for x := 0; x < s.cfg.Width; x++ {
			side := s.At(x, y)
			if side == game.None {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(sideChar(side))
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
	}
	sb.WriteByte(' ')
	sb.WriteByte(sideChar(s.sideToMove))
	return sb.String()
}

// PositionState equals State, there are no move counters.
func (s *Stones) PositionState() string {
	return s.State()
}

// SetState parses a state written by State. The side to move defaults to
// the first side of the game.
func (s *Stones) SetState(state string) error {
	fields := strings.Fields(state)
	if len(fields) == 0 || len(fields) > 2 {
		return fmt.Errorf("%w: %q", game.ErrInvalidState, state)
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != s.cfg.Height {
		return fmt.Errorf("%w: expected %d rows in %q", game.ErrInvalidState, s.cfg.Height, state)
	}

	board := make([]game.Side, s.cfg.Width*s.cfg.Height)
	for y, row := range rows {
		x := 0
		for i := 0; i < len(row); i++ {
			c := row[i]
			if c >= '0' && c <= '9' {
				j := i
				for j < len(row) && row[j] >= '0' && row[j] <= '9' {
					j++
				}
				n, _ := strconv.Atoi(row[i:j])
				x += n
				i = j - 1
			} else {
				side, ok := charSide(c)
				if !ok {
					return fmt.Errorf("%w: unknown character %q in %q", game.ErrInvalidState, c, state)
				}
				if x < s.cfg.Width {
					board[x+y*s.cfg.Width] = side
				}
				x++
			}
			if x > s.cfg.Width {
				return fmt.Errorf("%w: row %d is too long in %q", game.ErrInvalidState, y+1, state)
			}
		}
		if x != s.cfg.Width {
			return fmt.Errorf("%w: row %d has %d squares in %q", game.ErrInvalidState, y+1, x, state)
		}
	}

	sideToMove := s.cfg.First
	if len(fields) > 1 {
		side, ok := charSide(fields[1][0])
		if !ok || len(fields[1]) != 1 {
			return fmt.Errorf("%w: side to move %q", game.ErrInvalidState, fields[1])
		}
		sideToMove = side
	}

	s.board = board
	s.sideToMove = sideToMove
	return nil
}

func sideChar(side game.Side) byte {
	switch side {
	case game.White:
		return 'w'
	case game.Black:
		return 'b'
	default:
		return '-'
	}
}

func charSide(c byte) (game.Side, bool) {
	switch c {
	case 'w':
		return game.White, true
	case 'b':
		return game.Black, true
	default:
		return game.None, false
	}
}

func diagramChar(side game.Side) byte {
	switch side {
	case game.White:
		return 'X'
	case game.Black:
		return 'O'
	default:
		return '.'
	}
}

// Diagram draws White stones as X and Black stones as O, labeled with the
// letters or column numbers used in moves.
func (s *Stones) Diagram() string {
	var sb strings.Builder
	for y := 0; y < s.cfg.Height; y++ {
		for x := 0; x < s.cfg.Width; x++ {
			sb.WriteByte(diagramChar(s.At(x, y)))
			sb.WriteByte(' ')
		}
		if !s.cfg.Gravity {
			sb.WriteByte(' ')
			sb.WriteByte(letters[y])
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	for x := 0; x < s.cfg.Width; x++ {
		if s.cfg.Gravity {
			sb.WriteString(strconv.Itoa(x + 1))
		} else {
			sb.WriteByte(letters[x])
		}
		sb.WriteByte(' ')
	}
	sb.WriteByte('\n')
	return sb.String()
}
