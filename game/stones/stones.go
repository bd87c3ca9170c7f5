// Package stones implements games where the sides alternately place stones
// and the first side with enough stones in a row wins: tic-tac-toe, gomoku
// and connect four.
package stones

import (
	"fmt"
	"math"
	"strconv"

	"multigame/game"
)

const letters = "abcdefghijklmnopqrs"

// Config describes a stones-in-a-row game.
type Config struct {
	Width    int
	Height   int
	WinCount int
	// ExactWin only counts rows of exactly WinCount stones.
	ExactWin bool
	// Gravity drops stones to the lowest free square of a column; moves are
	// then column numbers starting at "1" instead of square letters "ab".
	Gravity bool
	// Neighbors restricts moves to empty squares next to a stone.
	Neighbors bool
	First     game.Side
}

func TicTacToe() Config {
	return Config{Width: 3, Height: 3, WinCount: 3, First: game.White}
}

func Gomoku() Config {
	return Config{Width: 19, Height: 19, WinCount: 5, Neighbors: true, First: game.Black}
}

func ConnectFour() Config {
	return Config{Width: 7, Height: 6, WinCount: 4, Gravity: true, First: game.Black}
}

var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Stones implements game.Game for a Config.
type Stones struct {
	cfg        Config
	board      []game.Side
	sideToMove game.Side
}

func New(cfg Config) *Stones {
	if cfg.Width < 1 || cfg.Height < 1 || cfg.Width > len(letters) || cfg.Height > len(letters) {
		panic(fmt.Sprintf("board size %dx%d not supported", cfg.Width, cfg.Height))
	}
	if cfg.WinCount < 1 {
		panic("win count must be positive")
	}
	if cfg.First == game.None {
		cfg.First = game.Black
	}
	s := &Stones{cfg: cfg}
	s.SetStartPosition()
	return s
}

func (s *Stones) Config() Config {
	return s.cfg
}

func (s *Stones) SetStartPosition() {
	s.board = make([]game.Side, s.cfg.Width*s.cfg.Height)
	s.sideToMove = s.cfg.First
}

func (s *Stones) SideToMove() game.Side {
	return s.sideToMove
}

func (s *Stones) At(x, y int) game.Side {
	return s.board[x+y*s.cfg.Width]
}

func (s *Stones) onBoard(x, y int) bool {
	return x >= 0 && x < s.cfg.Width && y >= 0 && y < s.cfg.Height
}

func (s *Stones) free(x, y int) bool {
	return s.onBoard(x, y) && s.At(x, y) == game.None
}

// freeY returns the lowest free row of column x, or -1 if it is full.
func (s *Stones) freeY(x int) int {
	for y := s.cfg.Height - 1; y >= 0; y-- {
		if s.At(x, y) == game.None {
			return y
		}
	}
	return -1
}

func (s *Stones) moveString(x, y int) string {
	if s.cfg.Gravity {
		return strconv.Itoa(x + 1)
	}
	return string([]byte{letters[x], letters[y]})
}

// parseMove returns the square a move places its stone on.
func (s *Stones) parseMove(move string) (int, int, error) {
	if s.cfg.Gravity {
		column, err := strconv.Atoi(move)
		if err != nil || column < 1 || column > s.cfg.Width {
			return 0, 0, fmt.Errorf("%w: column %q", game.ErrInvalidMove, move)
		}
		y := s.freeY(column - 1)
		if y < 0 {
			return 0, 0, fmt.Errorf("%w: column %q is full", game.ErrInvalidMove, move)
		}
		return column - 1, y, nil
	}
	if len(move) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", game.ErrInvalidMove, move)
	}
	x := letterIndex(move[0])
	y := letterIndex(move[1])
	if !s.free(x, y) {
		return 0, 0, fmt.Errorf("%w: square %q is not free", game.ErrInvalidMove, move)
	}
	return x, y, nil
}

func letterIndex(c byte) int {
	for i := 0; i < len(letters); i++ {
		if letters[i] == c {
			return i
		}
	}
	return -1
}

func (s *Stones) Move(move string) {
	x, y, err := s.parseMove(move)
	if err != nil {
		panic(err)
	}
	s.board[x+y*s.cfg.Width] = s.sideToMove
	s.sideToMove = s.sideToMove.Other()
}

func (s *Stones) AllMoves() []game.MoveValue {
	var moves []game.MoveValue
	add := func(x, y int) {
		moves = append(moves, game.MoveValue{Move: s.moveString(x, y), Value: s.moveValue(x, y)})
	}

	switch {
	case s.cfg.Gravity:
		for x := 0; x < s.cfg.Width; x++ {
			if y := s.freeY(x); y >= 0 {
				add(x, y)
			}
		}
	case s.cfg.Neighbors:
		empty := true
		for y := 0; y < s.cfg.Height; y++ {
			for x := 0; x < s.cfg.Width; x++ {
				if s.At(x, y) != game.None {
					empty = false
					continue
				}
				if s.hasNeighbor(x, y) {
					add(x, y)
				}
			}
		}
		if empty {
			add(s.cfg.Width/2, s.cfg.Height/2)
		}
	default:
		for y := 0; y < s.cfg.Height; y++ {
			for x := 0; x < s.cfg.Width; x++ {
				if s.At(x, y) == game.None {
					add(x, y)
				}
			}
		}
	}
	return moves
}

func (s *Stones) hasNeighbor(x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (dx != 0 || dy != 0) && s.onBoard(x+dx, y+dy) && s.At(x+dx, y+dy) != game.None {
				return true
			}
		}
	}
	return false
}

// moveValue rates placing a stone of the side to move on (x, y) by the rows
// it extends and the enemy rows it blocks.
func (s *Stones) moveValue(x, y int) float64 {
	value := 1.0
	own := s.sideToMove
	s.forEachWindow(x, y, func(counts [3]int) {
		switch {
		case counts[own.Other()] == 0:
			value += math.Pow(10, float64(counts[own]))
		case counts[own] == 0:
			value += math.Pow(10, float64(counts[own.Other()])) / 2
		}
	})
	return value
}

// forEachWindow calls f with the stone counts, indexed by side, of every
// window of WinCount squares in a row that contains (x, y).
func (s *Stones) forEachWindow(x, y int, f func(counts [3]int)) {
	n := s.cfg.WinCount
	for _, d := range directions {
		for offset := 0; offset < n; offset++ {
			startX := x - d[0]*offset
			startY := y - d[1]*offset
			endX := startX + d[0]*(n-1)
			endY := startY + d[1]*(n-1)
			if !s.onBoard(startX, startY) || !s.onBoard(endX, endY) {
				continue
			}
			var counts [3]int
			for i := 0; i < n; i++ {
				counts[s.At(startX+d[0]*i, startY+d[1]*i)]++
			}
			f(counts)
		}
	}
}

// IsValid reports whether the move places a stone on a free square.
func (s *Stones) IsValid(move string) bool {
	_, _, err := s.parseMove(move)
	return err == nil
}

func (s *Stones) ValidMoves() []game.MoveValue {
	return game.FilterValid(s)
}

func (s *Stones) ValidMovesWithScore() []game.MoveValue {
	return game.ScoreValid(s)
}

func (s *Stones) IsFinished() bool {
	if s.Winner() != game.None {
		return true
	}
	for _, side := range s.board {
		if side == game.None {
			return false
		}
	}
	return true
}

// Winner returns the first side found with a winning row.
func (s *Stones) Winner() game.Side {
	for y := 0; y < s.cfg.Height; y++ {
		for x := 0; x < s.cfg.Width; x++ {
			side := s.At(x, y)
			if side == game.None {
				continue
			}
			for _, d := range directions {
				// only count rows from their first stone
				if s.onBoard(x-d[0], y-d[1]) && s.At(x-d[0], y-d[1]) == side {
					continue
				}
				if s.wins(s.runLength(x, y, d[0], d[1], side)) {
					return side
				}
			}
		}
	}
	return game.None
}

func (s *Stones) runLength(x, y, dx, dy int, side game.Side) int {
	n := 0
	for s.onBoard(x, y) && s.At(x, y) == side {
		n++
		x += dx
		y += dy
	}
	return n
}

func (s *Stones) wins(run int) bool {
	if s.cfg.ExactWin {
		return run == s.cfg.WinCount
	}
	return run >= s.cfg.WinCount
}

// Score sums 10^n over every window of WinCount squares holding n stones of
// only one side, positive for White and negative for Black.
func (s *Stones) Score() float64 {
	score := 0.0
	n := s.cfg.WinCount
	for y := 0; y < s.cfg.Height; y++ {
		for x := 0; x < s.cfg.Width; x++ {
			for _, d := range directions {
				endX := x + d[0]*(n-1)
				endY := y + d[1]*(n-1)
				if !s.onBoard(endX, endY) {
					continue
				}
				var counts [3]int
				for i := 0; i < n; i++ {
					counts[s.At(x+d[0]*i, y+d[1]*i)]++
				}
				switch {
				case counts[game.White] > 0 && counts[game.Black] == 0:
					score += math.Pow(10, float64(counts[game.White]))
				case counts[game.Black] > 0 && counts[game.White] == 0:
					score -= math.Pow(10, float64(counts[game.Black]))
				}
			}
		}
	}
	return score
}

func (s *Stones) Clone() game.Game {
	return &Stones{
		cfg:        s.cfg,
		board:      append([]game.Side(nil), s.board...),
		sideToMove: s.sideToMove,
	}
}
