// Package lookup provides tables of precomputed moves that engines consult
// before searching.
package lookup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"multigame/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Book is an opening book keyed by position state.
//
// Every line of a book file adds one recommended move. Leading "." tokens
// replay the move at the same index of the previous line, the first other
// token is the recommended move, optionally followed by its weight:
//
//	e2e4 0.7
//	. e7e5
//	. . g1f3
//	d2d4 0.3
//
// Lines starting with "#" and everything after a "#" token are ignored.
type Book struct {
	newGame func() game.Game
	moves   map[string][]game.MoveValue
	last    []string

	mu   sync.Mutex
	rand *rand.Rand
}

// NewBook returns an empty book for games created by newGame.
func NewBook(newGame func() game.Game) *Book {
	return &Book{
		newGame: newGame,
		moves:   map[string][]game.MoveValue{},
		rand:    rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

// LoadBook reads the book file at path.
func LoadBook(path string, newGame func() game.Game) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open book: %w", err)
	}
	defer f.Close()

	book := NewBook(newGame)
	if err := book.Load(f); err != nil {
		return nil, fmt.Errorf("failed to load book %s: %w", path, err)
	}
	log.Info().Msgf("loaded book %s with %d positions", path, book.Len())
	return book, nil
}

// Load adds the lines of r to the book.
func (b *Book) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	number := 0
	for scanner.Scan() {
		number++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := b.parseLine(strings.Fields(line)); err != nil {
			return fmt.Errorf("line %d: %w", number, err)
		}
	}
	return scanner.Err()
}

func (b *Book) parseLine(tokens []string) error {
	g := b.newGame()
	g.SetStartPosition()

	for i := 0; i < len(tokens); i++ {
		move := tokens[i]
		if move == "#" {
			return nil
		}

		if move == "." {
			if i >= len(b.last) {
				return fmt.Errorf("no previous move at index %d", i)
			}
			if err := play(g, b.last[i]); err != nil {
				return err
			}
			continue
		}

		weight := 1.0
		if i+1 < len(tokens) && tokens[i+1] != "#" {
			parsed, err := strconv.ParseFloat(tokens[i+1], 64)
			if err != nil {
				return fmt.Errorf("invalid weight %q: %w", tokens[i+1], err)
			}
			weight = parsed
		}
		if !game.Contains(g.ValidMoves(), move) {
			return fmt.Errorf("%w: %s in %s", game.ErrInvalidMove, move, g.State())
		}

		b.last = append(b.last[:i:i], move)
		key := g.PositionState()
		b.moves[key] = append(b.moves[key], game.MoveValue{Move: move, Value: weight})
		return nil
	}
	return nil
}

func play(g game.Game, move string) error {
	if !game.Contains(g.ValidMoves(), move) {
		return fmt.Errorf("%w: %s in %s", game.ErrInvalidMove, move, g.State())
	}
	g.Move(move)
	return nil
}

// Len returns the number of positions with a recommendation.
func (b *Book) Len() int {
	return len(b.moves)
}

// Moves returns the recommended moves for the position of g.
func (b *Book) Moves(g game.Game) []game.MoveValue {
	return append([]game.MoveValue(nil), b.moves[g.PositionState()]...)
}

// BestMove picks one of the recommended moves by weight.
func (b *Book) BestMove(g game.Game) (string, bool) {
	moves := b.moves[g.PositionState()]
	if len(moves) == 0 {
		return "", false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	move, ok := game.PickWeighted(b.rand, moves)
	log.Debug().Msgf("book move %s of %v", move, moves)
	return move, ok
}
