package game

import "hash/fnv"

// MoveValue is a move string paired with an estimated value (higher is better
// for the side making the move) or, for scored lists, the game score after it.
type MoveValue struct {
	Move  string
	Value float64
}

type StateHash uint64

// Game represents the rules of a game by determining the valid moves for the
// current game state. Games are mutable; searches work on clones.
type Game interface {
	// SetStartPosition resets the complete game state (board, move counters,
	// special move rights).
	SetStartPosition()
	// SetState replaces the full game state with the parsed string
	// representation, see State.
	SetState(state string) error
	// State returns the full game state as string.
	State() string
	// PositionState returns the state without move counters. It can be used
	// as key in transposition and lookup tables.
	PositionState() string
	// Diagram returns a multi-line drawing of the board.
	Diagram() string
	SideToMove() Side
	// Score evaluates the current state: positive values favor White,
	// negative values favor Black.
	Score() float64
	// Move executes the move in place. The move must be one of AllMoves,
	// otherwise the result is undefined; malformed moves panic.
	Move(move string)
	// AllMoves returns the semi-legal moves with an estimated value each.
	// A move must be checked with IsValid before it is known to be legal.
	AllMoves() []MoveValue
	// IsValid reports whether the semi-legal move is legal.
	IsValid(move string) bool
	// ValidMoves returns AllMoves filtered by IsValid, see FilterValid.
	ValidMoves() []MoveValue
	// ValidMovesWithScore returns the valid moves mapped to the game score
	// after executing them, see ScoreValid.
	ValidMovesWithScore() []MoveValue
	IsFinished() bool
	// Winner returns the winning side, or None for a draw. The result is
	// unspecified unless IsFinished returns true.
	Winner() Side
	// Clone returns a deep copy that shares no mutable state with g.
	Clone() Game
}

// Hash returns the FNV-1a hash of the position state of g.
func Hash(g Game) StateHash {
	h := fnv.New64a()
	h.Write([]byte(g.PositionState()))
	return StateHash(h.Sum64())
}
