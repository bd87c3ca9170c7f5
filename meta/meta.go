// meta/meta.go
package meta

import "time"

// MAX_DEPTH defines the default search depth of the min-max engine.
const MAX_DEPTH = 3

// RANDOM_TRIES defines how often the random engine draws a weighted move
// before it falls back to the list of valid moves.
const RANDOM_TRIES = 5

// PLAYOUT_DURATION defines the default budget of a Monte Carlo search.
const PLAYOUT_DURATION = 200 * time.Millisecond

// RESERVE_TIME is kept free of a timed calculation budget to compute the result.
const RESERVE_TIME = 50 * time.Millisecond

// MOVE_TIME defines the thinking time of a protocol "go" without limits.
const MOVE_TIME = 5 * time.Second

// MOVE_TIME_RESERVE is subtracted from an explicit protocol "movetime".
const MOVE_TIME_RESERVE = 1500 * time.Millisecond

// MOVES_TO_GO defines the assumed number of remaining moves of a clock.
const MOVES_TO_GO = 40

// MAX_TURNS defines the number of half moves after which a local game is
// stopped as a draw.
const MAX_TURNS = 300

// GO_ROUTINES defines the number of concurrently played tournament games.
const GO_ROUTINES = 8
