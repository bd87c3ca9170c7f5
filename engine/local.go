package engine

import (
	"context"
	"fmt"
	"time"

	"multigame/agent"
	"multigame/experiments/metrics"
	"multigame/game"
	"multigame/meta"

	"github.com/rs/zerolog/log"
)

type Option func(*Local)

func WithMaxTurns(turns int) Option {
	return func(l *Local) {
		if turns > 0 {
			l.maxTurns = turns
		}
	}
}

// WithConsole renders every move to the console.
func WithConsole(console *Console) Option {
	return func(l *Local) {
		l.console = console
	}
}

// Local plays a game between two agents in this process. Each agent searches
// on its own game instance, which is kept in sync with the master game.
type Local struct {
	name     string
	game     game.Game
	agents   map[game.Side]*agent.Agent
	maxTurns int
	console  *Console
	moves    []string
	start    string
}

func NewLocal(name string, g game.Game, white, black *agent.Agent, options ...Option) *Local {
	if white == nil || black == nil {
		panic("need two agents")
	}

	l := &Local{
		name:     name,
		game:     g,
		agents:   map[game.Side]*agent.Agent{game.White: white, game.Black: black},
		maxTurns: meta.MAX_TURNS,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Moves returns the moves played so far.
func (l *Local) Moves() []string {
	return append([]string(nil), l.moves...)
}

// StartState returns the state the last game started from.
func (l *Local) StartState() string {
	return l.start
}

func (l *Local) Game() game.Game {
	return l.game
}

// Run plays from the current state of the game.
func (l *Local) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	l.start = l.game.State()
	l.moves = nil
	if err := l.syncAgents(); err != nil {
		return metrics.GameMetric{}, nil, err
	}

	gameMetric := metrics.GameMetric{
		Game:      l.name,
		White:     l.agents[game.White].Name,
		Black:     l.agents[game.Black].Name,
		StartTime: time.Now(),
	}
	log.Info().Msgf("%s: %s vs %s, %s is starting", l.name, gameMetric.White, gameMetric.Black, l.game.SideToMove())
	l.console.Start(l.name, l.game)

	var moveMetrics []metrics.MoveMetric
	for turn := 1; !l.game.IsFinished() && turn <= l.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return gameMetric, moveMetrics, err
		}

		side := l.game.SideToMove()
		move, searchMetric := l.agents[side].FindMove()
		move = l.checkMove(side, move)

		l.play(move)
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         turn,
			Side:         side,
			Move:         move,
			SearchMetric: searchMetric,
		})
		l.console.Move(turn, side, move, l.game)
	}

	if l.game.IsFinished() {
		gameMetric.Winner = l.game.Winner()
		log.Info().Msgf("%s: game ended after %d moves, winner %s", l.name, len(l.moves), gameMetric.Winner)
	} else {
		log.Info().Msgf("%s: stopped after %d moves without a result", l.name, l.maxTurns)
	}
	l.console.Result(l.game)

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(l.moves)
	gameMetric.FinalState = l.game.State()
	return gameMetric, moveMetrics, nil
}

// checkMove replaces an invalid move of an agent by the first valid move.
func (l *Local) checkMove(side game.Side, move string) string {
	valid := l.game.ValidMoves()
	if game.Contains(valid, move) {
		return move
	}
	if len(valid) == 0 {
		panic(fmt.Errorf("no valid moves in %s", l.game.State()))
	}
	log.Warn().Msgf("%s returned invalid move %q for %s, playing %s",
		l.agents[side].Name, move, side, valid[0].Move)
	return valid[0].Move
}

func (l *Local) play(move string) {
	l.game.Move(move)
	l.moves = append(l.moves, move)
	for _, g := range l.agentGames() {
		g.Move(move)
	}
}

func (l *Local) syncAgents() error {
	state := l.game.State()
	for _, g := range l.agentGames() {
		if err := g.SetState(state); err != nil {
			return fmt.Errorf("failed to set agent state: %w", err)
		}
	}
	return nil
}

// agentGames returns the distinct games of the agents other than the
// master game.
func (l *Local) agentGames() []game.Game {
	var games []game.Game
	for _, side := range []game.Side{game.White, game.Black} {
		g := l.agents[side].Game()
		if g == l.game {
			continue
		}
		if len(games) == 1 && games[0] == g {
			continue
		}
		games = append(games, g)
	}
	return games
}

// PGN exports the last chess game.
func (l *Local) PGN(tags map[string]string) (string, error) {
	if l.name != agent.Chess {
		return "", fmt.Errorf("PGN is only available for %s, not %s", agent.Chess, l.name)
	}
	finished := l.game.IsFinished()
	var winner game.Side
	if finished {
		winner = l.game.Winner()
	}
	return PGN(l.start, l.moves, winner, finished, tags)
}
