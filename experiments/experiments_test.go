package experiments

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"multigame/agent"
	"multigame/experiments/metrics"
	"multigame/game"
	"multigame/meta"

	"github.com/stretchr/testify/require"
)

const tournamentYAML = `
name: small
game: tictactoe
games: 2
budget: 50ms
goroutines: 2
engines:
  - name: random
    kind: random
    seed: 7
  - name: minmax
    kind: minmax
    depth: 2
  - kind: montecarlo
    playouts: 20
    duration: 20ms
`

func TestConfig(t *testing.T) {
	t.Run("parse with defaults", func(t *testing.T) {
		config, err := ParseConfig([]byte(tournamentYAML))
		require.NoError(t, err)
		require.Equal(t, "small", config.Name)
		require.Equal(t, agent.TicTacToe, config.Game)
		require.Equal(t, 50*time.Millisecond, config.Budget)
		require.Equal(t, meta.MAX_TURNS, config.MaxTurns)
		require.Len(t, config.Engines, 3)
		require.Equal(t, agent.MinMax, config.Engines[1].Kind)
		require.Equal(t, 2, config.Engines[1].Depth)
		require.Equal(t, uint64(7), config.Engines[0].Seed)
		require.Equal(t, "engine-3", config.Engines[2].Name)
		require.Equal(t, 20*time.Millisecond, config.Engines[2].Duration)
	})

	t.Run("invalid configs", func(t *testing.T) {
		_, err := ParseConfig([]byte("game: mill\nengines: [{kind: random}]"))
		require.True(t, errors.Is(err, game.ErrUnknownGame))

		_, err = ParseConfig([]byte("game: chess"))
		require.Error(t, err, "No engines")

		_, err = ParseConfig([]byte("game: chess\nengines: [{name: a}, {name: a}]"))
		require.Error(t, err, "Duplicate names")

		_, err = ParseConfig([]byte("game: [chess"))
		require.Error(t, err, "Malformed YAML")
	})

	t.Run("load from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tournament.yaml")
		require.NoError(t, os.WriteFile(path, []byte(tournamentYAML), 0o644))
		config, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "small", config.Name)
	})
}

func TestPairings(t *testing.T) {
	matchups := pairings(3, 2)
	require.Len(t, matchups, 6)

	colors := map[[2]int]int{}
	for i, m := range matchups {
		require.Equal(t, i+1, m.id)
		colors[[2]int{m.white, m.black}]++
	}
	require.Equal(t, map[[2]int]int{
		{0, 1}: 1, {1, 0}: 1,
		{0, 2}: 1, {2, 0}: 1,
		{1, 2}: 1, {2, 1}: 1,
	}, colors)
}

func TestStandings(t *testing.T) {
	engines := []metrics.EngineConfig{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}
	games := []metrics.GameRecord{
		{White: 1, Black: 2, GameMetric: metrics.GameMetric{Winner: game.Black}},
		{White: 2, Black: 1, GameMetric: metrics.GameMetric{Winner: game.White}},
		{White: 1, Black: 3, GameMetric: metrics.GameMetric{Winner: game.None}},
		{White: 3, Black: 2, GameMetric: metrics.GameMetric{Winner: game.White}},
	}

	table := standings(engines, games)
	require.Equal(t, []metrics.Standing{
		{Engine: 2, Name: "b", Games: 3, Wins: 2, Losses: 1},
		{Engine: 3, Name: "c", Games: 2, Wins: 1, Draws: 1},
		{Engine: 1, Name: "a", Games: 3, Draws: 1, Losses: 2},
	}, table)
}

func TestRunTournament(t *testing.T) {
	config, err := ParseConfig([]byte(tournamentYAML))
	require.NoError(t, err)

	result, err := RunTournament(context.Background(), config)
	require.NoError(t, err)
	require.Len(t, result.Games, 6)
	require.Len(t, result.Standings, 3)

	total := 0
	for _, s := range result.Standings {
		require.Equal(t, 4, s.Games)
		total += s.Wins + s.Losses
	}
	decided := 0
	moves := 0
	for _, g := range result.Games {
		require.Equal(t, agent.TicTacToe, g.Game)
		if g.Winner != game.None {
			decided++
		}
		moves += g.TotalMoves
	}
	require.Equal(t, 2*decided, total)
	require.Len(t, result.Moves, moves)

	w, err := metrics.NewWriter(t.TempDir(), config.Name)
	require.NoError(t, err)
	require.NoError(t, result.Write(w))
	for _, name := range []string{"engine_configs.csv", "game_records.csv", "move_records.csv", "standings.csv"} {
		require.FileExists(t, filepath.Join(w.Dir(), name))
	}
}

func TestRunTournamentCancelled(t *testing.T) {
	config, err := ParseConfig([]byte(tournamentYAML))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = RunTournament(ctx, config)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestRunThroughput(t *testing.T) {
	config, err := ParseConfig([]byte(`
game: connectfour
searches: 3
engines:
  - name: minmax
    kind: minmax
    depth: 2
  - name: random
    kind: random
`))
	require.NoError(t, err)

	results, err := RunThroughput(context.Background(), config)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, results[0].Searches, 3)
	require.Equal(t, "minmax", results[0].Engine.Name)
	require.Positive(t, results[0].Searches[0].Nodes)
	require.GreaterOrEqual(t, results[0].NodesPerSecond(), 0.0)

	w, err := metrics.NewWriter(t.TempDir(), "throughput")
	require.NoError(t, err)
	require.NoError(t, WriteThroughput(w, results))
}
