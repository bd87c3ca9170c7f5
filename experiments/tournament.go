package experiments

import (
	"context"
	"fmt"
	"sort"

	"multigame/agent"
	"multigame/engine"
	"multigame/experiments/metrics"
	"multigame/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Result of a tournament.
type Result struct {
	Engines   []metrics.EngineConfig
	Games     []metrics.GameRecord
	Moves     []metrics.MoveRecord
	Standings []metrics.Standing
}

type matchup struct {
	id    int
	white int // index into Config.Engines
	black int
}

// pairings returns every pair of engines, each playing config.Games games
// with alternating colors.
func pairings(engines, games int) []matchup {
	var matchups []matchup
	for i := 0; i < engines; i++ {
		for j := i + 1; j < engines; j++ {
			for k := 0; k < games; k++ {
				m := matchup{id: len(matchups) + 1, white: i, black: j}
				if k%2 == 1 {
					m.white, m.black = j, i
				}
				matchups = append(matchups, m)
			}
		}
	}
	return matchups
}

// RunTournament plays a round robin between the configured engines. Games
// run concurrently, each with its own game and engine instances.
func RunTournament(ctx context.Context, config Config) (*Result, error) {
	specs, err := loadTables(config)
	if err != nil {
		return nil, err
	}

	matchups := pairings(len(specs), config.Games)
	log.Info().Msgf("starting tournament %s: %d engines, %d games on %d goroutines",
		config.Name, len(specs), len(matchups), config.Goroutines)

	type played struct {
		game  metrics.GameMetric
		moves []metrics.MoveMetric
	}
	results := make([]played, len(matchups))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(config.Goroutines)
	for i, m := range matchups {
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("game %d panicked: %v", m.id, r)
				}
			}()

			gameMetric, moveMetrics, err := playGame(ctx, config, specs, m)
			if err != nil {
				return fmt.Errorf("game %d: %w", m.id, err)
			}
			results[i] = played{game: gameMetric, moves: moveMetrics}
			log.Info().Msgf("completed game %d of %d: %s vs %s, winner %s",
				m.id, len(matchups), gameMetric.White, gameMetric.Black, gameMetric.Winner)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Engines: config.engineConfigs()}
	for i, m := range matchups {
		result.Games = append(result.Games, metrics.GameRecord{
			ID:         m.id,
			White:      m.white + 1,
			Black:      m.black + 1,
			GameMetric: results[i].game,
		})
		for _, mm := range results[i].moves {
			result.Moves = append(result.Moves, metrics.MoveRecord{Game: m.id, MoveMetric: mm})
		}
	}
	result.Standings = standings(result.Engines, result.Games)
	log.Info().Msgf("completed tournament %s", config.Name)
	return result, nil
}

func loadTables(config Config) ([]EngineSpec, error) {
	specs := make([]EngineSpec, len(config.Engines))
	for i, spec := range config.Engines {
		loaded, err := spec.Config.LoadTables(config.Game)
		if err != nil {
			return nil, fmt.Errorf("engine %s: %w", spec.Name, err)
		}
		specs[i] = EngineSpec{Name: spec.Name, Config: loaded}
	}
	return specs, nil
}

func playGame(ctx context.Context, config Config, specs []EngineSpec, m matchup) (metrics.GameMetric, []metrics.MoveMetric, error) {
	g, err := agent.NewGame(config.Game)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	white, err := newAgent(config, specs[m.white], m.id)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	black, err := newAgent(config, specs[m.black], m.id)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	return engine.NewLocal(config.Game, g, white, black, engine.WithMaxTurns(config.MaxTurns)).Run(ctx)
}

// newAgent creates an agent with its own game instance. Seeded engines get
// a different seed per game.
func newAgent(config Config, spec EngineSpec, gameID int) (*agent.Agent, error) {
	g, err := agent.NewGame(config.Game)
	if err != nil {
		return nil, err
	}
	engineConfig := spec.Config
	if engineConfig.Seed != 0 {
		engineConfig.Seed += uint64(gameID)
	}
	e, err := agent.NewEngine(config.Game, g, engineConfig)
	if err != nil {
		return nil, err
	}
	return agent.New(spec.Name, e, config.Budget), nil
}

// standings sums up the games per engine, best first.
func standings(engines []metrics.EngineConfig, games []metrics.GameRecord) []metrics.Standing {
	table := make([]metrics.Standing, len(engines))
	for i, e := range engines {
		table[i] = metrics.Standing{Engine: e.ID, Name: e.Name}
	}

	for _, record := range games {
		white := &table[record.White-1]
		black := &table[record.Black-1]
		white.Games++
		black.Games++
		switch record.Winner {
		case game.White:
			white.Wins++
			black.Losses++
		case game.Black:
			black.Wins++
			white.Losses++
		default:
			white.Draws++
			black.Draws++
		}
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Points() > table[j].Points()
	})
	return table
}

// Write stores the result as CSV files.
func (r *Result) Write(w *metrics.Writer) error {
	if err := w.WriteEngineConfigs(r.Engines); err != nil {
		return fmt.Errorf("failed to store engine configs: %w", err)
	}
	log.Info().Msg("stored engine configs")

	if err := w.WriteGameRecords(r.Games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := w.WriteMoveRecords(r.Moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")

	if err := w.WriteStandings(r.Standings); err != nil {
		return fmt.Errorf("failed to write standings: %w", err)
	}
	log.Info().Msg("stored standings")
	return nil
}
