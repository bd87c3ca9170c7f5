package experiments

import (
	"context"
	"fmt"
	"time"

	"multigame/experiments/metrics"

	"github.com/rs/zerolog/log"
)

// Throughput of one engine measured from the start position.
type Throughput struct {
	Engine   metrics.EngineConfig
	Searches []metrics.MoveRecord
}

// NodesPerSecond averages the node rate over all searches.
func (t Throughput) NodesPerSecond() float64 {
	var nodes int
	var duration time.Duration
	for _, s := range t.Searches {
		nodes += s.Nodes
		duration += s.Duration
	}
	if duration <= 0 {
		return 0
	}
	return float64(nodes) / duration.Seconds()
}

// RunThroughput runs config.Searches searches per engine on the start
// position, one engine after the other so the measurements do not compete
// for CPU.
func RunThroughput(ctx context.Context, config Config) ([]Throughput, error) {
	specs, err := loadTables(config)
	if err != nil {
		return nil, err
	}

	log.Info().Msgf("starting throughput experiment %s with %d engines", config.Name, len(specs))
	engineConfigs := config.engineConfigs()
	results := make([]Throughput, len(specs))
	for i, spec := range specs {
		a, err := newAgent(config, spec, 0)
		if err != nil {
			return nil, fmt.Errorf("engine %s: %w", spec.Name, err)
		}

		results[i].Engine = engineConfigs[i]
		side := a.Game().SideToMove()
		for step := 1; step <= config.Searches; step++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			move, searchMetric := a.FindMove()
			results[i].Searches = append(results[i].Searches, metrics.MoveRecord{
				Game: engineConfigs[i].ID,
				MoveMetric: metrics.MoveMetric{
					Step:         step,
					Side:         side,
					Move:         move,
					SearchMetric: searchMetric,
				},
			})
		}
		log.Info().Msgf("engine %s: %.0f nodes/s", spec.Name, results[i].NodesPerSecond())
	}
	return results, nil
}

// WriteThroughput stores the engines and their searches as CSV files.
func WriteThroughput(w *metrics.Writer, results []Throughput) error {
	var configs []metrics.EngineConfig
	var records []metrics.MoveRecord
	for _, r := range results {
		configs = append(configs, r.Engine)
		records = append(records, r.Searches...)
	}
	if err := w.WriteEngineConfigs(configs); err != nil {
		return fmt.Errorf("failed to store engine configs: %w", err)
	}
	if err := w.WriteMoveRecords(records); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	return nil
}
