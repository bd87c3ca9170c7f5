// Package engine drives games between two agents.
package engine

import (
	"context"

	"multigame/experiments/metrics"
)

type Engine interface {
	// Run plays a game until it is finished or a max number of moves is
	// reached.
	Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error)
}
