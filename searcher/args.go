package searcher

import (
	"sync/atomic"
	"time"

	"multigame/experiments/metrics"
	"multigame/meta"

	"golang.org/x/exp/rand"
)

type Option func(c *config)

type config struct {
	depth    int
	duration time.Duration
	playouts int
	maxTurns int
	rand     *rand.Rand
	metrics  metrics.Collector
}

func newConfig(options []Option) *config {
	c := &config{ // Default values
		depth:    meta.MAX_DEPTH,
		duration: meta.PLAYOUT_DURATION,
		maxTurns: meta.MAX_TURNS,
		metrics:  metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(c)
	}
	if c.rand == nil {
		c.rand = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return c
}

// WithDepth sets the number of half moves searched by MinMax.
func WithDepth(depth int) Option {
	return func(c *config) {
		if depth > 0 {
			c.depth = depth
		}
	}
}

// WithDuration sets the budget of BestMove for MonteCarlo.
func WithDuration(duration time.Duration) Option {
	return func(c *config) {
		if duration > 0 {
			c.duration = duration
		}
	}
}

// WithPlayouts stops MonteCarlo after the given number of playouts per move.
func WithPlayouts(playouts int) Option {
	return func(c *config) {
		if playouts > 0 {
			c.playouts = playouts
		}
	}
}

// WithMaxTurns sets the number of half moves after which a playout counts
// as a draw.
func WithMaxTurns(turns int) Option {
	return func(c *config) {
		if turns > 0 {
			c.maxTurns = turns
		}
	}
}

func WithRand(r *rand.Rand) Option {
	return func(c *config) {
		if r != nil {
			c.rand = r
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rand = rand.New(rand.NewSource(seed))
	}
}

func WithMetrics() Option {
	return func(c *config) {
		c.metrics = metrics.NewCollector()
	}
}

// lastMetrics keeps the metrics of the last completed search.
type lastMetrics struct {
	value atomic.Pointer[metrics.SearchMetric]
}

func (l *lastMetrics) store(m metrics.SearchMetric) {
	l.value.Store(&m)
}

func (l *lastMetrics) LastMetrics() metrics.SearchMetric {
	if m := l.value.Load(); m != nil {
		return *m
	}
	return metrics.SearchMetric{}
}
