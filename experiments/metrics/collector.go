package metrics

import (
	"sync/atomic"
	"time"

	"multigame/game"
)

type SearchMetric struct {
	Engine   string
	Depth    int
	Duration time.Duration
	Nodes    int
	Playouts int
	Chunks   int
	Lookup   bool // move came from a lookup table
}

type MoveMetric struct {
	Step int
	Side game.Side
	Move string
	SearchMetric
}

type GameMetric struct {
	Game       string
	White      string // engine name
	Black      string // engine name
	Winner     game.Side
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
	FinalState string
}

type Collector interface {
	Start(engine string, depth int)
	AddNode()
	AddPlayout()
	AddChunk()
	SetLookup(value bool)
	Complete() SearchMetric
}

type collector struct {
	engine    string
	depth     int
	startTime time.Time
	nodes     atomic.Int64
	playouts  atomic.Int64
	chunks    atomic.Int64
	lookup    atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new search.
func (m *collector) Start(engine string, depth int) {
	m.startTime = time.Now()
	m.engine = engine
	m.depth = depth
	m.nodes.Store(0)
	m.playouts.Store(0)
	m.chunks.Store(0)
	m.lookup.Store(false)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddPlayout() {
	m.playouts.Add(1)
}

func (m *collector) AddChunk() {
	m.chunks.Add(1)
}

func (m *collector) SetLookup(value bool) {
	m.lookup.Store(value)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Engine:   m.engine,
		Depth:    m.depth,
		Duration: time.Since(m.startTime),
		Nodes:    int(m.nodes.Load()),
		Playouts: int(m.playouts.Load()),
		Chunks:   int(m.chunks.Load()),
		Lookup:   m.lookup.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(engine string, depth int) {}
func (m *dummyCollector) AddNode()                       {}
func (m *dummyCollector) AddPlayout()                    {}
func (m *dummyCollector) AddChunk()                      {}
func (m *dummyCollector) SetLookup(value bool)           {}
func (m *dummyCollector) Complete() SearchMetric         { return SearchMetric{} }
