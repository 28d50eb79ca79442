package metrics

import (
	"math"
	"sync/atomic"
	"time"
)

// SearchMetric describes one planner invocation.
type SearchMetric struct {
	Budget         time.Duration
	Duration       time.Duration
	Population     int
	Depth          int
	Generations    int
	Evaluations    int
	BestGeneration int
	BestScore      float64
	IsWarmStart    bool
}

// MoveMetric is a SearchMetric tagged with the turn and side it was produced for.
type MoveMetric struct {
	Turn   int
	Player int // Owner id
	SearchMetric
}

type GameMetric struct {
	Seed      uint64
	Winner    int // Owner id, -1 for a draw
	Turns     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Health    [2]int // Total remaining health per owner
}

type Collector interface {
	Start(budget time.Duration, population, depth int)
	SetWarmStart(value bool)
	AddGeneration()
	AddEvaluation()
	SetBest(generation int, score float64)
	Complete() SearchMetric
}

type collector struct {
	budget         time.Duration
	population     int
	depth          int
	startTime      time.Time
	generations    atomic.Int32
	evaluations    atomic.Int32
	bestGeneration atomic.Int32
	bestScore      atomic.Uint64 // math.Float64bits
	isWarmStart    atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(budget time.Duration, population, depth int) {
	m.startTime = time.Now()
	m.budget = budget
	m.population = population
	m.depth = depth
	m.generations.Store(0)
	m.evaluations.Store(0)
	m.bestGeneration.Store(0)
	m.bestScore.Store(0)
	m.isWarmStart.Store(false)
}

func (m *collector) SetWarmStart(value bool) {
	m.isWarmStart.Store(value)
}

func (m *collector) AddGeneration() {
	m.generations.Add(1)
}

func (m *collector) AddEvaluation() {
	m.evaluations.Add(1)
}

func (m *collector) SetBest(generation int, score float64) {
	m.bestGeneration.Store(int32(generation))
	m.bestScore.Store(math.Float64bits(score))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Budget:         m.budget,
		Duration:       time.Since(m.startTime),
		Population:     m.population,
		Depth:          m.depth,
		Generations:    int(m.generations.Load()),
		Evaluations:    int(m.evaluations.Load()),
		BestGeneration: int(m.bestGeneration.Load()),
		BestScore:      math.Float64frombits(m.bestScore.Load()),
		IsWarmStart:    m.isWarmStart.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(budget time.Duration, population, depth int) {}
func (m *dummyCollector) SetWarmStart(value bool)                           {}
func (m *dummyCollector) AddGeneration()                                    {}
func (m *dummyCollector) AddEvaluation()                                    {}
func (m *dummyCollector) SetBest(generation int, score float64)             {}
func (m *dummyCollector) Complete() SearchMetric                            { return SearchMetric{} }
