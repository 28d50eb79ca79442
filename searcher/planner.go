package searcher

import (
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"caribbean/experiments/metrics"
	"caribbean/game"
	"caribbean/hex"
)

type Option func(p *Planner)

func WithPopulation(size int) Option {
	return func(p *Planner) {
		if size > 0 {
			p.population = size
		}
	}
}

func WithDepth(depth int) Option {
	return func(p *Planner) {
		if depth > 0 {
			p.depth = depth
		}
	}
}

func WithMutationRate(rate float64) Option {
	return func(p *Planner) {
		if rate >= 0 && rate <= 1 {
			p.mutationRate = rate
		}
	}
}

// WithGenerations caps the number of generations per call. Without it only the time budget
// bounds the search.
func WithGenerations(generations int) Option {
	return func(p *Planner) {
		if generations > 0 {
			p.generations = generations
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(p *Planner) {
		p.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(p *Planner) {
		if rng != nil {
			p.rng = rng
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(p *Planner) {
		if evaluate != nil {
			p.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(p *Planner) {
		p.metrics = metrics.NewCollector()
	}
}

// Planner evolves a population of multi-turn plans for the controlled ships and scores each
// one by rolling the simulator forward from the current world. It remembers the best plan
// of the previous call to warm start the next one. A Planner is not safe for concurrent use.
type Planner struct {
	rules        *game.Rules
	population   int
	depth        int
	mutationRate float64
	warmStart    float64
	generations  int
	evaluate     game.Evaluate
	rng          *rand.Rand
	simulator    *game.Simulator
	metrics      metrics.Collector
	metric       metrics.SearchMetric

	agents   []int // Controlled ship ids of the current call, sorted
	previous *Plan
}

func NewPlanner(rules *game.Rules, options ...Option) *Planner {
	p := &Planner{ // Default values
		rules:        rules,
		population:   rules.PopulationSize,
		depth:        rules.SimulationDepth,
		mutationRate: rules.MutationRate,
		warmStart:    rules.WarmStartFraction,
		evaluate:     game.EvaluateRum,
		rng:          rand.New(rand.NewSource(rules.Seed)),
		simulator:    game.NewSimulator(rules),
		metrics:      metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(p)
	}
	if p.population < 1 {
		panic("Population must hold at least one plan")
	}
	if p.depth < 1 {
		panic("Simulation depth must be at least one turn")
	}
	return p
}

// PlanBestActions returns the first action of the best plan found within budget for every
// controlled ship. The world is left exactly as it was passed in.
func (p *Planner) PlanBestActions(w *game.WorldState, budget time.Duration) map[int]game.Action {
	start := time.Now()
	expired := func() bool { return time.Since(start) >= budget }

	p.agents = p.agents[:0]
	for _, s := range w.MyShips() {
		p.agents = append(p.agents, s.ID)
	}
	slices.Sort(p.agents)
	actions := make(map[int]game.Action, len(p.agents))
	if len(p.agents) == 0 {
		return actions
	}

	p.metrics.Start(budget, p.population, p.depth)
	p.metrics.SetWarmStart(p.previous != nil)

	seed := p.randomPlan()
	p.score(w, seed)
	best := seed.Clone()
	population := make([]*Plan, 0, p.population)
	population = append(population, seed)

	if !expired() {
		if p.previous != nil {
			slots := min(int(float64(p.population)*p.warmStart), p.population-1)
			for range slots {
				plan := p.shift(p.previous)
				p.mutate(plan)
				p.score(w, plan)
				population = append(population, plan)
				if plan.Score > best.Score {
					best = plan.Clone()
				}
			}
		}
		for len(population) < p.population {
			plan := p.randomPlan()
			p.score(w, plan)
			population = append(population, plan)
			if plan.Score > best.Score {
				best = plan.Clone()
			}
		}
		p.metrics.SetBest(0, best.Score)
	}

	for generation := 1; p.generations == 0 || generation <= p.generations; generation++ {
		if expired() {
			break
		}

		next := make([]*Plan, 0, p.population)
		elite := best.Clone()
		p.mutate(elite)
		p.score(w, elite)
		next = append(next, elite)
		if elite.Score > best.Score {
			best = elite.Clone()
			p.metrics.SetBest(generation, best.Score)
		}

		for len(next) < p.population && !expired() {
			first, second := p.tournament(population)
			child := p.crossover(first, second)
			if p.rng.Float64() < p.mutationRate {
				p.mutate(child)
			}
			p.score(w, child)
			next = append(next, child)
			if child.Score > best.Score {
				best = child.Clone()
				p.metrics.SetBest(generation, best.Score)
			}
		}

		p.metrics.AddGeneration()
		if len(next) == p.population {
			population = next
		}
	}

	for _, id := range p.agents {
		action, ok := best.ActionAt(id, 0)
		if !ok {
			log.Warn().Msgf("No planned action for ship %d, waiting", id)
			action = game.Action{Type: game.WaitAction}
		}
		actions[id] = action
	}
	p.previous = best

	p.metric = p.metrics.Complete()
	log.Debug().
		Int("generations", p.metric.Generations).
		Int("evaluations", p.metric.Evaluations).
		Int("best_generation", p.metric.BestGeneration).
		Float64("best_score", best.Score).
		Msgf("Planned turn %d in %v", w.Turn, time.Since(start))
	return actions
}

// Evaluate scores plan by simulating it from w. Ships missing from the plan, or whose
// sequence is too short, wait. w is checkpointed before and restored after the rollout, so
// any checkpoint held by the caller is overwritten.
func (p *Planner) Evaluate(w *game.WorldState, plan *Plan) float64 {
	w.Checkpoint()
	defer w.Restore()

	lost := false
	score := 0.0
	actions := make(map[int]game.Action, len(plan.Actions))
	for depth := 0; depth < p.depth; depth++ {
		clear(actions)
		for id := range plan.Actions {
			if action, ok := plan.ActionAt(id, depth); ok {
				actions[id] = action
			}
		}

		outcome := p.simulator.Advance(w, actions)
		for _, s := range outcome.Sunk {
			if s.Owner == w.Me {
				lost = true
			}
		}
		if depth == 0 {
			score += PartialScoreWeight * p.evaluate(w, lost)
		}
	}
	return score + p.evaluate(w, lost)
}

// Best returns the best plan of the last call, or nil before the first call.
func (p *Planner) Best() *Plan {
	return p.previous
}

// Metric returns the metrics of the last call. They are zero unless WithMetrics was given.
func (p *Planner) Metric() metrics.SearchMetric {
	return p.metric
}

// Reset forgets the previous plan so the next call starts from scratch.
func (p *Planner) Reset() {
	p.previous = nil
}

func (p *Planner) score(w *game.WorldState, plan *Plan) {
	plan.Score = p.Evaluate(w, plan)
	p.metrics.AddEvaluation()
}

func (p *Planner) randomAction() game.Action {
	return game.Action{
		Type:   game.ActiveActions[p.rng.Intn(len(game.ActiveActions))],
		Target: p.randomTarget(),
	}
}

func (p *Planner) randomTarget() hex.Coordinate {
	return hex.Coordinate{X: p.rng.Intn(p.rules.Bounds.Width), Y: p.rng.Intn(p.rules.Bounds.Height)}
}

func (p *Planner) randomSequence() []game.Action {
	seq := make([]game.Action, p.depth)
	for i := range seq {
		seq[i] = p.randomAction()
	}
	return seq
}

func (p *Planner) randomPlan() *Plan {
	plan := newPlan()
	for _, id := range p.agents {
		plan.Actions[id] = p.randomSequence()
	}
	return plan
}

// shift moves every sequence of prev one turn earlier and appends a fresh random action.
// Ships prev knows nothing about get a random sequence.
func (p *Planner) shift(prev *Plan) *Plan {
	plan := newPlan()
	for _, id := range p.agents {
		old, ok := prev.Actions[id]
		if !ok || len(old) == 0 {
			plan.Actions[id] = p.randomSequence()
			continue
		}
		seq := make([]game.Action, 0, p.depth)
		seq = append(seq, old[1:]...)
		for len(seq) < p.depth {
			seq = append(seq, p.randomAction())
		}
		plan.Actions[id] = seq[:p.depth]
	}
	return plan
}

// tournament picks two distinct parents, each the better of two random members.
func (p *Planner) tournament(population []*Plan) (*Plan, *Plan) {
	first := p.duel(population)
	second := p.duel(population, first)
	return population[first], population[second]
}

func (p *Planner) duel(population []*Plan, excluded ...int) int {
	i := p.draw(len(population), excluded...)
	j := p.draw(len(population), append(excluded, i)...)
	if population[j].Score > population[i].Score {
		return j
	}
	return i
}

// draw returns a random index below n that is not excluded, unless every index is.
func (p *Planner) draw(n int, excluded ...int) int {
	if n <= len(excluded) {
		return p.rng.Intn(n)
	}
	for {
		i := p.rng.Intn(n)
		if !slices.Contains(excluded, i) {
			return i
		}
	}
}

// crossover builds a child that takes every action from either parent with equal odds.
func (p *Planner) crossover(a, b *Plan) *Plan {
	child := newPlan()
	for _, id := range p.agents {
		seq := slices.Clone(a.Actions[id])
		other := b.Actions[id]
		for t := range seq {
			if t < len(other) && p.rng.Float64() < CrossoverRate {
				seq[t] = other[t]
			}
		}
		child.Actions[id] = seq
	}
	return child
}

// mutate changes one random action of one random ship, either its type or its target.
func (p *Planner) mutate(plan *Plan) {
	id := p.agents[p.rng.Intn(len(p.agents))]
	seq := plan.Actions[id]
	if len(seq) == 0 {
		return
	}
	t := p.rng.Intn(len(seq))
	if p.rng.Float64() < 0.5 {
		seq[t].Type = game.ActiveActions[p.rng.Intn(len(game.ActiveActions))]
	} else {
		seq[t].Target = p.randomTarget()
	}
}
