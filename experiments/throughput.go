package experiments

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"caribbean/experiments/metrics"
)

// Throughput is the search rate a planner config reached over an experiment.
type Throughput struct {
	Agent                int
	Turns                int
	Evaluations          int
	Generations          int
	Duration             time.Duration
	EvaluationsPerSecond float64
}

// RunThroughputExperiment measures how many rollouts the planner completes per second under
// growing budgets. Every planner mirrors itself so both sides search alike.
func RunThroughputExperiment(settings Settings) ([]Throughput, Result, error) {
	configs := []metrics.AgentConfig{
		{ID: 1, Kind: "planner", Budget: 5 * time.Millisecond},
		{ID: 2, Kind: "planner", Budget: 10 * time.Millisecond},
		{ID: 3, Kind: "planner", Budget: 20 * time.Millisecond},
		{ID: 4, Kind: "planner", Budget: 40 * time.Millisecond},
	}
	matchUps := make([][2]metrics.AgentConfig, 0, len(configs))
	for _, config := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{config, config})
	}

	result, err := runExperiment("throughput", configs, matchUps, settings)
	if err != nil {
		return nil, result, err
	}

	throughputs := summarize(result)
	for _, t := range throughputs {
		log.Info().Msgf("agent %d: %s evaluations in %s turns, %s per second", t.Agent,
			humanize.Comma(int64(t.Evaluations)), humanize.Comma(int64(t.Turns)), humanize.Commaf(t.EvaluationsPerSecond))
	}
	return throughputs, result, nil
}

// summarize adds up the search metrics of every agent config over the moves it played.
func summarize(result Result) []Throughput {
	agents := make(map[int][2]int, len(result.Games)) // Game id to agent ids by side
	for _, g := range result.Games {
		agents[g.ID] = [2]int{g.Agent1, g.Agent2}
	}

	byAgent := map[int]*Throughput{}
	var order []int
	for _, m := range result.Moves {
		id := agents[m.Game][m.Player]
		t, ok := byAgent[id]
		if !ok {
			t = &Throughput{Agent: id}
			byAgent[id] = t
			order = append(order, id)
		}
		t.Turns++
		t.Evaluations += m.Evaluations
		t.Generations += m.Generations
		t.Duration += m.Duration
	}

	throughputs := make([]Throughput, 0, len(order))
	for _, id := range order {
		t := byAgent[id]
		if t.Duration > 0 {
			t.EvaluationsPerSecond = float64(t.Evaluations) / t.Duration.Seconds()
		}
		throughputs = append(throughputs, *t)
	}
	return throughputs
}
