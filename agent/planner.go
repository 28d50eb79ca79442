package agent

import (
	"time"

	"caribbean/experiments/metrics"
	"caribbean/game"
	"caribbean/searcher"
)

type plannerAgent struct {
	planner *searcher.Planner
	rules   *game.Rules
	budget  time.Duration
}

// NewPlannerAgent returns an agent that plays the planner's choice. A zero budget uses the
// rules' budget for the current turn.
func NewPlannerAgent(planner *searcher.Planner, rules *game.Rules, budget time.Duration) Agent {
	return &plannerAgent{planner: planner, rules: rules, budget: budget}
}

func (a *plannerAgent) FindActions(w *game.WorldState) (map[int]game.Action, metrics.SearchMetric) {
	budget := a.budget
	if budget <= 0 {
		budget = a.rules.Budget(w.Turn)
	}
	actions := a.planner.PlanBestActions(w, budget)
	return actions, a.planner.Metric()
}
