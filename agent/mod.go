// Package agent turns a world into one action per controlled ship, either with the planner
// or with scripted navigation rules.
package agent

import (
	"caribbean/experiments/metrics"
	"caribbean/game"
)

type Agent interface {
	// FindActions returns an action for every controlled ship and search metrics (if collected).
	// The world must not be modified.
	FindActions(w *game.WorldState) (map[int]game.Action, metrics.SearchMetric)
}
