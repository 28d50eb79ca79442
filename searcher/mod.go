// Package searcher finds actions for the controlled ships with a population-based search
// over fixed-horizon plans, scored by rolling the turn simulator forward.
package searcher

import (
	"time"

	"caribbean/game"
)

// Searcher picks one action per controlled ship within a time budget.
type Searcher interface {
	PlanBestActions(w *game.WorldState, budget time.Duration) map[int]game.Action
}
