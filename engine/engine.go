package engine

import "caribbean/experiments/metrics"

// Draw is the winner reported when neither side comes out ahead.
const Draw = -1

type Engine interface {
	// Run plays a game until one side has no ships left or the turn limit is reached
	Run() (winner int, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric)
}
