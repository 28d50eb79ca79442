package game

// Evaluate scores a world from the controlled side's point of view. lost reports whether
// one of the controlled ships sank on the way to this state. Higher is better.
type Evaluate func(w *WorldState, lost bool) float64

const (
	healthWeight    = 3.0
	barrelWeight    = 100.0
	distanceWeight  = 100.0
	lostShipPenalty = 10000.0
	enemyWeight     = 5.0
)

// EvaluateRum rewards healthy ships sitting close to valuable barrels and heavily
// penalizes losing a ship.
func EvaluateRum(w *WorldState, lost bool) float64 {
	score := 0.0
	for _, s := range w.Ships {
		if s.Owner != w.Me {
			continue
		}
		score += healthWeight * float64(s.Health)
		for _, b := range w.Barrels {
			score += barrelWeight*float64(b.Health) - distanceWeight*float64(s.Position.DistanceTo(b.Position))
		}
	}
	if lost {
		score -= lostShipPenalty
	}
	return score
}

// EvaluateAggressive extends EvaluateRum with a penalty for the opponent's remaining health,
// which makes plans that land cannonballs score higher.
func EvaluateAggressive(w *WorldState, lost bool) float64 {
	score := EvaluateRum(w, lost)
	for _, s := range w.Ships {
		if s.Owner != w.Me {
			score -= enemyWeight * float64(s.Health)
		}
	}
	return score
}
