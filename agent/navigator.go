package agent

import (
	"cmp"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"caribbean/experiments/metrics"
	"caribbean/game"
	"caribbean/hex"
	"caribbean/pathfinder"
)

const (
	pathCost       = 6 * time.Millisecond // Rough cost of one FindPath call
	enemyRadius    = 15                   // Enemies closer than this to the bow are shot at
	standoff       = 8                    // Preferred distance to the nearest enemy
	standoffSlack  = 1
	sacrificeBelow = 40 // A ship weaker than this may sink itself next to a friend
	sacrificeRange = 6
	maxLead        = 7 // Turns of enemy movement considered when leading a shot
)

// NavigatorOption configures a navigator agent.
type NavigatorOption func(a *navigatorAgent)

func WithBudget(budget time.Duration) NavigatorOption {
	return func(a *navigatorAgent) {
		if budget > 0 {
			a.budget = budget
		}
	}
}

// WithTargets fixes the number of candidate targets searched per ship instead of deriving
// it from the budget.
func WithTargets(n int) NavigatorOption {
	return func(a *navigatorAgent) {
		if n > 0 {
			a.targets = n
		}
	}
}

type navigatorAgent struct {
	rules      *game.Rules
	pathfinder *pathfinder.Pathfinder
	budget     time.Duration
	targets    int
}

// NewNavigatorAgent returns the scripted agent: ships race for the barrels they reach first,
// keep a firing distance to the nearest enemy once the rum is gone, lead their shots and drop
// mines when idle. Every route comes from the pathfinder.
func NewNavigatorAgent(rules *game.Rules, options ...NavigatorOption) Agent {
	a := &navigatorAgent{
		rules:      rules,
		pathfinder: pathfinder.NewPathfinder(rules, pathfinder.WithMaxExpansions(rules.Bounds.Cells()*4)),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

type route struct {
	barrel game.RumBarrel
	path   []pathfinder.GraphNode
}

func (a *navigatorAgent) FindActions(w *game.WorldState) (map[int]game.Action, metrics.SearchMetric) {
	start := time.Now()
	budget := a.budget
	if budget <= 0 {
		budget = a.rules.Budget(w.Turn)
	}
	searches := 0

	mine := w.MyShips()
	slices.SortFunc(mine, func(x, y game.Ship) int { return cmp.Compare(x.ID, y.ID) })
	actions := make(map[int]game.Action, len(mine))
	if len(mine) == 0 {
		return actions, metrics.SearchMetric{}
	}

	targets := a.targets
	if targets == 0 {
		targets = max(int((budget-time.Since(start))/pathCost)/len(mine), 1)
	}

	// Candidate barrels per ship, shortest route first.
	candidates := make(map[int][]route, len(mine))
	for _, ship := range mine {
		barrels := slices.Clone(w.Barrels)
		slices.SortStableFunc(barrels, func(x, y game.RumBarrel) int {
			return cmp.Compare(x.Position.DistanceTo(ship.Position), y.Position.DistanceTo(ship.Position))
		})
		var routes []route
		for _, b := range barrels[:min(targets, len(barrels))] {
			path := a.pathfinder.FindPath(w, pathfinder.NodeOf(ship), b.Position, true)
			searches++
			if len(path) > 0 {
				routes = append(routes, route{barrel: b, path: path})
			}
		}
		slices.SortStableFunc(routes, func(x, y route) int {
			if c := cmp.Compare(len(x.path), len(y.path)); c != 0 {
				return c
			}
			return cmp.Compare(y.barrel.Health, x.barrel.Health)
		})
		candidates[ship.ID] = routes
	}
	assigned := assignBarrels(mine, candidates)

	leader := slices.MaxFunc(w.Ships, func(x, y game.Ship) int { return cmp.Compare(x.Health, y.Health) })
	sacrificing := false
	for _, ship := range mine {
		node := pathfinder.NodeOf(ship)
		action := game.Action{Type: game.WaitAction}

		switch r, ok := assigned[ship.ID]; {
		case ok:
			action.Type = pathfinder.ActionBetween(node, r.path[0])
		case !sacrificing && ship.Health < sacrificeBelow && leader.Owner != w.Me && len(mine) > 1:
			sacrificing = true
			action = a.sacrifice(w, ship, mine, &searches)
		default:
			action.Type = a.position(w, ship, targets, &searches)
		}

		if action.Type == game.WaitAction && a.rules.CannonsEnabled && ship.CanFire() {
			if target, ok := a.shootAt(w, ship); ok {
				action = game.Action{Type: game.FireAction, Target: target}
			}
		}
		if action.Type == game.WaitAction && a.rules.MinesEnabled && ship.CanMine() {
			action.Type = game.MineAction
		}
		actions[ship.ID] = action
	}

	return actions, metrics.SearchMetric{
		Budget:      budget,
		Duration:    time.Since(start),
		Evaluations: searches,
	}
}

// assignBarrels gives every barrel to at most one ship: the one with the shortest route.
// A ship that loses its barrel to a faster one tries its next candidate.
func assignBarrels(ships []game.Ship, candidates map[int][]route) map[int]route {
	assigned := make(map[int]route, len(ships))
	owner := make(map[int]int) // Barrel id to ship id
	next := make(map[int]int)  // Next candidate index per ship

	queue := make([]int, 0, len(ships))
	for _, s := range ships {
		queue = append(queue, s.ID)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for next[id] < len(candidates[id]) {
			r := candidates[id][next[id]]
			next[id]++
			other, taken := owner[r.barrel.ID]
			if !taken {
				assigned[id], owner[r.barrel.ID] = r, id
				break
			}
			if len(r.path) < len(assigned[other].path) {
				delete(assigned, other)
				queue = append(queue, other)
				assigned[id], owner[r.barrel.ID] = r, id
				break
			}
		}
	}
	return assigned
}

// sacrifice sinks a weak ship next to its nearest friend so the friend can collect the rum
// it leaves behind, or sails towards that friend first.
func (a *navigatorAgent) sacrifice(w *game.WorldState, ship game.Ship, mine []game.Ship, searches *int) game.Action {
	friends := slices.DeleteFunc(slices.Clone(mine), func(s game.Ship) bool { return s.ID == ship.ID })
	friend := slices.MinFunc(friends, func(x, y game.Ship) int {
		return cmp.Compare(ship.Position.DistanceTo(x.Position), ship.Position.DistanceTo(y.Position))
	})

	if ship.Position.DistanceTo(friend.Position) < sacrificeRange {
		log.Debug().Msgf("Ship %d sinks itself next to ship %d", ship.ID, friend.ID)
		target := ship.Bow()
		if ship.Speed == 0 {
			target = ship.Position
		}
		return game.Action{Type: game.FireAction, Target: target}
	}

	goal := friend.Position
	if a.rules.Bounds.Contains(friend.Bow()) {
		goal = friend.Bow()
	}
	path := a.pathfinder.FindPath(w, pathfinder.NodeOf(ship), goal, false)
	*searches++
	if len(path) == 0 {
		return game.Action{Type: game.WaitAction}
	}
	return game.Action{Type: pathfinder.ActionBetween(pathfinder.NodeOf(ship), path[0])}
}

// position keeps the ship on a ring around the nearest enemy, out of the way of incoming
// cannonballs and mines.
func (a *navigatorAgent) position(w *game.WorldState, ship game.Ship, targets int, searches *int) game.ActionType {
	idle := game.WaitAction
	if ship.Speed > 0 {
		idle = game.SlowerAction
	}
	enemies := w.EnemyShips()
	if len(enemies) == 0 {
		return idle
	}
	enemy := slices.MinFunc(enemies, func(x, y game.Ship) int {
		return cmp.Compare(x.Position.DistanceTo(ship.Position), y.Position.DistanceTo(ship.Position))
	})

	distance := enemy.Position.DistanceTo(ship.Position)
	if distance >= standoff-standoffSlack && distance <= standoff+standoffSlack && !threatened(w, ship) {
		return idle
	}

	var cells []hex.Coordinate
	for c := range enemy.Position.Ring(standoff, a.rules.Bounds) {
		if a.safeCell(w, c, ship.Orientation) {
			cells = append(cells, c)
		}
	}
	slices.SortStableFunc(cells, func(x, y hex.Coordinate) int {
		return cmp.Compare(ship.Position.DistanceTo(x), ship.Position.DistanceTo(y))
	})

	node := pathfinder.NodeOf(ship)
	var best []pathfinder.GraphNode
	for _, c := range cells[:min(targets, len(cells))] {
		path := a.pathfinder.FindPath(w, node, c, false)
		*searches++
		if len(path) > 0 && (best == nil || len(path) < len(best)) {
			best = path
		}
	}
	if best == nil {
		return idle
	}

	action := pathfinder.ActionBetween(node, best[0])
	// Do not pick up speed straight into a mine.
	if (node.Speed == a.rules.MaxSpeed && action == game.WaitAction) || (node.Speed == a.rules.MaxSpeed-1 && action == game.FasterAction) {
		step := best[0]
		ahead := step.Coordinate.Neighbor(step.Orientation).Neighbor(step.Orientation)
		if mineAt(w, ahead) || mineAt(w, ahead.Neighbor(step.Orientation)) {
			if step.Speed == a.rules.MaxSpeed {
				return game.SlowerAction
			}
			return game.WaitAction
		}
	}
	return action
}

// safeCell reports whether c is away from the map edge and from every mine and cannonball.
func (a *navigatorAgent) safeCell(w *game.WorldState, c hex.Coordinate, o hex.Orientation) bool {
	if c.X <= 1 || c.X >= a.rules.Bounds.Width-1 || c.Y <= 1 || c.Y >= a.rules.Bounds.Height-1 {
		return false
	}
	near := func(p hex.Coordinate) bool {
		return p == c || p == c.Neighbor(o) || p == c.Neighbor(o.Opposite()) || p.DistanceTo(c) < 2
	}
	for _, b := range w.Cannonballs {
		if near(b.Position) {
			return false
		}
	}
	for _, m := range w.Mines {
		if near(m.Position) {
			return false
		}
	}
	return true
}

// threatened reports whether a cannonball is heading for the ship, or for a mine close to it.
func threatened(w *game.WorldState, ship game.Ship) bool {
	for _, b := range w.Cannonballs {
		if ship.IsAt(b.Position) {
			return true
		}
		for _, m := range w.Mines {
			if m.Position == b.Position && m.Position.DistanceTo(ship.Position) <= 2 {
				return true
			}
		}
	}
	return false
}

func mineAt(w *game.WorldState, c hex.Coordinate) bool {
	return slices.ContainsFunc(w.Mines, func(m game.Mine) bool { return m.Position == c })
}

// shootAt leads a shot at the nearest enemy within range of the bow.
func (a *navigatorAgent) shootAt(w *game.WorldState, ship game.Ship) (hex.Coordinate, bool) {
	var nearest *game.Ship
	for _, e := range w.EnemyShips() {
		d := e.Position.DistanceTo(ship.Bow())
		if d >= enemyRadius {
			continue
		}
		if nearest == nil || d < nearest.Position.DistanceTo(ship.Bow()) {
			nearest = &e
		}
	}
	if nearest == nil {
		return hex.Coordinate{}, false
	}
	return FutureShot(ship, *nearest, a.rules)
}

// FutureShot returns a cell where a cannonball fired by shooter this turn lands just as the
// enemy's center gets there, assuming the enemy keeps its heading and speed. Ships move
// before cannonballs land, so the enemy moves once more than the cannonball's travel time.
func FutureShot(shooter, enemy game.Ship, rules *game.Rules) (hex.Coordinate, bool) {
	bow := shooter.Bow()
	advance := func(c hex.Coordinate) hex.Coordinate {
		for range enemy.Speed {
			c = c.Neighbor(enemy.Orientation)
		}
		return c
	}
	target := advance(enemy.Position)
	for turns := 1; turns <= maxLead; turns++ {
		target = advance(target)
		distance := bow.DistanceTo(target)
		if game.TravelTime(distance) != turns {
			continue
		}
		if !rules.Bounds.Contains(target) || distance > rules.FireRangeMax {
			return hex.Coordinate{}, false
		}
		return target, true
	}
	return hex.Coordinate{}, false
}
