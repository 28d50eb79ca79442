package pathfinder

import (
	"container/heap"

	"github.com/rs/zerolog/log"

	"caribbean/game"
	"caribbean/hex"
)

type Option func(p *Pathfinder)

// WithMaxExpansions bounds the number of nodes a single search may expand. When the bound
// is hit the search falls back to the cheapest visited node on the target.
func WithMaxExpansions(n int) Option {
	return func(p *Pathfinder) {
		if n > 0 {
			p.maxExpansions = n
		}
	}
}

// Pathfinder is an A* search over ship maneuvers that prices in known hazards. It keeps
// counters from the last search and is not safe for concurrent use.
type Pathfinder struct {
	rules         *game.Rules
	maxExpansions int
	expanded      int
	visited       int
}

func NewPathfinder(rules *game.Rules, options ...Option) *Pathfinder {
	p := &Pathfinder{rules: rules}
	for _, option := range options {
		option(p)
	}
	return p
}

// Expanded returns the number of nodes popped by the last search.
func (p *Pathfinder) Expanded() int {
	return p.expanded
}

// Visited returns the number of distinct nodes costed by the last search.
func (p *Pathfinder) Visited() int {
	return p.visited
}

// FindPath returns the sequence of states leading from start to a state whose cell is
// target, or whose bow is target when bowCounts is set. The start state is not included, so
// path[0] is where the ship will be after the first turn. An empty result means the target
// could not be reached.
func (p *Pathfinder) FindPath(w *game.WorldState, start GraphNode, target hex.Coordinate, bowCounts bool) []GraphNode {
	best := map[GraphNode]int{start: 0}
	byNode := map[GraphNode]*searchNode{}
	open := &frontier{}
	heap.Init(open)
	seq := 0
	root := &searchNode{node: start, priority: start.Coordinate.DistanceTo(target), seq: seq}
	heap.Push(open, root)
	byNode[start] = root

	p.expanded = 0
	defer func() { p.visited = len(best) }()

	for open.Len() > 0 {
		if p.maxExpansions > 0 && p.expanded >= p.maxExpansions {
			break
		}
		current := heap.Pop(open).(*searchNode)
		if current.cost > best[current.node] {
			continue
		}
		p.expanded++

		if current.node.Coordinate == target || (bowCounts && current.node.Bow() == target) {
			return reconstruct(current)
		}

		arrival := current.depth + 1
		for _, next := range current.node.Neighbors(p.rules.Bounds, p.rules.MaxSpeed) {
			if arrival == 1 && p.blockedByShip(w, start, next) {
				continue
			}
			cost := current.cost + 1 + p.hazardCost(w, current.node, next, arrival)
			if prev, ok := best[next]; ok && cost >= prev {
				continue
			}
			best[next] = cost
			seq++
			item := &searchNode{
				node:     next,
				cost:     cost,
				priority: cost + next.Coordinate.DistanceTo(target),
				depth:    arrival,
				seq:      seq,
				parent:   current,
			}
			byNode[next] = item
			heap.Push(open, item)
		}
	}

	// Frontier exhausted or expansion bound hit: settle for the cheapest known route onto
	// the target cell, if there is one.
	var fallback *searchNode
	for _, item := range byNode {
		if item.node.Coordinate != target || item.depth == 0 {
			continue
		}
		if fallback == nil || item.cost < fallback.cost || (item.cost == fallback.cost && item.seq < fallback.seq) {
			fallback = item
		}
	}
	if fallback == nil {
		log.Debug().Msgf("No path from %s to %s after %d expansions", start, target, p.expanded)
		return nil
	}
	return reconstruct(fallback)
}

// blockedByShip reports whether next overlaps a ship other than the one at start.
func (p *Pathfinder) blockedByShip(w *game.WorldState, start, next GraphNode) bool {
	for _, s := range w.Ships {
		if s.Position == start.Coordinate {
			continue
		}
		if s.IsAt(next.Coordinate) {
			return true
		}
	}
	return false
}

// hazardCost prices the mines and cannonballs the ship meets when moving from current to
// next, arriving after the given number of turns.
func (p *Pathfinder) hazardCost(w *game.WorldState, current, next GraphNode, arrival int) int {
	preRotateBow := next.Coordinate.Neighbor(current.Orientation)
	bow, stern := next.Bow(), next.Stern()
	touches := func(c hex.Coordinate) bool {
		return c == preRotateBow || c == bow || c == stern
	}

	cost := 0
	for _, m := range w.Mines {
		if m.Position == next.Coordinate || touches(m.Position) {
			cost += p.rules.MineDamage
			break
		}
	}
	for _, c := range w.Cannonballs {
		if c.RemainingTurns != arrival {
			continue
		}
		if c.Position == next.Coordinate {
			cost += p.rules.HighDamage
		} else if touches(c.Position) {
			cost += p.rules.LowDamage
		}
	}
	return cost
}

func reconstruct(end *searchNode) []GraphNode {
	path := make([]GraphNode, end.depth)
	for item := end; item.parent != nil; item = item.parent {
		path[item.depth-1] = item.node
	}
	return path
}
