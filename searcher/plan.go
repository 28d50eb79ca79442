package searcher

import (
	"fmt"
	"slices"
	"strings"

	"caribbean/game"
)

// Plan assigns every controlled ship a fixed-length sequence of actions, one per simulated
// turn. Score is only meaningful once the plan has been evaluated.
type Plan struct {
	Actions map[int][]game.Action
	Score   float64
}

func newPlan() *Plan {
	return &Plan{Actions: make(map[int][]game.Action)}
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	c := &Plan{Actions: make(map[int][]game.Action, len(p.Actions)), Score: p.Score}
	for id, seq := range p.Actions {
		c.Actions[id] = slices.Clone(seq)
	}
	return c
}

// ActionAt returns the action planned for ship id at the given depth.
func (p *Plan) ActionAt(id, depth int) (game.Action, bool) {
	seq, ok := p.Actions[id]
	if !ok || depth >= len(seq) {
		return game.Action{}, false
	}
	return seq[depth], true
}

func (p *Plan) String() string {
	ids := make([]int, 0, len(p.Actions))
	for id := range p.Actions {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "score %.1f", p.Score)
	for _, id := range ids {
		fmt.Fprintf(&b, " | ship %d:", id)
		for _, a := range p.Actions[id] {
			fmt.Fprintf(&b, " %s", a)
		}
	}
	return b.String()
}
