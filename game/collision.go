package game

import "caribbean/hex"

// placement is the three cells a ship covers.
type placement struct {
	center, bow, stern hex.Coordinate
}

func placementOf(center hex.Coordinate, o hex.Orientation) placement {
	return placement{
		center: center,
		bow:    center.Neighbor(o),
		stern:  center.Neighbor(o.Opposite()),
	}
}

func (p placement) covers(c hex.Coordinate) bool {
	return p.center == c || p.bow == c || p.stern == c
}

// proposal is a ship's placement before and after the change being resolved. A ship that
// is not moving has from == to.
type proposal struct {
	from, to placement
	moving   bool
}

// bowCollides reports whether a's bow lands on any cell of b.
func bowCollides(a, b placement) bool {
	return b.covers(a.bow)
}

// overlaps reports whether a and b share any cell.
func overlaps(a, b placement) bool {
	return b.covers(a.center) || b.covers(a.bow) || b.covers(a.stern)
}

// settle reverts proposals until no colliding pair remains among the ships' current
// placements. When a collides with b, a is reverted if it is moving, otherwise b is.
// Reverts found in one pass are applied together, so two ships meeting head-on are both
// stopped. Only moving ships can be reverted and each ship at most once, so the loop ends
// after at most len(props) passes.
//
// stopped marks every ship found on the colliding side of a pair involving a moving ship,
// including ships that were not moving themselves. reverted is a subset of stopped.
func settle(props []proposal, collides func(a, b placement) bool) (reverted, stopped []bool) {
	reverted = make([]bool, len(props))
	stopped = make([]bool, len(props))
	current := func(i int) placement {
		if reverted[i] || !props[i].moving {
			return props[i].from
		}
		return props[i].to
	}
	active := func(i int) bool {
		return props[i].moving && !reverted[i]
	}

	marks := make([]bool, len(props))
	for {
		clear(marks)
		changed := false
		for i := range props {
			for j := range props {
				if i == j || !collides(current(i), current(j)) {
					continue
				}
				switch {
				case active(i):
					marks[i] = true
					changed = true
				case active(j):
					marks[j] = true
					changed = true
				default:
					continue
				}
				stopped[i] = true
			}
		}
		if !changed {
			return reverted, stopped
		}
		for i, m := range marks {
			if m {
				reverted[i], stopped[i] = true, true
			}
		}
	}
}
