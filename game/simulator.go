package game

import (
	"caribbean/hex"
)

// Outcome reports what happened during one simulated turn.
type Outcome struct {
	Detonations []hex.Coordinate // Cells where cannonballs landed, in spawn order
	Sunk        []Ship           // Ships removed at the end of the turn, as they were when they sank
}

// Simulator applies the turn rules to a WorldState in place.
type Simulator struct {
	rules *Rules
	turns int
}

func NewSimulator(rules *Rules) *Simulator {
	return &Simulator{rules: rules}
}

func (s *Simulator) Rules() *Rules {
	return s.rules
}

// Turns returns the number of turns simulated so far.
func (s *Simulator) Turns() int {
	return s.turns
}

// Advance simulates exactly one turn with the given per-ship actions. Ships without an entry
// wait. The phases run in a fixed order and the result is fully determined by the world and
// the actions.
func (s *Simulator) Advance(w *WorldState, actions map[int]Action) Outcome {
	s.turns++
	var out Outcome

	out.Detonations = s.tickCannonballs(w)
	for i := range w.Ships {
		w.Ships[i].Damage(1)
	}
	for i := range w.Ships {
		w.Ships[i].InitialHealth = w.Ships[i].Health
	}

	headings := s.applyActions(w, actions)
	s.moveShips(w)
	s.rotateShips(w, headings)
	s.collectBarrels(w)
	if s.rules.MineContact {
		s.triggerMines(w)
	}

	remaining := s.hitShips(w, out.Detonations)
	remaining = s.hitMines(w, remaining)
	s.hitBarrels(w, remaining)

	out.Sunk = s.sinkShips(w)
	w.Turn++
	return out
}

// tickCannonballs counts every cannonball down and removes the ones that land this turn.
func (s *Simulator) tickCannonballs(w *WorldState) []hex.Coordinate {
	var landed []hex.Coordinate
	kept := w.Cannonballs[:0]
	for _, c := range w.Cannonballs {
		if c.RemainingTurns <= 0 {
			delete(w.entities, c.ID)
			continue
		}
		c.RemainingTurns--
		if c.RemainingTurns == 0 {
			landed = append(landed, c.Position)
			delete(w.entities, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	clear(w.Cannonballs[len(kept):])
	w.Cannonballs = kept
	return landed
}

// applyActions resolves speed changes, rotations requests, fire and mine commands. It
// returns the requested heading of every ship, indexed like w.Ships.
func (s *Simulator) applyActions(w *WorldState, actions map[int]Action) []hex.Orientation {
	headings := make([]hex.Orientation, len(w.Ships))
	for i := range w.Ships {
		ship := &w.Ships[i]
		headings[i] = ship.Orientation
		if ship.Health <= 0 {
			continue
		}
		ship.CannonCooldown = max(ship.CannonCooldown-1, 0)
		ship.MineCooldown = max(ship.MineCooldown-1, 0)

		action, ok := actions[ship.ID]
		if !ok {
			continue
		}
		switch action.Type {
		case FasterAction:
			if ship.Speed < s.rules.MaxSpeed {
				ship.Speed++
			}
		case SlowerAction:
			if ship.Speed > 0 {
				ship.Speed--
			}
		case PortAction:
			headings[i] = ship.Orientation.Next()
		case StarboardAction:
			headings[i] = ship.Orientation.Prev()
		case FireAction:
			s.fire(w, ship, action.Target)
		case MineAction:
			s.layMine(w, ship)
		}
	}
	return headings
}

func (s *Simulator) fire(w *WorldState, ship *Ship, target hex.Coordinate) {
	if !s.rules.CannonsEnabled || ship.CannonCooldown != 0 || !s.rules.Bounds.Contains(target) {
		return
	}
	distance := ship.Bow().DistanceTo(target)
	if distance > s.rules.FireRangeMax {
		return
	}
	travel := TravelTime(distance)
	id := w.spawnID()
	w.Cannonballs = append(w.Cannonballs, Cannonball{
		ID:             id,
		Position:       target,
		Owner:          ship.ID,
		RemainingTurns: travel,
	})
	w.entities[id] = CannonballKind
	ship.CannonCooldown = s.rules.CannonCooldown
}

// TravelTime is the number of turns a cannonball fired over distance cells takes to land,
// one plus distance/3 rounded to the nearest integer.
func TravelTime(distance int) int {
	return 1 + (distance+1)/3
}

func (s *Simulator) layMine(w *WorldState, ship *Ship) {
	if !s.rules.MinesEnabled || ship.MineCooldown != 0 {
		return
	}
	target := ship.Stern().Neighbor(ship.Orientation.Opposite())
	if !s.rules.Bounds.Contains(target) || !w.cellIsFree(target) {
		return
	}
	id := w.spawnID()
	w.Mines = append(w.Mines, Mine{ID: id, Position: target})
	w.entities[id] = MineKind
	ship.MineCooldown = s.rules.MineCooldown
}

// cellIsFree reports whether no barrel, mine or ship occupies c.
func (w *WorldState) cellIsFree(c hex.Coordinate) bool {
	for _, b := range w.Barrels {
		if b.Position == c {
			return false
		}
	}
	for _, m := range w.Mines {
		if m.Position == c {
			return false
		}
	}
	for _, s := range w.Ships {
		if s.IsAt(c) {
			return false
		}
	}
	return true
}

// moveShips advances every ship one cell per sub-step, up to the maximum speed, undoing
// moves that put a bow onto another ship.
func (s *Simulator) moveShips(w *WorldState) {
	props := make([]proposal, len(w.Ships))
	for step := 1; step <= s.rules.MaxSpeed; step++ {
		for i := range w.Ships {
			ship := &w.Ships[i]
			here := placementOf(ship.Position, ship.Orientation)
			props[i] = proposal{from: here, to: here}
			if ship.Speed < step {
				continue
			}
			next := ship.Position.Neighbor(ship.Orientation)
			if !s.rules.Bounds.Contains(next) {
				ship.Speed = 0
				continue
			}
			props[i].to = placementOf(next, ship.Orientation)
			props[i].moving = true
		}

		reverted, stopped := settle(props, bowCollides)
		for i := range w.Ships {
			if props[i].moving && !reverted[i] {
				w.Ships[i].Position = props[i].to.center
			}
			if stopped[i] {
				w.Ships[i].Speed = 0
			}
		}
	}
}

// rotateShips turns ships to their requested heading unless the turned ship would overlap
// another one.
func (s *Simulator) rotateShips(w *WorldState, headings []hex.Orientation) {
	props := make([]proposal, len(w.Ships))
	for i, ship := range w.Ships {
		props[i] = proposal{
			from:   placementOf(ship.Position, ship.Orientation),
			to:     placementOf(ship.Position, headings[i]),
			moving: headings[i] != ship.Orientation,
		}
	}
	reverted, stopped := settle(props, overlaps)
	for i := range w.Ships {
		if props[i].moving && !reverted[i] {
			w.Ships[i].Orientation = headings[i]
		}
		if stopped[i] {
			w.Ships[i].Speed = 0
		}
	}
}

func (s *Simulator) collectBarrels(w *WorldState) {
	for i := range w.Ships {
		ship := &w.Ships[i]
		w.Barrels = deleteBarrels(w, func(b RumBarrel) bool {
			if !ship.IsAt(b.Position) {
				return false
			}
			ship.Heal(b.Health, s.rules.MaxHealth)
			return true
		})
	}
}

// triggerMines detonates mines that a ship touches. The touching ship takes the full blast
// and every other ship with a cell next to the mine takes splash damage.
func (s *Simulator) triggerMines(w *WorldState) {
	w.Mines = deleteMines(w, func(m Mine) bool {
		victim := -1
		for i := range w.Ships {
			if w.Ships[i].IsAt(m.Position) {
				w.Ships[i].Damage(s.rules.MineDamage)
				victim = i
			}
		}
		if victim < 0 {
			return false
		}
		for i := range w.Ships {
			if i == victim {
				continue
			}
			ship := &w.Ships[i]
			if ship.Position.DistanceTo(m.Position) <= 1 ||
				ship.Bow().DistanceTo(m.Position) <= 1 ||
				ship.Stern().DistanceTo(m.Position) <= 1 {
				ship.Damage(s.rules.NearMineDamage)
			}
		}
		return true
	})
}

// hitShips applies each landed cannonball to one ship and returns the detonations that hit
// nothing. A glancing hit on a bow or stern takes precedence over a hit on a center.
func (s *Simulator) hitShips(w *WorldState, detonations []hex.Coordinate) []hex.Coordinate {
	var missed []hex.Coordinate
	for _, d := range detonations {
		if i := indexOf(w.Ships, func(ship Ship) bool { return ship.Bow() == d || ship.Stern() == d }); i >= 0 {
			w.Ships[i].Damage(s.rules.LowDamage)
			continue
		}
		if i := indexOf(w.Ships, func(ship Ship) bool { return ship.Position == d }); i >= 0 {
			w.Ships[i].Damage(s.rules.HighDamage)
			continue
		}
		missed = append(missed, d)
	}
	return missed
}

func (s *Simulator) hitMines(w *WorldState, detonations []hex.Coordinate) []hex.Coordinate {
	var missed []hex.Coordinate
	for _, d := range detonations {
		i := indexOf(w.Mines, func(m Mine) bool { return m.Position == d })
		if i < 0 {
			missed = append(missed, d)
			continue
		}
		delete(w.entities, w.Mines[i].ID)
		w.Mines = append(w.Mines[:i], w.Mines[i+1:]...)
	}
	return missed
}

func (s *Simulator) hitBarrels(w *WorldState, detonations []hex.Coordinate) {
	for _, d := range detonations {
		i := indexOf(w.Barrels, func(b RumBarrel) bool { return b.Position == d })
		if i < 0 {
			continue
		}
		delete(w.entities, w.Barrels[i].ID)
		w.Barrels = append(w.Barrels[:i], w.Barrels[i+1:]...)
	}
}

// sinkShips removes ships without health, leaving a barrel behind when the reward is positive.
func (s *Simulator) sinkShips(w *WorldState) []Ship {
	var sunk []Ship
	kept := w.Ships[:0]
	for _, ship := range w.Ships {
		if ship.Health > 0 {
			kept = append(kept, ship)
			continue
		}
		sunk = append(sunk, ship)
		delete(w.entities, ship.ID)
		if reward := min(s.rules.RewardRumOnKill, ship.InitialHealth); reward > 0 {
			id := w.spawnID()
			w.Barrels = append(w.Barrels, RumBarrel{ID: id, Position: ship.Position, Health: reward})
			w.entities[id] = BarrelKind
		}
	}
	clear(w.Ships[len(kept):])
	w.Ships = kept
	return sunk
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func deleteBarrels(w *WorldState, del func(RumBarrel) bool) []RumBarrel {
	kept := w.Barrels[:0]
	for _, b := range w.Barrels {
		if del(b) {
			delete(w.entities, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	clear(w.Barrels[len(kept):])
	return kept
}

func deleteMines(w *WorldState, del func(Mine) bool) []Mine {
	kept := w.Mines[:0]
	for _, m := range w.Mines {
		if del(m) {
			delete(w.entities, m.ID)
			continue
		}
		kept = append(kept, m)
	}
	clear(w.Mines[len(kept):])
	return kept
}
