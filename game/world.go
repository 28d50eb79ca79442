package game

import (
	"fmt"
	"maps"
	"slices"
)

// WorldState is the full dynamic state of a match: every live entity plus the bookkeeping
// needed to roll back speculative simulation. Entities are stored by value in typed slices;
// the identity map gives the kind of every live id.
type WorldState struct {
	Me          int          // Owner id of the controlled side
	Turn        int          // Zero-based index of the current turn
	Ships       []Ship       // All ships, including the opponent's
	Barrels     []RumBarrel  // Rum barrels still floating
	Mines       []Mine       // Armed mines
	Cannonballs []Cannonball // Cannonballs in flight

	entities map[int]Kind      // Kind of every live entity, keyed by id
	nextID   int               // Next synthetic id for entities spawned by the simulator
	pending  map[int]cooldowns // Cooldowns committed by NoteAction, applied on the next Update
	observed bool              // Whether Update has been called at least once
	saved    *checkpoint
}

type checkpoint struct {
	turn        int
	ships       []Ship
	barrels     []RumBarrel
	mines       []Mine
	cannonballs []Cannonball
	entities    map[int]Kind
	nextID      int
}

type cooldowns struct {
	cannon int
	mine   int
}

// Snapshot is the full entity listing received at the start of a turn.
type Snapshot struct {
	Ships       []Ship
	Barrels     []RumBarrel
	Mines       []Mine
	Cannonballs []Cannonball
}

// NewWorldState returns an empty world controlled by owner me.
func NewWorldState(me int) *WorldState {
	return &WorldState{
		Me:       me,
		entities: make(map[int]Kind),
		nextID:   -1,
		pending:  make(map[int]cooldowns),
	}
}

// AddShip registers s, replacing any entity with the same id.
func (w *WorldState) AddShip(s Ship) {
	w.forget(s.ID)
	w.Ships = append(w.Ships, s)
	w.entities[s.ID] = ShipKind
}

func (w *WorldState) AddBarrel(b RumBarrel) {
	w.forget(b.ID)
	w.Barrels = append(w.Barrels, b)
	w.entities[b.ID] = BarrelKind
}

func (w *WorldState) AddMine(m Mine) {
	w.forget(m.ID)
	w.Mines = append(w.Mines, m)
	w.entities[m.ID] = MineKind
}

func (w *WorldState) AddCannonball(c Cannonball) {
	w.forget(c.ID)
	w.Cannonballs = append(w.Cannonballs, c)
	w.entities[c.ID] = CannonballKind
}

// spawnID hands out ids for simulator-created entities. They are negative so they never
// clash with ids assigned by the game.
func (w *WorldState) spawnID() int {
	id := w.nextID
	w.nextID--
	return id
}

// forget removes the entity with the given id from whichever collection holds it.
func (w *WorldState) forget(id int) {
	kind, ok := w.entities[id]
	if !ok {
		return
	}
	delete(w.entities, id)
	switch kind {
	case ShipKind:
		w.Ships = slices.DeleteFunc(w.Ships, func(s Ship) bool { return s.ID == id })
	case BarrelKind:
		w.Barrels = slices.DeleteFunc(w.Barrels, func(b RumBarrel) bool { return b.ID == id })
	case MineKind:
		w.Mines = slices.DeleteFunc(w.Mines, func(m Mine) bool { return m.ID == id })
	case CannonballKind:
		w.Cannonballs = slices.DeleteFunc(w.Cannonballs, func(c Cannonball) bool { return c.ID == id })
	}
}

// Entity returns a copy of the live entity with the given id.
func (w *WorldState) Entity(id int) (Entity, bool) {
	kind, ok := w.entities[id]
	if !ok {
		return nil, false
	}
	switch kind {
	case ShipKind:
		if i := slices.IndexFunc(w.Ships, func(s Ship) bool { return s.ID == id }); i >= 0 {
			return w.Ships[i], true
		}
	case BarrelKind:
		if i := slices.IndexFunc(w.Barrels, func(b RumBarrel) bool { return b.ID == id }); i >= 0 {
			return w.Barrels[i], true
		}
	case MineKind:
		if i := slices.IndexFunc(w.Mines, func(m Mine) bool { return m.ID == id }); i >= 0 {
			return w.Mines[i], true
		}
	case CannonballKind:
		if i := slices.IndexFunc(w.Cannonballs, func(c Cannonball) bool { return c.ID == id }); i >= 0 {
			return w.Cannonballs[i], true
		}
	}
	return nil, false
}

// Ship returns a pointer into the ship slice. It is invalidated by any call that adds or
// removes ships.
func (w *WorldState) Ship(id int) (*Ship, bool) {
	for i := range w.Ships {
		if w.Ships[i].ID == id {
			return &w.Ships[i], true
		}
	}
	return nil, false
}

// OwnedShips returns copies of the ships belonging to owner.
func (w *WorldState) OwnedShips(owner int) []Ship {
	var ships []Ship
	for _, s := range w.Ships {
		if s.Owner == owner {
			ships = append(ships, s)
		}
	}
	return ships
}

func (w *WorldState) MyShips() []Ship {
	return w.OwnedShips(w.Me)
}

// EnemyShips returns every ship not owned by the controlled side.
func (w *WorldState) EnemyShips() []Ship {
	var ships []Ship
	for _, s := range w.Ships {
		if s.Owner != w.Me {
			ships = append(ships, s)
		}
	}
	return ships
}

// Len returns the number of live entities.
func (w *WorldState) Len() int {
	return len(w.entities)
}

// Checkpoint records the current state so that a later Restore returns to it exactly.
// Only one checkpoint is held; a second call overwrites the first. Buffers are reused
// between calls so repeated checkpointing does not allocate once warmed up.
func (w *WorldState) Checkpoint() {
	if w.saved == nil {
		w.saved = &checkpoint{entities: make(map[int]Kind, len(w.entities))}
	}
	cp := w.saved
	cp.turn = w.Turn
	cp.ships = append(cp.ships[:0], w.Ships...)
	cp.barrels = append(cp.barrels[:0], w.Barrels...)
	cp.mines = append(cp.mines[:0], w.Mines...)
	cp.cannonballs = append(cp.cannonballs[:0], w.Cannonballs...)
	clear(cp.entities)
	maps.Copy(cp.entities, w.entities)
	cp.nextID = w.nextID
}

// Restore rolls the world back to the last checkpoint. The checkpoint is kept, so several
// simulations can start from the same state.
func (w *WorldState) Restore() {
	cp := w.saved
	if cp == nil {
		panic("restore without checkpoint")
	}
	w.Turn = cp.turn
	w.Ships = append(w.Ships[:0], cp.ships...)
	w.Barrels = append(w.Barrels[:0], cp.barrels...)
	w.Mines = append(w.Mines[:0], cp.mines...)
	w.Cannonballs = append(w.Cannonballs[:0], cp.cannonballs...)
	clear(w.entities)
	maps.Copy(w.entities, cp.entities)
	w.nextID = cp.nextID
}

// Clone returns an independent deep copy without the checkpoint.
func (w *WorldState) Clone() *WorldState {
	return &WorldState{
		Me:          w.Me,
		Turn:        w.Turn,
		Ships:       slices.Clone(w.Ships),
		Barrels:     slices.Clone(w.Barrels),
		Mines:       slices.Clone(w.Mines),
		Cannonballs: slices.Clone(w.Cannonballs),
		entities:    maps.Clone(w.entities),
		nextID:      w.nextID,
		pending:     maps.Clone(w.pending),
		observed:    w.observed,
	}
}

// View returns a copy of the world seen from owner's side.
func (w *WorldState) View(owner int) *WorldState {
	view := w.Clone()
	view.Me = owner
	view.pending = make(map[int]cooldowns)
	return view
}

// Snapshot lists the entities the way the referee reports them. Cooldowns are not part of
// the report and come out as zero.
func (w *WorldState) Snapshot() Snapshot {
	snap := Snapshot{
		Ships:       slices.Clone(w.Ships),
		Barrels:     slices.Clone(w.Barrels),
		Mines:       slices.Clone(w.Mines),
		Cannonballs: slices.Clone(w.Cannonballs),
	}
	for i := range snap.Ships {
		snap.Ships[i].CannonCooldown = 0
		snap.Ships[i].MineCooldown = 0
		snap.Ships[i].InitialHealth = 0
	}
	return snap
}

// Update replaces the entity collections with a freshly observed snapshot and advances the
// turn counter. Cooldowns are not part of the observation: ships seen before carry theirs
// over, decremented for the turn that passed, unless NoteAction recorded a new value.
func (w *WorldState) Update(snap Snapshot) {
	carried := make(map[int]cooldowns, len(w.Ships))
	for _, s := range w.Ships {
		if c, ok := w.pending[s.ID]; ok {
			carried[s.ID] = c
			continue
		}
		carried[s.ID] = cooldowns{cannon: max(s.CannonCooldown-1, 0), mine: max(s.MineCooldown-1, 0)}
	}

	w.Ships = w.Ships[:0]
	w.Barrels = w.Barrels[:0]
	w.Mines = w.Mines[:0]
	w.Cannonballs = w.Cannonballs[:0]
	clear(w.entities)
	clear(w.pending)

	for _, s := range snap.Ships {
		if c, ok := carried[s.ID]; ok {
			s.CannonCooldown, s.MineCooldown = c.cannon, c.mine
		}
		s.InitialHealth = s.Health
		w.AddShip(s)
	}
	for _, b := range snap.Barrels {
		w.AddBarrel(b)
	}
	for _, m := range snap.Mines {
		w.AddMine(m)
	}
	for _, c := range snap.Cannonballs {
		w.AddCannonball(c)
	}
	if w.observed {
		w.Turn++
	}
	w.observed = true
}

// NoteAction records that the controlled side issued a for ship id this turn, so that the
// next Update reflects the cooldown the game applied.
func (w *WorldState) NoteAction(id int, a Action, rules *Rules) {
	s, ok := w.Ship(id)
	if !ok {
		return
	}
	c := cooldowns{cannon: max(s.CannonCooldown-1, 0), mine: max(s.MineCooldown-1, 0)}
	if a.Type == FireAction && c.cannon == 0 {
		c.cannon = rules.CannonCooldown
	}
	if a.Type == MineAction && c.mine == 0 {
		c.mine = rules.MineCooldown
	}
	w.pending[id] = c
}

func (w *WorldState) String() string {
	return fmt.Sprintf("turn %d: %d ships, %d barrels, %d mines, %d cannonballs",
		w.Turn, len(w.Ships), len(w.Barrels), len(w.Mines), len(w.Cannonballs))
}
