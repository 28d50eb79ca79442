package engine

import (
	opensimplex "github.com/ojrac/opensimplex-go"
	"golang.org/x/exp/rand"

	"caribbean/game"
	"caribbean/hex"
)

const (
	minShips      = 1
	maxShips      = 3
	minBarrels    = 10
	maxBarrels    = 26
	minRum        = 10
	maxRum        = 20
	minMines      = 5
	maxMines      = 10
	rumThreshold  = 0.5 // Noise level above which a cell is a likely barrel spot
	placeAttempts = 50
)

// NewScenario generates a starting position. The top half of the map is filled at random
// and mirrored onto the bottom half for the other side, so neither side is favored. Barrels
// cluster where a simplex noise field is high.
func NewScenario(seed uint64, rules *game.Rules) game.Snapshot {
	rng := rand.New(rand.NewSource(seed))
	noise := opensimplex.NewNormalized(int64(seed))
	s := &scenario{rules: rules, rng: rng, noise: noise, taken: make(map[hex.Coordinate]bool)}

	ships := minShips + rng.Intn(maxShips-minShips+1)
	for range ships {
		s.placeShips()
	}
	if rules.MinesEnabled {
		mines := minMines + rng.Intn(maxMines-minMines+1)
		for range (mines + 1) / 2 {
			s.placeMines()
		}
	}
	barrels := minBarrels + rng.Intn(maxBarrels-minBarrels+1)
	for range (barrels + 1) / 2 {
		s.placeBarrels()
	}
	return s.snap
}

type scenario struct {
	rules  *game.Rules
	rng    *rand.Rand
	noise  opensimplex.Noise
	taken  map[hex.Coordinate]bool
	snap   game.Snapshot
	nextID int
}

func (s *scenario) id() int {
	id := s.nextID
	s.nextID++
	return id
}

// mirror reflects c across the horizontal axis of the map. Rows keep their parity, so
// neighbors mirror too.
func (s *scenario) mirror(c hex.Coordinate) hex.Coordinate {
	return hex.Coordinate{X: c.X, Y: s.rules.Bounds.Height - 1 - c.Y}
}

func mirrorOrientation(o hex.Orientation) hex.Orientation {
	return (6 - o) % 6
}

// randomCell draws an interior cell of the top half that is free together with its mirror.
func (s *scenario) randomCell(margin int) (hex.Coordinate, bool) {
	b := s.rules.Bounds
	for range placeAttempts {
		c := hex.Coordinate{
			X: margin + s.rng.Intn(b.Width-2*margin),
			Y: margin + s.rng.Intn(b.Height/2-margin),
		}
		if m := s.mirror(c); m.Y-c.Y > 2 && !s.occupied(c, margin) && !s.occupied(m, margin) {
			return c, true
		}
	}
	return hex.Coordinate{}, false
}

func (s *scenario) occupied(c hex.Coordinate, margin int) bool {
	if s.taken[c] {
		return true
	}
	for _, ship := range s.snap.Ships {
		if ship.Position.DistanceTo(c) <= margin {
			return true
		}
	}
	return false
}

func (s *scenario) placeShips() {
	c, ok := s.randomCell(2)
	if !ok {
		return
	}
	o := hex.Orientation(s.rng.Intn(6))
	top := game.Ship{ID: s.id(), Position: c, Orientation: o, Health: s.rules.MaxHealth, Owner: game.Opponent}
	bottom := game.Ship{ID: s.id(), Position: s.mirror(c), Orientation: mirrorOrientation(o), Health: s.rules.MaxHealth, Owner: game.Player}
	for _, ship := range []game.Ship{top, bottom} {
		s.snap.Ships = append(s.snap.Ships, ship)
		s.taken[ship.Position], s.taken[ship.Bow()], s.taken[ship.Stern()] = true, true, true
	}
}

func (s *scenario) placeMines() {
	c, ok := s.randomCell(1)
	if !ok {
		return
	}
	for _, p := range []hex.Coordinate{c, s.mirror(c)} {
		s.snap.Mines = append(s.snap.Mines, game.Mine{ID: s.id(), Position: p})
		s.taken[p] = true
	}
}

func (s *scenario) placeBarrels() {
	var c hex.Coordinate
	found := false
	for range placeAttempts {
		candidate, ok := s.randomCell(1)
		if !ok {
			return
		}
		c, found = candidate, true
		if s.rum(candidate) >= rumThreshold {
			break
		}
	}
	if !found {
		return
	}
	health := minRum + s.rng.Intn(maxRum-minRum+1)
	for _, p := range []hex.Coordinate{c, s.mirror(c)} {
		s.snap.Barrels = append(s.snap.Barrels, game.RumBarrel{ID: s.id(), Position: p, Health: health})
		s.taken[p] = true
	}
}

func (s *scenario) rum(c hex.Coordinate) float64 {
	return octaveNoise(s.noise, float64(c.X), float64(c.Y), 3, 0.12, 0.5)
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
