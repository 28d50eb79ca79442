package game

import "caribbean/hex"

// Kind tags the entity variants.
type Kind int

const (
	ShipKind Kind = iota
	BarrelKind
	MineKind
	CannonballKind
)

func (k Kind) String() string {
	switch k {
	case ShipKind:
		return "SHIP"
	case BarrelKind:
		return "BARREL"
	case MineKind:
		return "MINE"
	case CannonballKind:
		return "CANNONBALL"
	default:
		return "UNKNOWN"
	}
}

// Entity is implemented by the four entity variants. Code that needs per-variant behavior
// switches on the concrete type.
type Entity interface {
	Kind() Kind
	Identity() int
	Location() hex.Coordinate
}

// Ship is a three-cell vessel: Position is its center, Bow and Stern are derived from Orientation.
type Ship struct {
	ID             int
	Position       hex.Coordinate
	Orientation    hex.Orientation
	Speed          int
	Health         int
	Owner          int
	CannonCooldown int
	MineCooldown   int
	// InitialHealth is the health after this turn's rum attrition, used to size the
	// barrel left behind when the ship sinks.
	InitialHealth int
}

func (s Ship) Kind() Kind               { return ShipKind }
func (s Ship) Identity() int            { return s.ID }
func (s Ship) Location() hex.Coordinate { return s.Position }
func (s Ship) Bow() hex.Coordinate      { return s.Position.Neighbor(s.Orientation) }
func (s Ship) Stern() hex.Coordinate    { return s.Position.Neighbor(s.Orientation.Opposite()) }
func (s Ship) Alive() bool              { return s.Health > 0 }

// IsAt reports whether any of the ship's three cells is c.
func (s Ship) IsAt(c hex.Coordinate) bool {
	return s.Position == c || s.Bow() == c || s.Stern() == c
}

// CanFire reports whether a FIRE issued this turn would be accepted. Cooldowns are
// decremented before actions apply, so a cooldown of 1 is already clear.
func (s Ship) CanFire() bool {
	return s.CannonCooldown <= 1
}

func (s Ship) CanMine() bool {
	return s.MineCooldown <= 1
}

func (s *Ship) Damage(amount int) {
	s.Health = max(s.Health-amount, 0)
}

func (s *Ship) Heal(amount, maxHealth int) {
	s.Health = min(s.Health+amount, maxHealth)
}

type Mine struct {
	ID       int
	Position hex.Coordinate
}

func (m Mine) Kind() Kind               { return MineKind }
func (m Mine) Identity() int            { return m.ID }
func (m Mine) Location() hex.Coordinate { return m.Position }

// Cannonball is an in-flight projectile. Position is the impact cell and Owner the id of
// the ship that fired it.
type Cannonball struct {
	ID             int
	Position       hex.Coordinate
	Owner          int
	RemainingTurns int
}

func (c Cannonball) Kind() Kind               { return CannonballKind }
func (c Cannonball) Identity() int            { return c.ID }
func (c Cannonball) Location() hex.Coordinate { return c.Position }

// RumBarrel heals the ship that collects it by Health.
type RumBarrel struct {
	ID       int
	Position hex.Coordinate
	Health   int
}

func (b RumBarrel) Kind() Kind               { return BarrelKind }
func (b RumBarrel) Identity() int            { return b.ID }
func (b RumBarrel) Location() hex.Coordinate { return b.Position }
