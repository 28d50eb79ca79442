package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"caribbean/hex"
)

func newShip(id, owner int, x, y int, o hex.Orientation, speed int) Ship {
	return Ship{
		ID:          id,
		Position:    hex.Coordinate{X: x, Y: y},
		Orientation: o,
		Speed:       speed,
		Health:      100,
		Owner:       owner,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func requireSameWorld(t *testing.T, want, got *WorldState) {
	t.Helper()
	require.Equal(t, want.Turn, got.Turn)
	require.Equal(t, nonNil(want.Ships), nonNil(got.Ships))
	require.Equal(t, nonNil(want.Barrels), nonNil(got.Barrels))
	require.Equal(t, nonNil(want.Mines), nonNil(got.Mines))
	require.Equal(t, nonNil(want.Cannonballs), nonNil(got.Cannonballs))
	require.Equal(t, want.entities, got.entities)
	require.Equal(t, want.nextID, got.nextID)
}

func TestAdvance(t *testing.T) {
	rules := NewStandardRules()

	t.Run("head-on collision reverts both ships", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 2))
		w.AddShip(newShip(2, Opponent, 8, 5, hex.Left, 2))

		NewSimulator(rules).Advance(w, nil)

		a, _ := w.Ship(1)
		b, _ := w.Ship(2)
		require.Equal(t, 0, a.Speed)
		require.Equal(t, 0, b.Speed)
		require.Equal(t, hex.Coordinate{X: 5, Y: 5}, a.Position)
		require.Equal(t, hex.Coordinate{X: 8, Y: 5}, b.Position)
	})

	t.Run("ship moves speed cells along its heading", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 2))

		NewSimulator(rules).Advance(w, nil)

		s, _ := w.Ship(1)
		require.Equal(t, hex.Coordinate{X: 7, Y: 5}, s.Position)
		require.Equal(t, 2, s.Speed)
		require.Equal(t, 99, s.Health)
	})

	t.Run("ship stops at the map edge", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 21, 5, hex.Right, 2))

		NewSimulator(rules).Advance(w, nil)

		s, _ := w.Ship(1)
		require.Equal(t, hex.Coordinate{X: 22, Y: 5}, s.Position)
		require.Equal(t, 0, s.Speed)
	})

	t.Run("speed changes are clamped", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 2))
		w.AddShip(newShip(2, Player, 5, 10, hex.Right, 0))

		NewSimulator(rules).Advance(w, map[int]Action{
			1: {Type: FasterAction},
			2: {Type: SlowerAction},
		})

		a, _ := w.Ship(1)
		b, _ := w.Ship(2)
		require.Equal(t, 2, a.Speed)
		require.Equal(t, 0, b.Speed)
	})

	t.Run("port and starboard rotate", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 0))
		w.AddShip(newShip(2, Player, 5, 12, hex.Right, 0))

		NewSimulator(rules).Advance(w, map[int]Action{
			1: {Type: PortAction},
			2: {Type: StarboardAction},
		})

		a, _ := w.Ship(1)
		b, _ := w.Ship(2)
		require.Equal(t, hex.UpRight, a.Orientation)
		require.Equal(t, hex.DownRight, b.Orientation)
	})

	t.Run("rotation into another ship is reverted", func(t *testing.T) {
		w := NewWorldState(Player)
		// After sailing to (6,4), turning port puts the bow on (6,3), the other ship's center.
		w.AddShip(newShip(1, Player, 5, 4, hex.Right, 1))
		w.AddShip(newShip(2, Opponent, 6, 3, hex.Right, 0))

		NewSimulator(rules).Advance(w, map[int]Action{1: {Type: PortAction}})

		a, _ := w.Ship(1)
		require.Equal(t, hex.Right, a.Orientation)
		require.Equal(t, 0, a.Speed)
	})

	t.Run("ship hit by a turning bow stops", func(t *testing.T) {
		w := NewWorldState(Player)
		// Ship 2 sails to (7,4) with its bow on (6,4), where ship 1 wants to turn its bow.
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 0))
		w.AddShip(newShip(2, Opponent, 8, 4, hex.Left, 1))

		NewSimulator(rules).Advance(w, map[int]Action{1: {Type: PortAction}})

		a, _ := w.Ship(1)
		b, _ := w.Ship(2)
		require.Equal(t, hex.Right, a.Orientation)
		require.Equal(t, 0, a.Speed)
		require.Equal(t, hex.Coordinate{X: 7, Y: 4}, b.Position)
		require.Equal(t, 0, b.Speed)
	})

	t.Run("slower ship meeting a bow on its bow stops", func(t *testing.T) {
		w := NewWorldState(Player)
		// Both ships sail one cell; on the second step ship 2 would put its bow on ship 1's bow.
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 1))
		w.AddShip(newShip(2, Opponent, 10, 5, hex.Left, 2))

		NewSimulator(rules).Advance(w, nil)

		a, _ := w.Ship(1)
		b, _ := w.Ship(2)
		require.Equal(t, hex.Coordinate{X: 6, Y: 5}, a.Position)
		require.Equal(t, 0, a.Speed)
		require.Equal(t, hex.Coordinate{X: 9, Y: 5}, b.Position)
		require.Equal(t, 0, b.Speed)
	})

	t.Run("ship rammed from behind keeps its speed", func(t *testing.T) {
		w := NewWorldState(Player)
		// On the second step ship 2 would put its bow on ship 1's stern; ship 1's bow is clear.
		w.AddShip(newShip(1, Player, 10, 5, hex.Right, 1))
		w.AddShip(newShip(2, Opponent, 7, 5, hex.Right, 2))

		NewSimulator(rules).Advance(w, nil)

		a, _ := w.Ship(1)
		b, _ := w.Ship(2)
		require.Equal(t, hex.Coordinate{X: 11, Y: 5}, a.Position)
		require.Equal(t, 1, a.Speed)
		require.Equal(t, hex.Coordinate{X: 8, Y: 5}, b.Position)
		require.Equal(t, 0, b.Speed)
	})

	t.Run("unknown action type is ignored", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 1))

		NewSimulator(rules).Advance(w, map[int]Action{1: {Type: ActionType(42)}})

		s, _ := w.Ship(1)
		require.Equal(t, hex.Coordinate{X: 6, Y: 5}, s.Position)
		require.Equal(t, hex.Right, s.Orientation)
	})

	t.Run("collecting a barrel heals up to max health", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 1))
		w.AddBarrel(RumBarrel{ID: 10, Position: hex.Coordinate{X: 7, Y: 5}, Health: 20})

		NewSimulator(rules).Advance(w, nil)

		s, _ := w.Ship(1)
		require.Equal(t, 100, s.Health)
		require.Empty(t, w.Barrels)
		_, ok := w.Entity(10)
		require.False(t, ok)
	})
}

func TestAdvanceCannonballs(t *testing.T) {
	rules := NewStandardRules()

	t.Run("lifecycle", func(t *testing.T) {
		w := NewWorldState(Player)
		target := hex.Coordinate{X: 3, Y: 3}
		w.AddCannonball(Cannonball{ID: 7, Position: target, Owner: 1, RemainingTurns: 2})
		sim := NewSimulator(rules)

		out := sim.Advance(w, nil)
		require.Empty(t, out.Detonations)
		require.Len(t, w.Cannonballs, 1)
		require.Equal(t, 1, w.Cannonballs[0].RemainingTurns)

		out = sim.Advance(w, nil)
		require.Equal(t, []hex.Coordinate{target}, out.Detonations)
		require.Empty(t, w.Cannonballs)
		_, ok := w.Entity(7)
		require.False(t, ok)
	})

	t.Run("center hit deals high damage", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 10, 10, hex.Right, 0))
		w.AddCannonball(Cannonball{ID: 7, Position: hex.Coordinate{X: 10, Y: 10}, RemainingTurns: 1})

		NewSimulator(rules).Advance(w, nil)

		s, _ := w.Ship(1)
		require.Equal(t, 100-1-rules.HighDamage, s.Health)
	})

	t.Run("bow hit deals low damage", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 10, 10, hex.Right, 0))
		w.AddCannonball(Cannonball{ID: 7, Position: hex.Coordinate{X: 11, Y: 10}, RemainingTurns: 1})

		NewSimulator(rules).Advance(w, nil)

		s, _ := w.Ship(1)
		require.Equal(t, 100-1-rules.LowDamage, s.Health)
	})

	t.Run("glancing hit takes precedence over a center hit", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 10, 10, hex.Right, 0))
		w.AddShip(newShip(2, Opponent, 10, 9, hex.DownLeft, 0))
		// (10,10) is ship 1's center and ship 2's bow.
		w.AddCannonball(Cannonball{ID: 7, Position: hex.Coordinate{X: 10, Y: 10}, RemainingTurns: 1})

		NewSimulator(rules).Advance(w, nil)

		a, _ := w.Ship(1)
		b, _ := w.Ship(2)
		require.Equal(t, 99, a.Health)
		require.Equal(t, 100-1-rules.LowDamage, b.Health)
	})

	t.Run("detonation destroys a mine and a barrel", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddMine(Mine{ID: 3, Position: hex.Coordinate{X: 4, Y: 4}})
		w.AddBarrel(RumBarrel{ID: 4, Position: hex.Coordinate{X: 8, Y: 8}, Health: 15})
		w.AddCannonball(Cannonball{ID: 5, Position: hex.Coordinate{X: 4, Y: 4}, RemainingTurns: 1})
		w.AddCannonball(Cannonball{ID: 6, Position: hex.Coordinate{X: 8, Y: 8}, RemainingTurns: 1})

		NewSimulator(rules).Advance(w, nil)

		require.Empty(t, w.Mines)
		require.Empty(t, w.Barrels)
		require.Zero(t, w.Len())
	})

	t.Run("fire spawns a cannonball and starts the cooldown", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 0))
		target := hex.Coordinate{X: 9, Y: 5}
		sim := NewSimulator(rules)

		sim.Advance(w, map[int]Action{1: {Type: FireAction, Target: target}})

		require.Len(t, w.Cannonballs, 1)
		ball := w.Cannonballs[0]
		require.Equal(t, target, ball.Position)
		require.Equal(t, 1, ball.Owner)
		require.Equal(t, 2, ball.RemainingTurns)
		require.Less(t, ball.ID, 0)
		s, _ := w.Ship(1)
		require.Equal(t, rules.CannonCooldown, s.CannonCooldown)

		sim.Advance(w, map[int]Action{1: {Type: FireAction, Target: hex.Coordinate{X: 9, Y: 7}}})
		require.Len(t, w.Cannonballs, 1, "cannon still cooling down")
	})

	t.Run("fire out of range is ignored", func(t *testing.T) {
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 0, 5, hex.Right, 0))

		NewSimulator(rules).Advance(w, map[int]Action{1: {Type: FireAction, Target: hex.Coordinate{X: 22, Y: 5}}})

		require.Empty(t, w.Cannonballs)
		s, _ := w.Ship(1)
		require.Zero(t, s.CannonCooldown)
	})

	t.Run("travel time grows with distance", func(t *testing.T) {
		for distance, want := range map[int]int{0: 1, 1: 1, 2: 2, 4: 2, 5: 3, 10: 4} {
			t.Run(fmt.Sprint(distance), func(t *testing.T) {
				w := NewWorldState(Player)
				w.AddShip(newShip(1, Player, 5, 6, hex.Right, 0))
				target := hex.Coordinate{X: 6 + distance, Y: 6}

				NewSimulator(rules).Advance(w, map[int]Action{1: {Type: FireAction, Target: target}})

				require.Len(t, w.Cannonballs, 1)
				require.Equal(t, want, w.Cannonballs[0].RemainingTurns)
			})
		}
	})
}

func TestAdvanceMines(t *testing.T) {
	t.Run("mine is dropped behind the stern", func(t *testing.T) {
		rules := NewStandardRules()
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 0))

		NewSimulator(rules).Advance(w, map[int]Action{1: {Type: MineAction}})

		require.Len(t, w.Mines, 1)
		require.Equal(t, hex.Coordinate{X: 3, Y: 5}, w.Mines[0].Position)
		s, _ := w.Ship(1)
		require.Equal(t, rules.MineCooldown, s.MineCooldown)
	})

	t.Run("mine is not dropped on a barrel", func(t *testing.T) {
		rules := NewStandardRules()
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 0))
		w.AddBarrel(RumBarrel{ID: 2, Position: hex.Coordinate{X: 3, Y: 5}, Health: 10})

		NewSimulator(rules).Advance(w, map[int]Action{1: {Type: MineAction}})

		require.Empty(t, w.Mines)
	})

	t.Run("mines disabled", func(t *testing.T) {
		rules := NewStandardRules()
		rules.MinesEnabled = false
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 0))

		NewSimulator(rules).Advance(w, map[int]Action{1: {Type: MineAction}})

		require.Empty(t, w.Mines)
	})

	t.Run("contact rule off leaves the mine", func(t *testing.T) {
		rules := NewStandardRules()
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 1))
		w.AddMine(Mine{ID: 2, Position: hex.Coordinate{X: 7, Y: 5}})

		NewSimulator(rules).Advance(w, nil)

		s, _ := w.Ship(1)
		require.Equal(t, 99, s.Health)
		require.Len(t, w.Mines, 1)
	})

	t.Run("contact rule damages the victim and its neighbors", func(t *testing.T) {
		rules := NewStandardRules()
		rules.MineContact = true
		w := NewWorldState(Player)
		w.AddShip(newShip(1, Player, 5, 5, hex.Right, 1))
		w.AddShip(newShip(2, Opponent, 8, 6, hex.Right, 0))
		w.AddMine(Mine{ID: 3, Position: hex.Coordinate{X: 7, Y: 5}})

		NewSimulator(rules).Advance(w, nil)

		victim, _ := w.Ship(1)
		bystander, _ := w.Ship(2)
		require.Equal(t, 100-1-rules.MineDamage, victim.Health)
		require.Equal(t, 100-1-rules.NearMineDamage, bystander.Health)
		require.Empty(t, w.Mines)
	})
}

func TestAdvanceSinking(t *testing.T) {
	t.Run("sunk ship leaves a barrel worth its remaining rum", func(t *testing.T) {
		rules := NewStandardRules()
		w := NewWorldState(Player)
		ship := newShip(1, Player, 10, 10, hex.Right, 0)
		ship.Health = 26
		w.AddShip(ship)
		w.AddCannonball(Cannonball{ID: 2, Position: ship.Position, RemainingTurns: 1})

		out := NewSimulator(rules).Advance(w, nil)

		require.Empty(t, w.Ships)
		require.Len(t, out.Sunk, 1)
		require.Equal(t, 25, out.Sunk[0].InitialHealth)
		require.Len(t, w.Barrels, 1)
		require.Equal(t, ship.Position, w.Barrels[0].Position)
		require.Equal(t, min(rules.RewardRumOnKill, 25), w.Barrels[0].Health)
	})

	t.Run("reward is capped", func(t *testing.T) {
		rules := NewStandardRules()
		w := NewWorldState(Player)
		ship := newShip(1, Player, 10, 10, hex.Right, 0)
		ship.Health = 51
		w.AddShip(ship)
		w.AddCannonball(Cannonball{ID: 2, Position: ship.Position, RemainingTurns: 1})

		NewSimulator(rules).Advance(w, nil)

		require.Len(t, w.Barrels, 1)
		require.Equal(t, rules.RewardRumOnKill, w.Barrels[0].Health)
	})

	t.Run("no barrel without reward", func(t *testing.T) {
		rules := NewStandardRules()
		rules.RewardRumOnKill = 0
		w := NewWorldState(Player)
		ship := newShip(1, Player, 10, 10, hex.Right, 0)
		ship.Health = 1
		w.AddShip(ship)

		out := NewSimulator(rules).Advance(w, nil)

		require.Len(t, out.Sunk, 1)
		require.Empty(t, w.Ships)
		require.Empty(t, w.Barrels)
	})
}

func randomWorld(r *rand.Rand, ships int) *WorldState {
	w := NewWorldState(Player)
	occupied := make(map[hex.Coordinate]bool)
	for id := 0; len(w.Ships) < ships; id++ {
		center := hex.Coordinate{X: 1 + r.Intn(hex.StandardBounds.Width-2), Y: 1 + r.Intn(hex.StandardBounds.Height-2)}
		o := hex.Orientation(r.Intn(6))
		s := Ship{
			ID:             id,
			Position:       center,
			Orientation:    o,
			Speed:          r.Intn(3),
			Health:         1 + r.Intn(100),
			Owner:          id % 2,
			CannonCooldown: r.Intn(3),
			MineCooldown:   r.Intn(6),
		}
		cells := []hex.Coordinate{s.Position, s.Bow(), s.Stern()}
		if occupied[cells[0]] || occupied[cells[1]] || occupied[cells[2]] {
			continue
		}
		for _, c := range cells {
			occupied[c] = true
		}
		w.AddShip(s)
	}
	for i := 0; i < 6; i++ {
		c := hex.Coordinate{X: r.Intn(hex.StandardBounds.Width), Y: r.Intn(hex.StandardBounds.Height)}
		if occupied[c] {
			continue
		}
		occupied[c] = true
		if i%2 == 0 {
			w.AddMine(Mine{ID: 100 + i, Position: c})
		} else {
			w.AddBarrel(RumBarrel{ID: 100 + i, Position: c, Health: 10 + r.Intn(20)})
		}
	}
	w.AddCannonball(Cannonball{ID: 200, Position: w.Ships[0].Position, Owner: 1, RemainingTurns: 1 + r.Intn(2)})
	return w
}

func randomActions(r *rand.Rand, w *WorldState) map[int]Action {
	actions := make(map[int]Action, len(w.Ships))
	for _, s := range w.Ships {
		actions[s.ID] = Action{
			Type:   ActionType(r.Intn(7)),
			Target: hex.Coordinate{X: r.Intn(hex.StandardBounds.Width), Y: r.Intn(hex.StandardBounds.Height)},
		}
	}
	return actions
}

func TestAdvanceDeterminism(t *testing.T) {
	rules := NewStandardRules()
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		w := randomWorld(r, 6)
		other := w.Clone()
		actions := randomActions(r, w)

		outA := NewSimulator(rules).Advance(w, actions)
		outB := NewSimulator(rules).Advance(other, actions)

		require.Equal(t, outA, outB)
		requireSameWorld(t, w, other)
	}
}

func TestAdvanceCollisionInvariant(t *testing.T) {
	rules := NewStandardRules()
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		w := randomWorld(r, 1+r.Intn(8))
		sim := NewSimulator(rules)
		for turn := 0; turn < 3; turn++ {
			sim.Advance(w, randomActions(r, w))
			for a := range w.Ships {
				for b := range w.Ships {
					if a == b {
						continue
					}
					bow := w.Ships[a].Bow()
					require.False(t, w.Ships[b].IsAt(bow), "ship %d bow on ship %d", w.Ships[a].ID, w.Ships[b].ID)
				}
			}
		}
	}
}

func TestSettle(t *testing.T) {
	t.Run("stationary overlap does not loop", func(t *testing.T) {
		p := placementOf(hex.Coordinate{X: 5, Y: 5}, hex.Right)
		props := []proposal{{from: p, to: p}, {from: p, to: p}}

		reverted, stopped := settle(props, overlaps)
		require.Equal(t, []bool{false, false}, reverted)
		require.Equal(t, []bool{false, false}, stopped)
	})

	t.Run("moving ship into a stationary one is reverted", func(t *testing.T) {
		still := placementOf(hex.Coordinate{X: 7, Y: 5}, hex.Right)
		from := placementOf(hex.Coordinate{X: 4, Y: 5}, hex.Right)
		to := placementOf(hex.Coordinate{X: 5, Y: 5}, hex.Right)
		props := []proposal{{from: from, to: to, moving: true}, {from: still, to: still}}

		reverted, stopped := settle(props, bowCollides)
		require.Equal(t, []bool{true, false}, reverted)
		// The stationary ship's bow is clear, so it keeps going.
		require.Equal(t, []bool{true, false}, stopped)
	})

	t.Run("stationary ship whose bow is hit is stopped", func(t *testing.T) {
		still := placementOf(hex.Coordinate{X: 6, Y: 5}, hex.Right)
		from := placementOf(hex.Coordinate{X: 9, Y: 5}, hex.Left)
		to := placementOf(hex.Coordinate{X: 8, Y: 5}, hex.Left)
		props := []proposal{{from: still, to: still}, {from: from, to: to, moving: true}}

		reverted, stopped := settle(props, bowCollides)
		require.Equal(t, []bool{false, true}, reverted)
		require.Equal(t, []bool{true, true}, stopped)
	})

	t.Run("overlap stops both sides", func(t *testing.T) {
		still := placementOf(hex.Coordinate{X: 7, Y: 4}, hex.Left)
		from := placementOf(hex.Coordinate{X: 5, Y: 5}, hex.Right)
		to := placementOf(hex.Coordinate{X: 5, Y: 5}, hex.UpRight)
		props := []proposal{{from: from, to: to, moving: true}, {from: still, to: still}}

		reverted, stopped := settle(props, overlaps)
		require.Equal(t, []bool{true, false}, reverted)
		require.Equal(t, []bool{true, true}, stopped)
	})

	t.Run("reverting cascades", func(t *testing.T) {
		// Ship 0 is blocked by a stationary ship; once it stays put, ship 1 following it is blocked too.
		blocker := placementOf(hex.Coordinate{X: 8, Y: 5}, hex.Right)
		props := []proposal{
			{from: placementOf(hex.Coordinate{X: 5, Y: 5}, hex.Right), to: placementOf(hex.Coordinate{X: 6, Y: 5}, hex.Right), moving: true},
			{from: placementOf(hex.Coordinate{X: 2, Y: 5}, hex.Right), to: placementOf(hex.Coordinate{X: 3, Y: 5}, hex.Right), moving: true},
			{from: blocker, to: blocker},
		}

		reverted, stopped := settle(props, bowCollides)
		require.Equal(t, []bool{true, true, false}, reverted)
		require.Equal(t, []bool{true, true, false}, stopped)
	})
}
