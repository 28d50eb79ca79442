package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"caribbean/hex"
)

func TestRules(t *testing.T) {
	t.Run("standard rules are valid", func(t *testing.T) {
		rules := NewStandardRules()
		require.NoError(t, rules.Validate())
		require.Equal(t, hex.StandardBounds, rules.Bounds)
		require.False(t, rules.MineContact)
	})

	t.Run("budget depends on the turn", func(t *testing.T) {
		rules := NewStandardRules()
		require.Equal(t, 950*time.Millisecond, rules.Budget(0))
		require.Equal(t, 47*time.Millisecond, rules.Budget(1))
		require.Equal(t, 47*time.Millisecond, rules.Budget(120))
	})

	t.Run("yaml overlays the standard values", func(t *testing.T) {
		rules, err := ParseRules([]byte(`
bounds:
  width: 12
turn_budget: 30ms
mine_contact: true
population_size: 8
`))
		require.NoError(t, err)
		require.Equal(t, hex.Bounds{Width: 12, Height: 21}, rules.Bounds)
		require.Equal(t, 30*time.Millisecond, rules.TurnBudget)
		require.True(t, rules.MineContact)
		require.Equal(t, 8, rules.PopulationSize)
		require.Equal(t, 2, rules.MaxSpeed)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		for _, doc := range []string{
			"population_size: 0",
			"mutation_rate: 1.5",
			"simulation_depth: -1",
			"bounds: {width: 0}",
			"max_health: [1, 2]",
		} {
			_, err := ParseRules([]byte(doc))
			require.Error(t, err, doc)
		}
	})

	t.Run("load from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("seed: 7\n"), 0o644))

		rules, err := LoadRules(path)
		require.NoError(t, err)
		require.Equal(t, uint64(7), rules.Seed)

		_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

func TestActionString(t *testing.T) {
	require.Equal(t, "WAIT", Action{}.String())
	require.Equal(t, "PORT", Action{Type: PortAction, Target: hex.Coordinate{X: 1, Y: 2}}.String())
	require.Equal(t, "FIRE 4 7", Action{Type: FireAction, Target: hex.Coordinate{X: 4, Y: 7}}.String())

	for _, typ := range append([]ActionType{WaitAction}, ActiveActions...) {
		parsed, err := ParseActionType(typ.String())
		require.NoError(t, err)
		require.Equal(t, typ, parsed)
	}
	_, err := ParseActionType("SINK")
	require.Error(t, err)
}
