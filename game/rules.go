package game

import (
	"fmt"
	"time"

	"caribbean/hex"
)

// Rules holds every tunable of the simulation and the planner budgets. The zero value is
// not usable; start from NewStandardRules or LoadRules.
type Rules struct {
	Bounds hex.Bounds `yaml:"bounds"`

	MaxHealth int `yaml:"max_health"`
	MaxSpeed  int `yaml:"max_speed"`

	CannonsEnabled  bool `yaml:"cannons_enabled"`
	CannonCooldown  int  `yaml:"cannon_cooldown"`
	FireRangeMax    int  `yaml:"fire_range_max"`
	HighDamage      int  `yaml:"high_damage"`
	LowDamage       int  `yaml:"low_damage"`
	MinesEnabled    bool `yaml:"mines_enabled"`
	MineCooldown    int  `yaml:"mine_cooldown"`
	MineDamage      int  `yaml:"mine_damage"`
	NearMineDamage  int  `yaml:"near_mine_damage"`
	RewardRumOnKill int  `yaml:"reward_rum_on_kill"`
	// MineContact makes ships trigger mines they touch, damaging the victim and ships
	// within one cell of the mine.
	MineContact bool `yaml:"mine_contact"`

	SimulationDepth int     `yaml:"simulation_depth"`
	PopulationSize  int     `yaml:"population_size"`
	MutationRate    float64 `yaml:"mutation_rate"`
	// WarmStartFraction is the share of the population seeded from the previous turn's best plan.
	WarmStartFraction float64       `yaml:"warm_start_fraction"`
	FirstTurnBudget   time.Duration `yaml:"first_turn_budget"`
	TurnBudget        time.Duration `yaml:"turn_budget"`
	Seed              uint64        `yaml:"seed"`
}

// Budget is the planning time allowed for the given zero-based turn.
func (r *Rules) Budget(turn int) time.Duration {
	if turn == 0 {
		return r.FirstTurnBudget
	}
	return r.TurnBudget
}

// Validate rejects configurations the simulator or planner cannot run with.
func (r *Rules) Validate() error {
	switch {
	case r.Bounds.Width <= 0 || r.Bounds.Height <= 0:
		return fmt.Errorf("invalid bounds %dx%d", r.Bounds.Width, r.Bounds.Height)
	case r.MaxHealth <= 0:
		return fmt.Errorf("max_health must be positive, got %d", r.MaxHealth)
	case r.MaxSpeed < 0:
		return fmt.Errorf("max_speed must not be negative, got %d", r.MaxSpeed)
	case r.SimulationDepth <= 0:
		return fmt.Errorf("simulation_depth must be positive, got %d", r.SimulationDepth)
	case r.PopulationSize <= 0:
		return fmt.Errorf("population_size must be positive, got %d", r.PopulationSize)
	case r.MutationRate < 0 || r.MutationRate > 1:
		return fmt.Errorf("mutation_rate must be in [0,1], got %v", r.MutationRate)
	case r.WarmStartFraction < 0 || r.WarmStartFraction > 1:
		return fmt.Errorf("warm_start_fraction must be in [0,1], got %v", r.WarmStartFraction)
	case r.FirstTurnBudget < 0 || r.TurnBudget < 0:
		return fmt.Errorf("budgets must not be negative")
	}
	return nil
}
