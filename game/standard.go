package game

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"caribbean/hex"
)

func NewStandardRules() *Rules {
	return &Rules{
		Bounds:            hex.StandardBounds,
		MaxHealth:         100,
		MaxSpeed:          2,
		CannonsEnabled:    true,
		CannonCooldown:    2,
		FireRangeMax:      10,
		HighDamage:        50,
		LowDamage:         25,
		MinesEnabled:      true,
		MineCooldown:      5,
		MineDamage:        25,
		NearMineDamage:    10,
		RewardRumOnKill:   30,
		SimulationDepth:   5,
		PopulationSize:    50,
		MutationRate:      0.5,
		WarmStartFraction: 0.2,
		FirstTurnBudget:   950 * time.Millisecond,
		TurnBudget:        47 * time.Millisecond,
		Seed:              42,
	}
}

// LoadRules reads a YAML rules file. Keys absent from the file keep their standard values.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*Rules, error) {
	rules := NewStandardRules()
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}
