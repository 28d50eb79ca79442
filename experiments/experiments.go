package experiments

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"caribbean/agent"
	"caribbean/engine"
	"caribbean/experiments/metrics"
	"caribbean/game"
	"caribbean/meta"
	"caribbean/searcher"
)

const TimeBudget = 20 * time.Millisecond

// Settings are shared by every experiment.
type Settings struct {
	Rules    *game.Rules
	Games    int            // Per match up
	MaxTurns int            // Per game
	Root     string         // Directory receiving the CSV files
	Store    *metrics.Store // Optional
}

// DefaultSettings plays the standard game and writes to meta.RESULTS_DIR.
func DefaultSettings() Settings {
	return Settings{
		Rules:    game.NewStandardRules(),
		Games:    meta.GAMES_PER_MATCH_UP,
		MaxTurns: meta.MAX_TURNS,
		Root:     meta.RESULTS_DIR,
	}
}

// Result holds everything recorded during one experiment run.
type Result struct {
	Run   string
	Dir   string
	Games []metrics.GameRecord
	Moves []metrics.MoveRecord
}

// Wins counts the games won by every agent config.
func (r Result) Wins() map[int]int {
	wins := map[int]int{}
	for _, g := range r.Games {
		switch g.Winner {
		case game.Opponent:
			wins[g.Agent1]++
		case game.Player:
			wins[g.Agent2]++
		}
	}
	return wins
}

var baseline = metrics.AgentConfig{ID: 0, Kind: "navigator", Budget: TimeBudget}

// RunDepthExperiment pairs planners of growing simulation depth against the navigator.
func RunDepthExperiment(settings Settings) (Result, error) {
	configs := []metrics.AgentConfig{
		{ID: 1, Kind: "planner", Budget: TimeBudget, Depth: 1, Scoring: "rum"},
		{ID: 2, Kind: "planner", Budget: TimeBudget, Depth: 3, Scoring: "rum"},
		{ID: 3, Kind: "planner", Budget: TimeBudget, Depth: 5, Scoring: "rum"},
		{ID: 4, Kind: "planner", Budget: TimeBudget, Depth: 8, Scoring: "rum"},
	}
	return runExperiment("depth", append(configs, baseline), againstBaseline(configs), settings)
}

// RunPopulationExperiment pairs planners of growing population size against the navigator.
func RunPopulationExperiment(settings Settings) (Result, error) {
	configs := []metrics.AgentConfig{
		{ID: 1, Kind: "planner", Budget: TimeBudget, Population: 10, Scoring: "rum"},
		{ID: 2, Kind: "planner", Budget: TimeBudget, Population: 25, Scoring: "rum"},
		{ID: 3, Kind: "planner", Budget: TimeBudget, Population: 50, Scoring: "rum"},
		{ID: 4, Kind: "planner", Budget: TimeBudget, Population: 100, Scoring: "rum"},
	}
	return runExperiment("population", append(configs, baseline), againstBaseline(configs), settings)
}

// RunScoringExperiment plays the two scoring strategies against each other, on both sides.
func RunScoringExperiment(settings Settings) (Result, error) {
	rum := metrics.AgentConfig{ID: 1, Kind: "planner", Budget: TimeBudget, Scoring: "rum"}
	aggressive := metrics.AgentConfig{ID: 2, Kind: "planner", Budget: TimeBudget, Scoring: "aggressive"}
	matchUps := [][2]metrics.AgentConfig{{rum, aggressive}, {aggressive, rum}}
	return runExperiment("scoring", []metrics.AgentConfig{rum, aggressive}, matchUps, settings)
}

func againstBaseline(configs []metrics.AgentConfig) [][2]metrics.AgentConfig {
	matchUps := make([][2]metrics.AgentConfig, 0, len(configs))
	for _, config := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return matchUps
}

func runExperiment(name string, configs []metrics.AgentConfig, matchUps [][2]metrics.AgentConfig, settings Settings) (Result, error) {
	result := Result{Run: uuid.New().String()}
	count := 0

	log.Info().Msgf("starting %s experiment %s...", name, result.Run)

	for mi, matchUp := range matchUps {
		config1, config2 := matchUp[0], matchUp[1]
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), config1, config2)

		for i := 0; i < settings.Games; i++ {
			count++
			seed := settings.Rules.Seed + uint64(count)
			winner, gameMetric, moveMetrics, err := runGame(config1, config2, settings, seed)
			if err != nil {
				return result, err
			}
			result.Games = append(result.Games, metrics.GameRecord{
				ID:         count,
				Run:        result.Run,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				result.Moves = append(result.Moves, metrics.MoveRecord{Game: count, MoveMetric: mm})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with winner: %d", mi+1, len(matchUps), i+1, winner)
		}
	}

	evaluations := 0
	for _, m := range result.Moves {
		evaluations += m.Evaluations
	}
	log.Info().Msgf("completed %s experiment: %s games, %s turns searched, %s evaluations", name,
		humanize.Comma(int64(len(result.Games))), humanize.Comma(int64(len(result.Moves))), humanize.Comma(int64(evaluations)))

	if err := store(name, configs, &result, settings); err != nil {
		return result, err
	}
	return result, nil
}

// store writes the records to CSV files and, when configured, to the database.
func store(name string, configs []metrics.AgentConfig, result *Result, settings Settings) error {
	writer, err := metrics.NewWriter(settings.Root, name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	result.Dir = writer.Dir()

	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(result.Games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(result.Moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored records in %s", result.Dir)

	if settings.Store == nil {
		return nil
	}
	if err := settings.Store.SaveRun(result.Run, name, configs); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if err := settings.Store.SaveGames(result.Games); err != nil {
		return fmt.Errorf("failed to save games: %w", err)
	}
	if err := settings.Store.SaveMoves(result.Run, result.Moves); err != nil {
		return fmt.Errorf("failed to save moves: %w", err)
	}
	log.Info().Msgf("saved run %s to the results database", result.Run)
	return nil
}

// runGame plays a single game with config1 on the opponent side and config2 on the player side.
func runGame(config1, config2 metrics.AgentConfig, settings Settings, seed uint64) (int, metrics.GameMetric, []metrics.MoveMetric, error) {
	agent1, err := CreateAgent(config1, settings.Rules, seed)
	if err != nil {
		return 0, metrics.GameMetric{}, nil, err
	}
	agent2, err := CreateAgent(config2, settings.Rules, seed+1)
	if err != nil {
		return 0, metrics.GameMetric{}, nil, err
	}

	e := engine.NewLocalEngine([2]agent.Agent{agent1, agent2}, settings.Rules, seed, engine.WithMaxTurns(settings.MaxTurns))
	winner, gameMetric, moveMetrics := e.Run()
	return winner, gameMetric, moveMetrics, nil
}

// CreateAgent builds the agent described by config. seed drives the planner's randomness.
func CreateAgent(config metrics.AgentConfig, rules *game.Rules, seed uint64) (agent.Agent, error) {
	switch config.Kind {
	case "navigator":
		return agent.NewNavigatorAgent(rules, agent.WithBudget(config.Budget)), nil
	case "planner":
	default:
		return nil, fmt.Errorf("unknown agent kind %q", config.Kind)
	}

	options := []searcher.Option{searcher.WithSeed(seed), searcher.WithMetrics()}
	if config.Population > 0 {
		options = append(options, searcher.WithPopulation(config.Population))
	}
	if config.Depth > 0 {
		options = append(options, searcher.WithDepth(config.Depth))
	}
	if config.Generations > 0 {
		options = append(options, searcher.WithGenerations(config.Generations))
	}
	switch config.Scoring {
	case "", "rum":
	case "aggressive":
		options = append(options, searcher.WithEvaluationFn(game.EvaluateAggressive))
	default:
		return nil, fmt.Errorf("unknown scoring %q", config.Scoring)
	}
	return agent.NewPlannerAgent(searcher.NewPlanner(rules, options...), rules, config.Budget), nil
}
