package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"caribbean/agent"
	"caribbean/engine"
	"caribbean/experiments"
	"caribbean/experiments/metrics"
	"caribbean/game"
	"caribbean/meta"
	"caribbean/player"
)

func main() {
	mode := flag.String("mode", "bot", "bot, match or experiment")
	rulesPath := flag.String("rules", "", "YAML file overriding the standard rules")
	kind := flag.String("agent", "planner", "Agent playing in bot and match mode: planner or navigator")
	opponent := flag.String("opponent", "", "Command starting the opposing bot in match mode, the navigator when empty")
	experiment := flag.String("experiment", "depth", "Experiment to run: depth, population, scoring or throughput")
	games := flag.Int("games", meta.GAMES_PER_MATCH_UP, "Games per match up")
	seed := flag.Uint64("seed", 0, "Scenario seed in match mode, the rules' seed when zero")
	dbPath := flag.String("db", filepath.Join(meta.RESULTS_DIR, meta.RESULTS_DB), "Results database, empty to skip")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	// Standard output belongs to the protocol.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	rules := game.NewStandardRules()
	if *rulesPath != "" {
		var err error
		if rules, err = game.LoadRules(*rulesPath); err != nil {
			log.Fatal().Err(err).Msg("failed to load rules")
		}
	}

	var err error
	switch *mode {
	case "bot":
		err = runBot(rules, *kind)
	case "match":
		err = runMatch(rules, *kind, *opponent, *seed)
	case "experiment":
		err = runExperiment(rules, *experiment, *games, *dbPath)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

func createAgent(kind string, rules *game.Rules, seed uint64) (agent.Agent, error) {
	return experiments.CreateAgent(metrics.AgentConfig{Kind: kind}, rules, seed)
}

func runBot(rules *game.Rules, kind string) error {
	a, err := createAgent(kind, rules, rules.Seed)
	if err != nil {
		return err
	}
	return player.NewPlayer(a, rules, os.Stdin, os.Stdout).Play()
}

// runMatch plays one local game with the chosen agent on the player side.
func runMatch(rules *game.Rules, kind, opponent string, seed uint64) error {
	if seed == 0 {
		seed = rules.Seed
	}
	own, err := createAgent(kind, rules, seed)
	if err != nil {
		return err
	}

	var other agent.Agent = agent.NewNavigatorAgent(rules)
	if opponent != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		bot, err := engine.StartProcess(ctx, opponent, game.Opponent, rules)
		if err != nil {
			return err
		}
		defer func() {
			if err := bot.Close(); err != nil {
				log.Warn().Err(err).Msg("opponent did not exit cleanly")
			}
		}()
		other = bot
	}

	winner, gameMetric, _ := engine.NewLocalEngine([2]agent.Agent{other, own}, rules, seed).Run()
	log.Info().Msgf("winner %d after %d turns, rum left %v", winner, gameMetric.Turns, gameMetric.Health)
	return nil
}

func runExperiment(rules *game.Rules, name string, games int, dbPath string) error {
	settings := experiments.DefaultSettings()
	settings.Rules = rules
	settings.Games = games

	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
		store, err := metrics.OpenStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		settings.Store = store
	}

	var result experiments.Result
	var err error
	switch name {
	case "depth":
		result, err = experiments.RunDepthExperiment(settings)
	case "population":
		result, err = experiments.RunPopulationExperiment(settings)
	case "scoring":
		result, err = experiments.RunScoringExperiment(settings)
	case "throughput":
		_, result, err = experiments.RunThroughputExperiment(settings)
	default:
		return fmt.Errorf("unknown experiment %q", name)
	}
	if err != nil {
		return err
	}
	log.Info().Msgf("run %s: wins by agent %v", result.Run, result.Wins())
	return nil
}
