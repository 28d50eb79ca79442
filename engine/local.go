package engine

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"caribbean/agent"
	"caribbean/experiments/metrics"
	"caribbean/game"
	"caribbean/meta"
)

type LocalOption func(e *LocalEngine)

func WithMaxTurns(turns int) LocalOption {
	return func(e *LocalEngine) {
		if turns > 0 {
			e.maxTurns = turns
		}
	}
}

// WithSnapshot replaces the generated scenario with a fixed starting position.
func WithSnapshot(snap game.Snapshot) LocalOption {
	return func(e *LocalEngine) {
		e.start = &snap
	}
}

var _ Engine = (*LocalEngine)(nil)

// LocalEngine referees a game between two in-process agents. agents[game.Opponent] and
// agents[game.Player] control the ships of the respective owner.
type LocalEngine struct {
	agents    [2]agent.Agent
	rules     *game.Rules
	seed      uint64
	maxTurns  int
	start     *game.Snapshot
	referee   *game.WorldState
	views     [2]*game.WorldState
	simulator *game.Simulator
}

func NewLocalEngine(agents [2]agent.Agent, rules *game.Rules, seed uint64, options ...LocalOption) *LocalEngine {
	if agents[0] == nil || agents[1] == nil {
		panic("need an agent for each side")
	}
	e := &LocalEngine{
		agents:    agents,
		rules:     rules,
		seed:      seed,
		maxTurns:  meta.MAX_TURNS,
		simulator: game.NewSimulator(rules),
	}
	for _, option := range options {
		option(e)
	}

	snap := NewScenario(seed, rules)
	if e.start != nil {
		snap = *e.start
	}
	e.referee = game.NewWorldState(game.Player)
	e.referee.Update(snap)
	for owner := range e.views {
		e.views[owner] = game.NewWorldState(owner)
	}
	return e
}

// World returns the referee's state of the game.
func (e *LocalEngine) World() *game.WorldState {
	return e.referee
}

// Run executes the entire game loop until a winner is found.
func (e *LocalEngine) Run() (int, metrics.GameMetric, []metrics.MoveMetric) {
	gameMetric := metrics.GameMetric{Seed: e.seed, StartTime: time.Now()}
	var moveMetrics []metrics.MoveMetric

	for e.referee.Turn < e.maxTurns && !e.over() {
		actions := make(map[int]game.Action, len(e.referee.Ships))
		for owner, a := range e.agents {
			view := e.views[owner]
			view.Update(e.referee.Snapshot())

			proposed, metric := a.FindActions(view)
			moveMetrics = append(moveMetrics, metrics.MoveMetric{Turn: e.referee.Turn, Player: owner, SearchMetric: metric})

			// An agent only commands its own ships.
			for _, s := range view.MyShips() {
				action, ok := proposed[s.ID]
				if !ok {
					action = game.Action{Type: game.WaitAction}
				}
				view.NoteAction(s.ID, action, e.rules)
				actions[s.ID] = action
			}
		}

		outcome := e.simulator.Advance(e.referee, actions)
		for _, s := range outcome.Sunk {
			log.Debug().Msgf("Ship %d of player %d sank on turn %d", s.ID, s.Owner, e.referee.Turn)
		}
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.Turns = e.referee.Turn
	for owner := range gameMetric.Health {
		gameMetric.Health[owner] = e.health(owner)
	}
	gameMetric.Winner = e.winner()

	evaluations := 0
	for _, m := range moveMetrics {
		evaluations += m.Evaluations
	}
	log.Info().Msgf("Game %d ended after %s turns and %s evaluations in %v, winner %d", e.seed,
		humanize.Comma(int64(gameMetric.Turns)), humanize.Comma(int64(evaluations)), gameMetric.Duration, gameMetric.Winner)
	return gameMetric.Winner, gameMetric, moveMetrics
}

func (e *LocalEngine) over() bool {
	return len(e.referee.OwnedShips(game.Opponent)) == 0 || len(e.referee.OwnedShips(game.Player)) == 0
}

func (e *LocalEngine) health(owner int) int {
	total := 0
	for _, s := range e.referee.OwnedShips(owner) {
		total += s.Health
	}
	return total
}

// winner is the side with ships left, or the one with more rum aboard when both still
// sail at the turn limit.
func (e *LocalEngine) winner() int {
	opponent, player := e.health(game.Opponent), e.health(game.Player)
	switch {
	case opponent > player:
		return game.Opponent
	case player > opponent:
		return game.Player
	}
	return Draw
}
