// Package player runs an agent as a bot: it reads turns from the referee, keeps the world
// model in sync and answers with one action per ship.
package player

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"caribbean/agent"
	"caribbean/game"
	"caribbean/protocol"
)

// Player represents a bot connected to a referee.
type Player struct {
	agent  agent.Agent
	rules  *game.Rules
	world  *game.WorldState
	reader *protocol.Reader
	writer *protocol.Writer
}

// NewPlayer creates a bot that reads turns from in and writes its actions to out.
func NewPlayer(a agent.Agent, rules *game.Rules, in io.Reader, out io.Writer) *Player {
	return &Player{
		agent:  a,
		rules:  rules,
		world:  game.NewWorldState(game.Player),
		reader: protocol.NewReader(in),
		writer: protocol.NewWriter(out),
	}
}

// World returns the bot's model of the game.
func (p *Player) World() *game.WorldState {
	return p.world
}

// Play starts the player's turn loop. It returns nil once the referee closes the input
// between two turns.
func (p *Player) Play() error {
	for {
		done, err := p.TakeTurn()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// TakeTurn plays a single turn. It reports done when there is no turn left to play.
func (p *Player) TakeTurn() (bool, error) {
	turn, err := p.reader.ReadTurn(game.Player)
	if errors.Is(err, io.EOF) {
		log.Info().Msgf("Input closed after turn %d", p.world.Turn)
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read turn: %w", err)
	}
	p.world.Update(turn.Snapshot)

	actions, metric := p.agent.FindActions(p.world)
	for _, id := range turn.Order {
		action, ok := actions[id]
		if !ok {
			action = game.Action{Type: game.WaitAction}
		}
		p.world.NoteAction(id, action, p.rules)
	}
	if err := p.writer.WriteActions(turn.Order, actions); err != nil {
		return false, fmt.Errorf("failed to answer turn %d: %w", p.world.Turn, err)
	}

	log.Debug().
		Int("evaluations", metric.Evaluations).
		Dur("duration", metric.Duration).
		Msgf("Turn %d: %s", p.world.Turn, p.world)
	return false, nil
}
