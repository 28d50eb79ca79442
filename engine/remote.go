package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"

	"caribbean/agent"
	"caribbean/experiments/metrics"
	"caribbean/game"
	"caribbean/protocol"
)

// Bots get this many times the rules' budget of a turn to answer.
const answerFactor = 10

type RemoteOption func(a *RemoteAgent)

// WithTimeout replaces the budget-derived deadline for each answer.
func WithTimeout(timeout time.Duration) RemoteOption {
	return func(a *RemoteAgent) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// RemoteAgent forwards every turn to a bot speaking the turn protocol and reads its actions
// back. It lets the local engine referee a bot running in another process. A bot that fails
// to answer once, or answers too late, is dropped: its ships wait for the rest of the game.
type RemoteAgent struct {
	owner   int
	rules   *game.Rules
	timeout time.Duration
	writer  *protocol.Writer
	reader  *protocol.Reader
	dropped bool
}

var _ agent.Agent = (*RemoteAgent)(nil)

// NewRemoteAgent talks to a bot that reads turns from in and answers on out.
func NewRemoteAgent(owner int, rules *game.Rules, in io.Writer, out io.Reader, options ...RemoteOption) *RemoteAgent {
	a := &RemoteAgent{
		owner:  owner,
		rules:  rules,
		writer: protocol.NewWriter(in),
		reader: protocol.NewReader(out),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Dropped reports whether the bot has been given up on.
func (a *RemoteAgent) Dropped() bool {
	return a.dropped
}

type answer struct {
	actions []game.Action
	err     error
}

// FindActions sends the world to the bot and maps its answers onto the controlled ships, in
// the order they were listed.
func (a *RemoteAgent) FindActions(w *game.WorldState) (map[int]game.Action, metrics.SearchMetric) {
	start := time.Now()
	snap := w.Snapshot()
	var order []int
	for _, s := range snap.Ships {
		if s.Owner == a.owner {
			order = append(order, s.ID)
		}
	}

	actions := make(map[int]game.Action, len(order))
	if a.dropped {
		return actions, metrics.SearchMetric{}
	}
	if err := a.writer.WriteTurn(snap, a.owner); err != nil {
		a.drop(w.Turn, fmt.Errorf("failed to send turn: %w", err))
		return actions, metrics.SearchMetric{}
	}

	timeout := a.timeout
	if timeout == 0 {
		timeout = a.rules.Budget(w.Turn) * answerFactor
	}
	// The reader is never used again after a timeout, so the pending read may finish late.
	answers := make(chan answer, 1)
	go func() {
		got, err := a.reader.ReadActions(len(order))
		answers <- answer{actions: got, err: err}
	}()

	select {
	case ans := <-answers:
		if ans.err != nil {
			a.drop(w.Turn, fmt.Errorf("failed to read actions: %w", ans.err))
			return actions, metrics.SearchMetric{}
		}
		for i, id := range order {
			actions[id] = ans.actions[i]
		}
	case <-time.After(timeout):
		a.drop(w.Turn, fmt.Errorf("no answer within %v", timeout))
		return actions, metrics.SearchMetric{}
	}
	return actions, metrics.SearchMetric{Budget: timeout, Duration: time.Since(start)}
}

func (a *RemoteAgent) drop(turn int, err error) {
	a.dropped = true
	log.Error().Err(err).Msgf("Dropping bot of player %d on turn %d, its ships wait from now on", a.owner, turn)
}

// Process is a bot started as a child process.
type Process struct {
	*RemoteAgent
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// StartProcess runs command through the shell and connects its standard streams to a
// RemoteAgent playing for owner. The bot's standard error is passed through.
func StartProcess(ctx context.Context, command string, owner int, rules *game.Rules, options ...RemoteOption) (*Process, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin of %q: %w", command, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout of %q: %w", command, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %q: %w", command, err)
	}
	log.Info().Msgf("Started bot %q with pid %d for player %d", command, cmd.Process.Pid, owner)
	return &Process{RemoteAgent: NewRemoteAgent(owner, rules, stdin, stdout, options...), cmd: cmd, stdin: stdin}, nil
}

// Close ends the bot's input and waits for it to exit.
func (p *Process) Close() error {
	if err := p.stdin.Close(); err != nil {
		return fmt.Errorf("failed to close stdin: %w", err)
	}
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("bot exited: %w", err)
	}
	return nil
}
