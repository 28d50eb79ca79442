package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"caribbean/game"
	"caribbean/hex"
)

type Reader struct {
	scanner *bufio.Scanner
	line    int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

func (r *Reader) next() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	r.line++
	return strings.TrimSpace(r.scanner.Text()), nil
}

// nextInt reads a line holding a single integer.
func (r *Reader) nextInt(what string) (int, error) {
	text, err := r.next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("line %d: %w: %s count %q", r.line, ErrMalformed, what, text)
	}
	return n, nil
}

// ReadTurn reads one turn. It returns io.EOF when the input ends cleanly before a turn and
// io.ErrUnexpectedEOF when it ends in the middle of one. owner is the owner id the referee
// uses for the controlled side.
func (r *Reader) ReadTurn(owner int) (Turn, error) {
	ships, err := r.nextInt("ship")
	if err != nil {
		return Turn{}, err
	}
	entities, err := r.nextInt("entity")
	if err != nil {
		return Turn{}, unexpected(err)
	}

	var turn Turn
	for range entities {
		text, err := r.next()
		if err != nil {
			return Turn{}, unexpected(err)
		}
		if err := r.parseEntity(text, owner, &turn); err != nil {
			return Turn{}, err
		}
	}
	if len(turn.Order) != ships {
		return Turn{}, fmt.Errorf("line %d: %w: expected %d controlled ships, got %d", r.line, ErrMalformed, ships, len(turn.Order))
	}
	return turn, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// parseEntity parses "id TYPE x y arg1 arg2 arg3 arg4".
func (r *Reader) parseEntity(text string, owner int, turn *Turn) error {
	fields := strings.Fields(text)
	if len(fields) != 8 {
		return fmt.Errorf("line %d: %w: expected 8 fields, got %d", r.line, ErrMalformed, len(fields))
	}
	values := make([]int, 0, 7)
	for i, f := range fields {
		if i == 1 {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("line %d: %w: field %d is not a number: %q", r.line, ErrMalformed, i+1, f)
		}
		values = append(values, v)
	}
	id, pos := values[0], hex.Coordinate{X: values[1], Y: values[2]}
	args := values[3:]

	switch fields[1] {
	case shipType:
		orientation, err := hex.ParseOrientation(args[0])
		if err != nil {
			return fmt.Errorf("line %d: %w: %w", r.line, ErrMalformed, err)
		}
		s := game.Ship{
			ID:          id,
			Position:    pos,
			Orientation: orientation,
			Speed:       args[1],
			Health:      args[2],
			Owner:       args[3],
		}
		turn.Snapshot.Ships = append(turn.Snapshot.Ships, s)
		if s.Owner == owner {
			turn.Order = append(turn.Order, id)
		}
	case barrelType:
		turn.Snapshot.Barrels = append(turn.Snapshot.Barrels, game.RumBarrel{ID: id, Position: pos, Health: args[0]})
	case mineType:
		turn.Snapshot.Mines = append(turn.Snapshot.Mines, game.Mine{ID: id, Position: pos})
	case cannonballType:
		turn.Snapshot.Cannonballs = append(turn.Snapshot.Cannonballs, game.Cannonball{
			ID:             id,
			Position:       pos,
			Owner:          args[0],
			RemainingTurns: args[1],
		})
	default:
		return fmt.Errorf("line %d: %w: unknown entity type %q", r.line, ErrMalformed, fields[1])
	}
	return nil
}

// ReadActions reads one action line for each of n ships.
func (r *Reader) ReadActions(n int) ([]game.Action, error) {
	actions := make([]game.Action, 0, n)
	for range n {
		text, err := r.next()
		if err != nil {
			return nil, unexpected(err)
		}
		action, err := ParseAction(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// ParseAction parses "<TYPE>" or "FIRE x y".
func ParseAction(text string) (game.Action, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return game.Action{}, fmt.Errorf("%w: empty action", ErrMalformed)
	}
	t, err := game.ParseActionType(fields[0])
	if err != nil {
		return game.Action{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	action := game.Action{Type: t}
	if !t.NeedsTarget() {
		return action, nil
	}
	if len(fields) < 3 {
		return game.Action{}, fmt.Errorf("%w: %s needs a target", ErrMalformed, t)
	}
	x, errX := strconv.Atoi(fields[1])
	y, errY := strconv.Atoi(fields[2])
	if errX != nil || errY != nil {
		return game.Action{}, fmt.Errorf("%w: bad target %q %q", ErrMalformed, fields[1], fields[2])
	}
	action.Target = hex.Coordinate{X: x, Y: y}
	return action, nil
}
