package protocol

import (
	"bufio"
	"fmt"
	"io"

	"caribbean/game"
)

type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteActions writes the action of every ship in order, WAIT for ships without one.
func (w *Writer) WriteActions(order []int, actions map[int]game.Action) error {
	for _, id := range order {
		action, ok := actions[id]
		if !ok {
			action = game.Action{Type: game.WaitAction}
		}
		if _, err := fmt.Fprintln(w.w, action); err != nil {
			return fmt.Errorf("failed to write action of ship %d: %w", id, err)
		}
	}
	return w.flush()
}

// WriteTurn writes the input of one turn as the referee sends it to the given owner. Owners
// are relative to the reader: its own ships are written as 1 and every other ship as 0.
func (w *Writer) WriteTurn(snap game.Snapshot, owner int) error {
	ships := 0
	for _, s := range snap.Ships {
		if s.Owner == owner {
			ships++
		}
	}
	entities := len(snap.Ships) + len(snap.Barrels) + len(snap.Mines) + len(snap.Cannonballs)
	fmt.Fprintln(w.w, ships)
	fmt.Fprintln(w.w, entities)

	for _, s := range snap.Ships {
		relative := 0
		if s.Owner == owner {
			relative = 1
		}
		fmt.Fprintf(w.w, "%d %s %d %d %d %d %d %d\n", s.ID, shipType, s.Position.X, s.Position.Y, int(s.Orientation), s.Speed, s.Health, relative)
	}
	for _, b := range snap.Barrels {
		fmt.Fprintf(w.w, "%d %s %d %d %d 0 0 0\n", b.ID, barrelType, b.Position.X, b.Position.Y, b.Health)
	}
	for _, c := range snap.Cannonballs {
		fmt.Fprintf(w.w, "%d %s %d %d %d %d 0 0\n", c.ID, cannonballType, c.Position.X, c.Position.Y, c.Owner, c.RemainingTurns)
	}
	for _, m := range snap.Mines {
		fmt.Fprintf(w.w, "%d %s %d %d 0 0 0 0\n", m.ID, mineType, m.Position.X, m.Position.Y)
	}
	return w.flush()
}

func (w *Writer) flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}
