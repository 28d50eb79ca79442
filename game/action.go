package game

import (
	"fmt"
	"strings"

	"caribbean/hex"
)

// ActionType is the per-ship command issued each turn.
type ActionType int

const (
	WaitAction ActionType = iota
	SlowerAction
	FasterAction
	PortAction
	StarboardAction
	FireAction
	MineAction
)

// ActiveActions is the alphabet the planner draws from: everything except WaitAction.
var ActiveActions = []ActionType{SlowerAction, FasterAction, PortAction, StarboardAction, FireAction, MineAction}

var actionNames = map[ActionType]string{
	WaitAction:      "WAIT",
	SlowerAction:    "SLOWER",
	FasterAction:    "FASTER",
	PortAction:      "PORT",
	StarboardAction: "STARBOARD",
	FireAction:      "FIRE",
	MineAction:      "MINE",
}

func (t ActionType) String() string {
	if name, ok := actionNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ActionType(%d)", int(t))
}

// NeedsTarget reports whether the action is written with a target cell.
func (t ActionType) NeedsTarget() bool {
	return t == FireAction
}

// ParseActionType is the inverse of ActionType.String.
func ParseActionType(s string) (ActionType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range actionNames {
		if name == upper {
			return t, nil
		}
	}
	return WaitAction, fmt.Errorf("unknown action type %q", s)
}

// Action is one ship's command for one turn. Target is only meaningful for FireAction, but
// plan entries keep it for every type so that mutating the type alone preserves the target.
type Action struct {
	Type   ActionType
	Target hex.Coordinate
}

// String renders the action in protocol form: "<TYPE> [x y]".
func (a Action) String() string {
	if a.Type.NeedsTarget() {
		return fmt.Sprintf("%s %s", a.Type, a.Target)
	}
	return a.Type.String()
}
