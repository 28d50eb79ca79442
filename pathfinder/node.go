// Package pathfinder plans ship maneuvers on the hex grid. Its search states are whole ship
// turns: a cell, a heading and a speed.
package pathfinder

import (
	"fmt"

	"caribbean/game"
	"caribbean/hex"
)

// GraphNode is one turn's worth of ship state.
type GraphNode struct {
	Coordinate  hex.Coordinate
	Orientation hex.Orientation
	Speed       int
}

// NodeOf returns the search state a ship is currently in.
func NodeOf(s game.Ship) GraphNode {
	return GraphNode{Coordinate: s.Position, Orientation: s.Orientation, Speed: s.Speed}
}

func (n GraphNode) Bow() hex.Coordinate {
	return n.Coordinate.Neighbor(n.Orientation)
}

func (n GraphNode) Stern() hex.Coordinate {
	return n.Coordinate.Neighbor(n.Orientation.Opposite())
}

func (n GraphNode) String() string {
	return fmt.Sprintf("(%s F: %s S: %d)", n.Coordinate, n.Orientation, n.Speed)
}

// Neighbors returns the states reachable in one turn: sail on, turn either way, speed up or
// slow down. The ship first drifts Speed cells forward, stopping at the map edge.
func (n GraphNode) Neighbors(bounds hex.Bounds, maxSpeed int) []GraphNode {
	speed := n.Speed
	pos := n.Coordinate
	for i := 0; i < n.Speed; i++ {
		next := pos.Neighbor(n.Orientation)
		if !bounds.Contains(next) {
			speed = 0
			break
		}
		pos = next
	}

	out := make([]GraphNode, 0, 5)
	out = append(out,
		GraphNode{Coordinate: pos, Orientation: n.Orientation, Speed: speed},
		GraphNode{Coordinate: pos, Orientation: n.Orientation.Next(), Speed: speed},
		GraphNode{Coordinate: pos, Orientation: n.Orientation.Prev(), Speed: speed},
	)
	if speed < maxSpeed {
		if ahead := pos.Neighbor(n.Orientation); bounds.Contains(ahead) {
			out = append(out, GraphNode{Coordinate: ahead, Orientation: n.Orientation, Speed: speed + 1})
		}
	}
	if speed > 0 {
		out = append(out, GraphNode{Coordinate: pos.Neighbor(n.Orientation.Opposite()), Orientation: n.Orientation, Speed: speed - 1})
	}
	return out
}

// ActionBetween returns the action that takes a ship from node a to node b, assuming b is
// one of a's neighbors.
func ActionBetween(a, b GraphNode) game.ActionType {
	if a.Orientation == b.Orientation {
		switch {
		case a.Speed == b.Speed:
			return game.WaitAction
		case a.Speed < b.Speed:
			return game.FasterAction
		default:
			return game.SlowerAction
		}
	}
	if a.Orientation.Next() == b.Orientation {
		return game.PortAction
	}
	return game.StarboardAction
}
