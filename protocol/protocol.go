// Package protocol speaks the line-oriented turn protocol of the game: each turn the referee
// sends the number of controlled ships, the number of entities and one line per entity,
// and expects one action line per controlled ship in return.
package protocol

import (
	"errors"

	"caribbean/game"
)

// ErrMalformed is wrapped by every error caused by a line that does not follow the protocol.
var ErrMalformed = errors.New("malformed input")

const (
	shipType       = "SHIP"
	barrelType     = "BARREL"
	mineType       = "MINE"
	cannonballType = "CANNONBALL"
)

// Turn is everything the referee sends at the start of a turn.
type Turn struct {
	Snapshot game.Snapshot
	Order    []int // Ids of the controlled ships, in the order actions are expected
}
