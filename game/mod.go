// Package game holds the world model of the naval combat game: ships, mines, cannonballs and
// rum barrels, the rules they follow, the turn simulator and the scoring strategies used to
// compare simulated outcomes.
package game

// Owner ids as used by the turn protocol.
const (
	Opponent = 0
	Player   = 1
)
