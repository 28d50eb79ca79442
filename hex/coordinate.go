// Package hex implements the offset ("odd-r") hex grid the ships sail on: cell arithmetic,
// cube conversion, distances, angles and rings. Everything here is a pure value computation.
package hex

import (
	"fmt"
	"iter"
	"math"
)

// Offset deltas per orientation, for even and odd rows.
var (
	evenRowDirections = [6][2]int{{1, 0}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}}
	oddRowDirections  = [6][2]int{{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {0, 1}, {1, 1}}
)

// Bounds is the rectangular playable area, [0,Width) x [0,Height).
type Bounds struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// StandardBounds is the map used by the game.
var StandardBounds = Bounds{Width: 23, Height: 21}

func (b Bounds) Contains(c Coordinate) bool {
	return c.X >= 0 && c.X < b.Width && c.Y >= 0 && c.Y < b.Height
}

func (b Bounds) Center() Coordinate {
	return Coordinate{X: b.Width / 2, Y: b.Height / 2}
}

// Cells returns the number of cells on the map.
func (b Bounds) Cells() int {
	return b.Width * b.Height
}

// Coordinate is an offset hex cell. Values compare structurally and can key maps.
type Coordinate struct {
	X, Y int
}

func (c Coordinate) IsInsideMap() bool {
	return StandardBounds.Contains(c)
}

func (c Coordinate) Neighbor(o Orientation) Coordinate {
	d := evenRowDirections[o.normalize()]
	if c.Y&1 == 1 {
		d = oddRowDirections[o.normalize()]
	}
	return Coordinate{X: c.X + d[0], Y: c.Y + d[1]}
}

func (c Coordinate) ToCube() CubeCoordinate {
	x := c.X - (c.Y-(c.Y&1))/2
	z := c.Y
	return CubeCoordinate{X: x, Y: -(x + z), Z: z}
}

// DistanceTo returns the number of single-cell steps between c and other.
func (c Coordinate) DistanceTo(other Coordinate) int {
	return c.ToCube().DistanceTo(other.ToCube())
}

// Angle returns the direction of target seen from c, in units of 60° within [0,6).
// Integral values coincide with the Orientation enumerators.
func (c Coordinate) Angle(target Coordinate) float64 {
	dy := float64(target.Y-c.Y) * math.Sqrt(3) / 2
	dx := float64(target.X-c.X) + float64((c.Y-target.Y)&1)*0.5
	angle := -math.Atan2(dy, dx) * 3 / math.Pi
	if angle < 0 {
		angle += 6
	} else if angle >= 6 {
		angle -= 6
	}
	return angle
}

// Ring yields the in-bounds cells exactly radius steps away from c. Traversal starts at the
// cell reached by walking radius steps DownLeft and then circles counter-clockwise.
// A radius below 1 yields nothing.
func (c Coordinate) Ring(radius int, b Bounds) iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		cell := c
		for i := 0; i < radius; i++ {
			cell = cell.Neighbor(DownLeft)
		}
		for _, o := range Orientations {
			for j := 0; j < radius; j++ {
				if b.Contains(cell) && !yield(cell) {
					return
				}
				cell = cell.Neighbor(o)
			}
		}
	}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%d %d", c.X, c.Y)
}
