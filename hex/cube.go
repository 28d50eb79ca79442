package hex

import "fmt"

var cubeDirections = [6][3]int{
	{1, -1, 0},
	{1, 0, -1},
	{0, 1, -1},
	{-1, 1, 0},
	{-1, 0, 1},
	{0, -1, 1},
}

// CubeCoordinate is the cube form of a hex cell. X+Y+Z is always 0.
type CubeCoordinate struct {
	X, Y, Z int
}

func (c CubeCoordinate) ToOffset() Coordinate {
	return Coordinate{X: c.X + (c.Z-(c.Z&1))/2, Y: c.Z}
}

func (c CubeCoordinate) Neighbor(o Orientation) CubeCoordinate {
	d := cubeDirections[o.normalize()]
	return CubeCoordinate{X: c.X + d[0], Y: c.Y + d[1], Z: c.Z + d[2]}
}

// DistanceTo is the Manhattan distance in cube space halved.
func (c CubeCoordinate) DistanceTo(other CubeCoordinate) int {
	return (abs(c.X-other.X) + abs(c.Y-other.Y) + abs(c.Z-other.Z)) / 2
}

func (c CubeCoordinate) String() string {
	return fmt.Sprintf("%d %d %d", c.X, c.Y, c.Z)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
