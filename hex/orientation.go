package hex

import "fmt"

// Orientation is one of the six hex directions, counter-clockwise from east in 60° steps.
type Orientation int

const (
	Right Orientation = iota
	UpRight
	UpLeft
	Left
	DownLeft
	DownRight
)

// Orientations lists every direction in enumeration order.
var Orientations = [6]Orientation{Right, UpRight, UpLeft, Left, DownLeft, DownRight}

// Next rotates 60° counter-clockwise (the PORT turn).
func (o Orientation) Next() Orientation {
	return (o.normalize() + 1) % 6
}

// Prev rotates 60° clockwise (the STARBOARD turn).
func (o Orientation) Prev() Orientation {
	return (o.normalize() + 5) % 6
}

func (o Orientation) Opposite() Orientation {
	return (o.normalize() + 3) % 6
}

func (o Orientation) normalize() Orientation {
	return ((o % 6) + 6) % 6
}

func (o Orientation) String() string {
	switch o.normalize() {
	case Right:
		return "Right"
	case UpRight:
		return "UpRight"
	case UpLeft:
		return "UpLeft"
	case Left:
		return "Left"
	case DownLeft:
		return "DownLeft"
	default:
		return "DownRight"
	}
}

// ParseOrientation converts the protocol's numeric facing into an Orientation.
func ParseOrientation(value int) (Orientation, error) {
	if value < 0 || value > 5 {
		return 0, fmt.Errorf("orientation %d out of range [0,5]", value)
	}
	return Orientation(value), nil
}
