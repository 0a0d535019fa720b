package bearing

import (
	"fmt"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// Direction is one of the four compass bearings the game issues.
type Direction int

const (
	North Direction = iota // 000°
	East                   // 090°
	South                  // 180°
	West                   // 270°
)

// Label returns the bearing as it appears in an instruction line.
func (d Direction) Label() string {
	switch d {
	case North:
		return "000°"
	case East:
		return "090°"
	case South:
		return "180°"
	case West:
		return "270°"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func (d Direction) String() string {
	return d.Label()
}

// Unit returns the one-step screen-space vector for d. North is up, so it has
// a negative y component.
func (d Direction) Unit() schemas.Coordinate {
	switch d {
	case North:
		return schemas.Coordinate{X: 0, Y: -1}
	case East:
		return schemas.Coordinate{X: 1, Y: 0}
	case South:
		return schemas.Coordinate{X: 0, Y: 1}
	case West:
		return schemas.Coordinate{X: -1, Y: 0}
	default:
		panic(fmt.Sprintf("bearing: unit vector requested for unknown %v", d))
	}
}

// ParseDirection maps an instruction label ("000°", "090°", "180°", "270°")
// to its Direction. Any other label is rejected.
func ParseDirection(label string) (Direction, bool) {
	switch label {
	case "000°":
		return North, true
	case "090°":
		return East, true
	case "180°":
		return South, true
	case "270°":
		return West, true
	default:
		return 0, false
	}
}
