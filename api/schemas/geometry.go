package schemas

import "fmt"

// -- Geometry Schemas --

// Coordinate is a point in 2D screen space (pixels). Y grows downward, matching
// the coordinate system the browser uses for layout and mouse events.
// A Coordinate is also used as a relative offset (a displacement vector).
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the component-wise sum of c and other.
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{X: c.X + other.X, Y: c.Y + other.Y}
}

// Scale returns c with both components multiplied by factor.
func (c Coordinate) Scale(factor float64) Coordinate {
	return Coordinate{X: c.X * factor, Y: c.Y * factor}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g)", c.X, c.Y)
}

// BoundingBox is the border box of an element in viewport coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
