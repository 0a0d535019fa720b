package geometry

import (
	"fmt"
	"math"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// DefaultSampleCount is the number of points SampleCircle uses for a radius:
// the radius rounded to the nearest integer, so a larger circle gets a denser
// path (roughly one point per 2π pixels of circumference). Radii below 0.5
// still yield one point. Scenario densities build on the same rounding (see
// game.Scenario.SampleCount).
func DefaultSampleCount(radius float64) int {
	n := int(math.Round(radius))
	if n < 1 {
		return 1
	}
	return n
}

// SamplePoints returns count points evenly spaced by angle around the circle,
// starting at angle 0 (center + (radius, 0)) and increasing. With screen
// coordinates (y down) the path runs clockwise on screen.
//
// It panics if radius <= 0 or count < 1; both are caller errors.
func SamplePoints(center schemas.Coordinate, radius float64, count int) []schemas.Coordinate {
	if !(radius > 0) {
		panic(fmt.Sprintf("geometry: SamplePoints radius must be positive, got %v", radius))
	}
	if count < 1 {
		panic(fmt.Sprintf("geometry: SamplePoints count must be at least 1, got %d", count))
	}

	points := make([]schemas.Coordinate, count)
	for i := 0; i < count; i++ {
		theta := float64(i) / float64(count) * 2 * math.Pi
		points[i] = schemas.Coordinate{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		}
	}
	return points
}

// SampleCircle is SamplePoints with DefaultSampleCount(radius) points.
func SampleCircle(center schemas.Coordinate, radius float64) []schemas.Coordinate {
	return SamplePoints(center, radius, DefaultSampleCount(radius))
}

// BiasPoint is the deliberate miss placed on the positive x axis at
// radius*factor from the center.
func BiasPoint(center schemas.Coordinate, radius, factor float64) schemas.Coordinate {
	return center.Add(schemas.Coordinate{X: radius * factor})
}

// WithBias prepends BiasPoint to path, skewing the first drawn segment.
// The input slice is not modified.
func WithBias(path []schemas.Coordinate, center schemas.Coordinate, radius, factor float64) []schemas.Coordinate {
	out := make([]schemas.Coordinate, 0, len(path)+1)
	out = append(out, BiasPoint(center, radius, factor))
	return append(out, path...)
}
