package geometry

import (
	"math"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// CenterAndRadius derives a drawing circle from an element's bounding box.
// The center is the middle of the box; the radius is half the box width,
// floored to whole pixels, scaled by ratio. A nil box means the element was not
// found and yields an ElementNotFoundError for selector.
func CenterAndRadius(box *schemas.BoundingBox, selector string, ratio float64) (schemas.Coordinate, float64, error) {
	if box == nil {
		return schemas.Coordinate{}, 0, schemas.NewElementNotFoundError(selector)
	}
	center := schemas.Coordinate{
		X: box.X + box.Width/2,
		Y: box.Y + box.Height/2,
	}
	radius := math.Floor(box.Width/2) * ratio
	return center, radius, nil
}
