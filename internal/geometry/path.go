// Package geometry holds the pure coordinate math used to turn game state into
// pointer targets: folding displacement vectors into an end point, sampling a
// circle for free-hand drawing, and deriving a circle from an element's box.
package geometry

import "github.com/xkilldash9x/gamepilot/api/schemas"

// Accumulate folds the displacement vectors onto start, in order, and returns
// the end point. An empty sequence returns start unchanged.
func Accumulate(start schemas.Coordinate, vectors []schemas.Coordinate) schemas.Coordinate {
	end := start
	for _, v := range vectors {
		end = end.Add(v)
	}
	return end
}
