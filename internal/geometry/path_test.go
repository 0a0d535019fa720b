package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

func TestAccumulate(t *testing.T) {
	t.Run("should fold vectors onto the start point", func(t *testing.T) {
		start := schemas.Coordinate{X: 10, Y: 10}
		vectors := []schemas.Coordinate{{X: 30, Y: 0}, {X: 0, Y: -30}}

		assert.Equal(t, schemas.Coordinate{X: 40, Y: -20}, Accumulate(start, vectors))
	})

	t.Run("should return the start unchanged for an empty sequence", func(t *testing.T) {
		start := schemas.Coordinate{X: 7, Y: -3}
		assert.Equal(t, start, Accumulate(start, nil))
		assert.Equal(t, start, Accumulate(start, []schemas.Coordinate{}))
	})

	t.Run("should not mutate the input vectors", func(t *testing.T) {
		vectors := []schemas.Coordinate{{X: 1, Y: 2}, {X: 3, Y: 4}}
		_ = Accumulate(schemas.Coordinate{}, vectors)
		assert.Equal(t, []schemas.Coordinate{{X: 1, Y: 2}, {X: 3, Y: 4}}, vectors)
	})

	t.Run("should equal folding in two halves", func(t *testing.T) {
		start := schemas.Coordinate{X: 100, Y: 100}
		vectors := []schemas.Coordinate{{X: 0, Y: -60}, {X: 30, Y: 0}, {X: -90, Y: 0}, {X: 0, Y: 120}}

		whole := Accumulate(start, vectors)
		split := Accumulate(Accumulate(start, vectors[:2]), vectors[2:])
		assert.Equal(t, whole, split)
	})
}
