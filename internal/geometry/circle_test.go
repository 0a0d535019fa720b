package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// approx compares coordinates within the tolerance used for sampled paths.
var approx = cmpopts.EquateApprox(0, 1e-9)

func TestSamplePoints(t *testing.T) {
	t.Run("should place four points on the axes", func(t *testing.T) {
		got := SamplePoints(schemas.Coordinate{}, 10, 4)
		want := []schemas.Coordinate{
			{X: 10, Y: 0},
			{X: 0, Y: 10},
			{X: -10, Y: 0},
			{X: 0, Y: -10},
		}
		if diff := cmp.Diff(want, got, approx); diff != "" {
			t.Errorf("SamplePoints mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should offset every point by the center", func(t *testing.T) {
		center := schemas.Coordinate{X: 250, Y: 120}
		got := SamplePoints(center, 50, 2)
		want := []schemas.Coordinate{{X: 300, Y: 120}, {X: 200, Y: 120}}
		if diff := cmp.Diff(want, got, approx); diff != "" {
			t.Errorf("SamplePoints mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should return exactly count points on the circle", func(t *testing.T) {
		center := schemas.Coordinate{X: 3, Y: -4}
		for _, count := range []int{1, 2, 3, 7, 90, 361} {
			points := SamplePoints(center, 42.5, count)
			require.Len(t, points, count)
			for _, p := range points {
				assert.InDelta(t, 42.5, math.Hypot(p.X-center.X, p.Y-center.Y), 1e-9)
			}
		}
	})

	t.Run("should space points uniformly by angle", func(t *testing.T) {
		points := SamplePoints(schemas.Coordinate{}, 1, 12)
		step := 2 * math.Pi / 12
		for i, p := range points {
			angle := math.Atan2(p.Y, p.X)
			if angle < 0 {
				angle += 2 * math.Pi
			}
			assert.InDelta(t, float64(i)*step, angle, 1e-9, "point %d", i)
		}
	})

	t.Run("should move downward on screen after the first point", func(t *testing.T) {
		points := SamplePoints(schemas.Coordinate{X: 100, Y: 100}, 20, 8)
		assert.Greater(t, points[1].Y, points[0].Y, "y = center.y + r*sin(theta) grows downward")
	})

	t.Run("should panic on a non-positive radius", func(t *testing.T) {
		assert.Panics(t, func() { SamplePoints(schemas.Coordinate{}, 0, 4) })
		assert.Panics(t, func() { SamplePoints(schemas.Coordinate{}, -1, 4) })
		assert.Panics(t, func() { SamplePoints(schemas.Coordinate{}, math.NaN(), 4) })
	})

	t.Run("should panic on a count below one", func(t *testing.T) {
		assert.Panics(t, func() { SamplePoints(schemas.Coordinate{}, 10, 0) })
		assert.Panics(t, func() { SamplePoints(schemas.Coordinate{}, 10, -3) })
	})
}

func TestSampleCircle(t *testing.T) {
	t.Run("should use the radius as the default count", func(t *testing.T) {
		assert.Len(t, SampleCircle(schemas.Coordinate{}, 100), 100)
	})

	t.Run("should round fractional radii", func(t *testing.T) {
		assert.Len(t, SampleCircle(schemas.Coordinate{}, 75.4), 75)
		assert.Len(t, SampleCircle(schemas.Coordinate{}, 75.5), 76)
	})

	t.Run("should match SamplePoints with the default count", func(t *testing.T) {
		center := schemas.Coordinate{X: 12, Y: 34}
		want := SamplePoints(center, 30, 30)
		if diff := cmp.Diff(want, SampleCircle(center, 30), approx); diff != "" {
			t.Errorf("SampleCircle mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDefaultSampleCount(t *testing.T) {
	assert.Equal(t, 100, DefaultSampleCount(100))
	assert.Equal(t, 76, DefaultSampleCount(75.75))
	assert.Equal(t, 1, DefaultSampleCount(0.2), "tiny radii still produce one point")
}

func TestWithBias(t *testing.T) {
	center := schemas.Coordinate{X: 100, Y: 100}
	path := SamplePoints(center, 75, 4)

	biased := WithBias(path, center, 75, 0.3)

	require.Len(t, biased, len(path)+1)
	assert.InDelta(t, 122.5, biased[0].X, 1e-9)
	assert.InDelta(t, 100, biased[0].Y, 1e-9)
	if diff := cmp.Diff(path, biased[1:], approx); diff != "" {
		t.Errorf("samples after the bias point changed (-want +got):\n%s", diff)
	}
	assert.Len(t, path, 4, "input path must not grow")
}
