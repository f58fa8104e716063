package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolylineYAt(t *testing.T) {
	line := Polyline{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 10}}

	t.Run("interpolates within segment", func(t *testing.T) {
		y, ok := line.YAt(5)
		require.True(t, ok)
		assert.InDelta(t, 5.0, y, 1e-9)
	})

	t.Run("flat segment", func(t *testing.T) {
		y, ok := line.YAt(15)
		require.True(t, ok)
		assert.InDelta(t, 10.0, y, 1e-9)
	})

	t.Run("no extrapolation", func(t *testing.T) {
		_, ok := line.YAt(25)
		assert.False(t, ok)
	})
}

func TestSegmentIntersection(t *testing.T) {
	t.Run("crossing segments", func(t *testing.T) {
		pt, ok := SegmentIntersection(Point{0, 0}, Point{10, 10}, Point{0, 10}, Point{10, 0})
		require.True(t, ok)
		assert.InDelta(t, 5.0, pt.X, 1e-9)
		assert.InDelta(t, 5.0, pt.Y, 1e-9)
	})

	t.Run("parallel segments", func(t *testing.T) {
		_, ok := SegmentIntersection(Point{0, 0}, Point{10, 0}, Point{0, 1}, Point{10, 1})
		assert.False(t, ok)
	})

	t.Run("non-overlapping segments", func(t *testing.T) {
		_, ok := SegmentIntersection(Point{0, 0}, Point{1, 1}, Point{5, 0}, Point{5, 10})
		assert.False(t, ok)
	})
}

func TestCircleIntersectPolyline(t *testing.T) {
	// Flat ground at y=0, circle centered above it.
	ground := Polyline{{X: -20, Y: 0}, {X: 20, Y: 0}}
	c := Circle{Xo: 0, Yo: 5, R: 10, Depth: -5}

	pts := c.IntersectPolyline(ground)
	require.Len(t, pts, 2)

	// x^2 = R^2 - Yo^2 => x = sqrt(75)
	want := math.Sqrt(75)
	assert.InDelta(t, -want, pts[0].X, 1e-6)
	assert.InDelta(t, want, pts[1].X, 1e-6)

	t.Run("lower arc elevation", func(t *testing.T) {
		y, ok := c.YLower(0)
		require.True(t, ok)
		assert.InDelta(t, -5.0, y, 1e-9)
	})

	t.Run("outside horizontal extent", func(t *testing.T) {
		_, ok := c.YLower(11)
		assert.False(t, ok)
	})
}

func TestBuildGroundSurface(t *testing.T) {
	t.Run("single line is its own surface", func(t *testing.T) {
		line := Polyline{{X: 0, Y: 10}, {X: 10, Y: 5}}
		surface := BuildGroundSurface([]Polyline{line})
		require.Len(t, surface, 2)
		assert.Equal(t, line, surface)
	})

	t.Run("keeps highest y per x", func(t *testing.T) {
		upper := Polyline{{X: 0, Y: 20}, {X: 10, Y: 20}}
		lower := Polyline{{X: 0, Y: 10}, {X: 10, Y: 10}}
		surface := BuildGroundSurface([]Polyline{upper, lower})
		require.Len(t, surface, 2)
		assert.InDelta(t, 20.0, surface[0].Y, 1e-9)
		assert.InDelta(t, 20.0, surface[1].Y, 1e-9)
	})

	t.Run("drops points overtopped by another line", func(t *testing.T) {
		// Lower layer extends further right; its extra vertex at x=15 is
		// covered by the upper line and must be filtered out.
		upper := Polyline{{X: 0, Y: 20}, {X: 20, Y: 20}}
		lower := Polyline{{X: 0, Y: 10}, {X: 15, Y: 10}, {X: 20, Y: 10}}
		surface := BuildGroundSurface([]Polyline{upper, lower})
		for _, pt := range surface {
			assert.InDelta(t, 20.0, pt.Y, 1e-9)
		}
	})

	t.Run("fewer than two points yields empty surface", func(t *testing.T) {
		surface := BuildGroundSurface([]Polyline{})
		assert.Empty(t, surface)
	})
}

func TestOffset(t *testing.T) {
	line := Polyline{{X: 0, Y: 10}, {X: 5, Y: 12}}
	shifted := Offset(line, -3)
	require.Len(t, shifted, 2)
	assert.InDelta(t, 7.0, shifted[0].Y, 1e-9)
	assert.InDelta(t, 9.0, shifted[1].Y, 1e-9)
	assert.InDelta(t, 0.0, shifted[0].X, 1e-9)
}
