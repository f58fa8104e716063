package geometry

import (
	"sort"
)

// BuildGroundSurface constructs the topmost ground surface from a set of
// profile lines.
//
// The function:
//  1. Collects all (x, y) points from the input profile lines.
//  2. Keeps the highest y-value for each unique x-coordinate.
//  3. Filters these points by ensuring they are not exceeded in elevation by
//     any other profile line at the same x.
//  4. Returns a polyline representing the visible ground surface, or an empty
//     polyline if fewer than two valid points remain.
//
// Points whose elevation check would require extrapolating another line are
// not rejected by that line, so the result reflects the outermost (visible)
// surface in multi-layered profiles.
func BuildGroundSurface(profileLines []Polyline) Polyline {
	// Highest y per unique x.
	topCandidates := make(map[float64]float64)
	for _, line := range profileLines {
		for _, pt := range line {
			if y, ok := topCandidates[pt.X]; !ok || pt.Y > y {
				topCandidates[pt.X] = pt.Y
			}
		}
	}

	xs := make([]float64, 0, len(topCandidates))
	for x := range topCandidates {
		xs = append(xs, x)
	}
	sort.Float64s(xs)

	var surface Polyline
	for _, x := range xs {
		y := topCandidates[x]
		keep := true
		for _, other := range profileLines {
			if other.Length() == 0 || !other.Covers(x) {
				continue // avoid extrapolation
			}
			if oy, ok := other.YAt(x); ok && oy > y+1e-6 {
				keep = false
				break
			}
		}
		if keep {
			surface = append(surface, Point{X: x, Y: y})
		}
	}

	if len(surface) < 2 {
		return Polyline{}
	}
	return surface
}

// Offset returns a copy of the polyline shifted vertically by dy. Used to
// derive the tension-crack surface from the ground surface.
func Offset(line Polyline, dy float64) Polyline {
	out := make(Polyline, len(line))
	for i, pt := range line {
		out[i] = Point{X: pt.X, Y: pt.Y + dy}
	}
	return out
}
