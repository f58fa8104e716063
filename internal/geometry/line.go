// Package geometry provides the 2D cross-section primitives used by slice
// generation: polylines for profile layers and surfaces, and circle/segment
// intersection helpers for failure surfaces.
package geometry

import (
	"math"
	"sort"
)

// Tol is the coordinate comparison tolerance used across geometry operations.
const Tol = 1e-9

// Point is a 2D point in cross-section coordinates (x horizontal, y elevation).
type Point struct {
	X float64
	Y float64
}

// Polyline is an ordered open line strip. Points are expected in increasing x
// for surface-like lines, but no ordering is enforced for general use.
type Polyline []Point

// Length returns the total arc length of the polyline.
func (p Polyline) Length() float64 {
	var l float64
	for i := 1; i < len(p); i++ {
		l += math.Hypot(p[i].X-p[i-1].X, p[i].Y-p[i-1].Y)
	}
	return l
}

// MinX returns the smallest x coordinate, or +Inf for an empty polyline.
func (p Polyline) MinX() float64 {
	min := math.Inf(1)
	for _, pt := range p {
		if pt.X < min {
			min = pt.X
		}
	}
	return min
}

// MaxX returns the largest x coordinate, or -Inf for an empty polyline.
func (p Polyline) MaxX() float64 {
	max := math.Inf(-1)
	for _, pt := range p {
		if pt.X > max {
			max = pt.X
		}
	}
	return max
}

// YAt linearly interpolates the elevation of the polyline at x. The second
// return value is false when x lies outside the polyline's horizontal span:
// interpolation never extrapolates.
func (p Polyline) YAt(x float64) (float64, bool) {
	for i := 1; i < len(p); i++ {
		x0, x1 := p[i-1].X, p[i].X
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		if x < x0-Tol || x > x1+Tol {
			continue
		}
		dx := p[i].X - p[i-1].X
		if math.Abs(dx) < Tol {
			// Vertical segment: return the higher end.
			return math.Max(p[i-1].Y, p[i].Y), true
		}
		t := (x - p[i-1].X) / dx
		return p[i-1].Y + t*(p[i].Y-p[i-1].Y), true
	}
	return 0, false
}

// Covers reports whether x is within the horizontal span of the polyline,
// excluding the endpoints themselves (mirrors the projection guard that
// excluded extrapolated endpoints in ground-surface construction).
func (p Polyline) Covers(x float64) bool {
	if len(p) < 2 {
		return false
	}
	return x > p.MinX()+Tol && x < p.MaxX()-Tol
}

// SegmentIntersection returns the intersection point of segments a1-a2 and
// b1-b2, if one exists within both segments.
func SegmentIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	d1x, d1y := a2.X-a1.X, a2.Y-a1.Y
	d2x, d2y := b2.X-b1.X, b2.Y-b1.Y
	den := d1x*d2y - d1y*d2x
	if math.Abs(den) < Tol {
		return Point{}, false
	}
	t := ((b1.X-a1.X)*d2y - (b1.Y-a1.Y)*d2x) / den
	u := ((b1.X-a1.X)*d1y - (b1.Y-a1.Y)*d1x) / den
	if t < -Tol || t > 1+Tol || u < -Tol || u > 1+Tol {
		return Point{}, false
	}
	return Point{X: a1.X + t*d1x, Y: a1.Y + t*d1y}, true
}

// Intersections returns all intersection points of two polylines, sorted by x.
func Intersections(a, b Polyline) []Point {
	var pts []Point
	for i := 1; i < len(a); i++ {
		for j := 1; j < len(b); j++ {
			if pt, ok := SegmentIntersection(a[i-1], a[i], b[j-1], b[j]); ok {
				pts = append(pts, pt)
			}
		}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return dedupe(pts)
}

func dedupe(pts []Point) []Point {
	out := pts[:0]
	for _, p := range pts {
		if len(out) > 0 && math.Abs(p.X-out[len(out)-1].X) < 1e-6 && math.Abs(p.Y-out[len(out)-1].Y) < 1e-6 {
			continue
		}
		out = append(out, p)
	}
	return out
}
