package geometry

import "math"

// Circle is a circular failure surface candidate. Depth is the elevation of
// the lowest point of the circle (Yo - R).
type Circle struct {
	Xo    float64
	Yo    float64
	R     float64
	Depth float64
}

// YLower returns the elevation of the lower arc of the circle at x. The second
// return value is false when x is outside the circle's horizontal extent.
func (c Circle) YLower(x float64) (float64, bool) {
	dx := x - c.Xo
	disc := c.R*c.R - dx*dx
	if disc < 0 {
		return 0, false
	}
	return c.Yo - math.Sqrt(disc), true
}

// IntersectPolyline returns the points where the lower arc of the circle
// crosses the given polyline, sorted by x.
func (c Circle) IntersectPolyline(line Polyline) []Point {
	var pts []Point
	for i := 1; i < len(line); i++ {
		pts = append(pts, c.intersectSegment(line[i-1], line[i])...)
	}
	// Keep only lower-arc crossings.
	out := pts[:0]
	for _, p := range pts {
		if p.Y <= c.Yo+Tol {
			out = append(out, p)
		}
	}
	sortByX(out)
	return dedupe(out)
}

// intersectSegment solves |p(t) - center| = R for p(t) on segment a-b.
func (c Circle) intersectSegment(a, b Point) []Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	fx, fy := a.X-c.Xo, a.Y-c.Yo

	qa := dx*dx + dy*dy
	qb := 2 * (fx*dx + fy*dy)
	qc := fx*fx + fy*fy - c.R*c.R
	if qa < Tol {
		return nil
	}
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	var pts []Point
	for _, t := range []float64{(-qb - sq) / (2 * qa), (-qb + sq) / (2 * qa)} {
		if t < -Tol || t > 1+Tol {
			continue
		}
		pts = append(pts, Point{X: a.X + t*dx, Y: a.Y + t*dy})
	}
	return pts
}

func sortByX(pts []Point) {
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && pts[j].X < pts[j-1].X; j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}
}
