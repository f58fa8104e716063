// Package slices discretizes a trial failure surface into vertical slices and
// assembles the slice table consumed by the equilibrium solvers: base angle,
// base length, weight, pore pressure, strength parameters, moment arms, and
// reinforcement forces.
package slices

import (
	"math"

	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/fileio"
	"github.com/geostab/slopekit/internal/geometry"
)

// Slice holds the computed quantities for one vertical slice.
type Slice struct {
	// Base midpoint and extent.
	XMid  float64
	YBase float64
	Width float64
	DL    float64

	// Alpha is the base inclination in degrees, positive for bases dipping
	// toward the direction of movement (driving).
	Alpha float64

	// W is the total slice weight including surcharge loads.
	W float64

	// Strength at the base.
	C   float64
	Phi float64

	// U is the pore pressure at the base midpoint.
	U float64

	// Reinforcement and pseudo-static contributions. ShearReinf opposes
	// sliding (FL), NormalReinf adds to the base normal force (FT).
	ShearReinf  float64
	NormalReinf float64

	// Moment arms about the rotation center: XArm multiplies W in the driving
	// moment, YArm multiplies the base shear in the resisting moment.
	XArm float64
	YArm float64
}

// Result is the outcome of slice generation.
type Result struct {
	Slices  []Slice
	Surface geometry.Polyline // clipped failure surface, left to right
	// MovementRight is true when the slide moves in +x (crest on the left).
	MovementRight bool
	// CrackDepth is the tension-crack truncation applied, 0 if none.
	CrackDepth float64
}

// Generate discretizes the failure surface into n slices. Pass a circle for
// circular surfaces or nil with a non-circular surface taken from g.NonCirc.
func Generate(g *fileio.Globals, circle *geometry.Circle, n int) (*Result, error) {
	if n < 1 {
		return nil, errors.GeometryError("slice count must be positive")
	}
	if len(g.GroundSurface) < 2 {
		return nil, errors.GeometryError("ground surface is empty")
	}

	var surface geometry.Polyline
	var err error
	if circle != nil {
		surface, err = clipCircle(g, *circle, n)
	} else {
		surface, err = clipNonCircular(g, n)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Surface: surface}

	// Movement direction: from the higher ground end toward the lower.
	leftY, _ := g.GroundSurface.YAt(surface[0].X)
	rightY, _ := g.GroundSurface.YAt(surface[len(surface)-1].X)
	res.MovementRight = leftY >= rightY

	// Tension crack truncation at the crest end.
	if len(g.TCrackSurface) >= 2 {
		surface = truncateAtCrack(surface, g.TCrackSurface, res.MovementRight)
		res.Surface = surface
		res.CrackDepth = g.TCrackDepth
	}
	if len(surface) < 2 {
		return nil, errors.GeometryError("failure surface does not intersect the ground surface")
	}

	center := rotationCenter(circle, surface)

	for i := 1; i < len(surface); i++ {
		s, err := buildSlice(g, surface[i-1], surface[i], center, res.MovementRight)
		if err != nil {
			return nil, err
		}
		res.Slices = append(res.Slices, s)
	}
	if len(res.Slices) == 0 {
		return nil, errors.GeometryError("no slices generated")
	}

	applyCrackWater(g, res)
	applyReinforcement(g, res)
	return res, nil
}

// clipCircle intersects the lower arc with the ground surface and discretizes
// the clipped arc into n equal-width slices.
func clipCircle(g *fileio.Globals, c geometry.Circle, n int) (geometry.Polyline, error) {
	if !math.IsInf(g.MaxDepth, -1) && c.Depth < g.MaxDepth {
		return nil, errors.GeometryError("circle extends below the maximum depth")
	}
	crossings := c.IntersectPolyline(g.GroundSurface)
	if len(crossings) < 2 {
		return nil, errors.GeometryError("circle does not intersect the ground surface twice")
	}
	xl := crossings[0].X
	xr := crossings[len(crossings)-1].X
	if xr-xl < geometry.Tol {
		return nil, errors.GeometryError("degenerate circle-ground intersection")
	}

	surface := geometry.Polyline{crossings[0]}
	dx := (xr - xl) / float64(n)
	for i := 1; i < n; i++ {
		x := xl + float64(i)*dx
		y, ok := c.YLower(x)
		if !ok {
			return nil, errors.GeometryError("failure surface leaves the circle extent")
		}
		surface = append(surface, geometry.Point{X: x, Y: y})
	}
	return append(surface, crossings[len(crossings)-1]), nil
}

// clipNonCircular truncates the user polyline at its ground-surface
// intersections and subdivides it so that roughly n slices are produced while
// keeping every remaining vertex as a slice boundary.
func clipNonCircular(g *fileio.Globals, n int) (geometry.Polyline, error) {
	if len(g.NonCirc) < 2 {
		return nil, errors.GeometryError("non-circular surface must contain at least two points")
	}
	raw := make(geometry.Polyline, len(g.NonCirc))
	for i, p := range g.NonCirc {
		raw[i] = geometry.Point{X: p.X, Y: p.Y}
	}
	raw, err := clipToGround(raw, g.GroundSurface)
	if err != nil {
		return nil, err
	}
	span := raw.MaxX() - raw.MinX()
	if span < geometry.Tol {
		return nil, errors.GeometryError("degenerate non-circular surface")
	}
	target := span / float64(n)

	var surface geometry.Polyline
	surface = append(surface, raw[0])
	for i := 1; i < len(raw); i++ {
		segSpan := raw[i].X - raw[i-1].X
		steps := int(math.Ceil(math.Abs(segSpan)/target)) - 1
		for k := 1; k <= steps; k++ {
			t := float64(k) / float64(steps+1)
			surface = append(surface, geometry.Point{
				X: raw[i-1].X + t*(raw[i].X-raw[i-1].X),
				Y: raw[i-1].Y + t*(raw[i].Y-raw[i-1].Y),
			})
		}
		surface = append(surface, raw[i])
	}
	return surface, nil
}

// clipToGround keeps the buried portion of the surface: an endpoint above the
// ground is pulled in to the nearest crossing, and the surface is cut where it
// daylights before its last vertex.
func clipToGround(raw, ground geometry.Polyline) (geometry.Polyline, error) {
	cuts := geometry.Intersections(raw, ground)

	left := raw[0]
	if gy, ok := ground.YAt(left.X); !ok || left.Y > gy+geometry.Tol {
		if len(cuts) == 0 {
			return nil, errors.GeometryError("non-circular surface does not intersect the ground surface")
		}
		left = cuts[0]
	}

	right := raw[len(raw)-1]
	for _, cut := range cuts {
		if cut.X <= left.X+geometry.Tol {
			continue
		}
		if daylightsAfter(raw, ground, cut.X) {
			right = cut
			break
		}
	}
	if gy, ok := ground.YAt(right.X); !ok || right.Y > gy+geometry.Tol {
		if len(cuts) == 0 {
			return nil, errors.GeometryError("non-circular surface does not intersect the ground surface")
		}
		right = cuts[len(cuts)-1]
	}
	if right.X-left.X < geometry.Tol {
		return nil, errors.GeometryError("degenerate non-circular surface")
	}

	out := geometry.Polyline{left}
	for _, p := range raw {
		if p.X > left.X+geometry.Tol && p.X < right.X-geometry.Tol {
			out = append(out, p)
		}
	}
	return append(out, right), nil
}

// daylightsAfter reports whether the surface rises above the ground just past
// the crossing at x.
func daylightsAfter(raw, ground geometry.Polyline, x float64) bool {
	probe := x + 1e-3*(raw.MaxX()-raw.MinX())
	sy, okS := raw.YAt(probe)
	gy, okG := ground.YAt(probe)
	return okS && okG && sy > gy+geometry.Tol
}

// truncateAtCrack cuts the crest end of the surface where it rises above the
// tension-crack surface, producing a vertical crack face.
func truncateAtCrack(surface, crack geometry.Polyline, movementRight bool) geometry.Polyline {
	cuts := geometry.Intersections(surface, crack)
	if len(cuts) == 0 {
		return surface
	}
	if movementRight {
		// Crest on the left: keep everything right of the first cut.
		cut := cuts[0]
		out := geometry.Polyline{cut}
		for _, p := range surface {
			if p.X > cut.X+geometry.Tol {
				out = append(out, p)
			}
		}
		return out
	}
	cut := cuts[len(cuts)-1]
	var out geometry.Polyline
	for _, p := range surface {
		if p.X < cut.X-geometry.Tol {
			out = append(out, p)
		}
	}
	return append(out, cut)
}

// rotationCenter returns the moment center: the circle center for circular
// surfaces, or the intersection of the perpendicular bisectors of the end
// segments for non-circular ones (best-fit rotation center).
func rotationCenter(circle *geometry.Circle, surface geometry.Polyline) geometry.Point {
	if circle != nil {
		return geometry.Point{X: circle.Xo, Y: circle.Yo}
	}
	if len(surface) >= 3 {
		if c, ok := bisectorIntersection(surface[0], surface[1], surface[len(surface)-2], surface[len(surface)-1]); ok {
			return c
		}
	}
	// Parallel end segments: fall back to the chord midpoint raised by the
	// chord length.
	first, last := surface[0], surface[len(surface)-1]
	chord := math.Hypot(last.X-first.X, last.Y-first.Y)
	return geometry.Point{X: (first.X + last.X) / 2, Y: (first.Y+last.Y)/2 + chord}
}

func bisectorIntersection(a1, a2, b1, b2 geometry.Point) (geometry.Point, bool) {
	// Perpendicular bisector of a segment: passes through its midpoint with
	// the segment normal as direction. Solve the 2x2 system.
	m1 := geometry.Point{X: (a1.X + a2.X) / 2, Y: (a1.Y + a2.Y) / 2}
	m2 := geometry.Point{X: (b1.X + b2.X) / 2, Y: (b1.Y + b2.Y) / 2}
	d1 := geometry.Point{X: -(a2.Y - a1.Y), Y: a2.X - a1.X}
	d2 := geometry.Point{X: -(b2.Y - b1.Y), Y: b2.X - b1.X}
	den := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(den) < geometry.Tol {
		return geometry.Point{}, false
	}
	t := ((m2.X-m1.X)*d2.Y - (m2.Y-m1.Y)*d2.X) / den
	return geometry.Point{X: m1.X + t*d1.X, Y: m1.Y + t*d1.Y}, true
}

func buildSlice(g *fileio.Globals, left, right geometry.Point, center geometry.Point, movementRight bool) (Slice, error) {
	width := right.X - left.X
	if width < geometry.Tol {
		return Slice{}, errors.GeometryError("slice with non-positive width")
	}
	xMid := (left.X + right.X) / 2
	yBase := (left.Y + right.Y) / 2

	groundY, ok := g.GroundSurface.YAt(xMid)
	if !ok || groundY < yBase {
		return Slice{}, errors.GeometryError("failure surface rises above the ground surface")
	}

	slope := (right.Y - left.Y) / width
	alpha := math.Atan(slope)
	if movementRight {
		alpha = -alpha
	}

	s := Slice{
		XMid:  xMid,
		YBase: yBase,
		Width: width,
		DL:    math.Hypot(width, right.Y-left.Y),
		Alpha: alpha * 180 / math.Pi,
	}

	// Weight: integrate layer unit weights over the column above the base.
	// Profile line i is the top boundary of layer i; the layer extends down to
	// the next covering line, or to the slice base.
	layerIdx := -1
	for i := range g.ProfileLines {
		topY, okTop := g.ProfileLines[i].YAt(xMid)
		if !okTop {
			continue
		}
		bottomY := yBase
		for j := i + 1; j < len(g.ProfileLines); j++ {
			if by, okB := g.ProfileLines[j].YAt(xMid); okB {
				bottomY = math.Max(by, yBase)
				break
			}
		}
		top := math.Min(topY, groundY)
		if top > bottomY {
			s.W += g.Materials[i].Gamma * (top - bottomY) * width
		}
		// Base material: the deepest layer whose top is above the base.
		if topY > yBase+geometry.Tol {
			layerIdx = i
		}
	}
	if layerIdx == -1 {
		layerIdx = len(g.Materials) - 1
	}
	mat := g.Materials[layerIdx]

	// Surcharge from distributed loads crossing this slice.
	for _, block := range g.DLoads {
		line := make(geometry.Polyline, len(block))
		for i, p := range block {
			line[i] = geometry.Point{X: p.X, Y: p.Y}
		}
		if q := interpolateDLoad(block, line, xMid); q > 0 {
			s.W += q * width
		}
	}

	// Strength at the base.
	switch mat.Option {
	case fileio.OptionCPhiRatio:
		// Undrained strength ratio: su grows linearly below the reference
		// elevation, zero above it.
		s.C = math.Max(0, mat.Cp*(mat.RElev-yBase))
		s.Phi = 0
	default:
		s.C = mat.C
		s.Phi = mat.Phi
	}

	// Pore pressure from the piezometric head.
	if len(g.PiezoLine) >= 2 {
		if py, okP := g.PiezoLine.YAt(xMid); okP && py > yBase {
			s.U = (py - yBase) * g.GammaWater * mat.Piezo
		}
	}

	// Pseudo-static seismic force resolved onto the base: k*W*cos(alpha) adds
	// to driving shear, k*W*sin(alpha) unloads the base normal.
	if g.KSeismic != 0 {
		kW := g.KSeismic * s.W
		s.ShearReinf -= kW * math.Cos(alpha)
		s.NormalReinf -= kW * math.Sin(alpha)
	}

	// Moment arms, signed so that driving contributions are positive.
	s.YArm = math.Hypot(xMid-center.X, center.Y-yBase)
	if movementRight {
		s.XArm = center.X - xMid
	} else {
		s.XArm = xMid - center.X
	}
	return s, nil
}

// interpolateDLoad returns the load intensity at x, or 0 when x lies outside
// the block.
func interpolateDLoad(block []fileio.DLoadPoint, line geometry.Polyline, x float64) float64 {
	if x < line.MinX() || x > line.MaxX() {
		return 0
	}
	for i := 1; i < len(block); i++ {
		x0, x1 := block[i-1].X, block[i].X
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		if x < x0 || x > x1 {
			continue
		}
		if math.Abs(block[i].X-block[i-1].X) < geometry.Tol {
			return math.Max(block[i-1].Normal, block[i].Normal)
		}
		t := (x - block[i-1].X) / (block[i].X - block[i-1].X)
		return block[i-1].Normal + t*(block[i].Normal-block[i-1].Normal)
	}
	return 0
}

// applyCrackWater converts a water-filled tension crack into a horizontal
// hydrostatic driving force Pw = gamma_w * hw^2 / 2 on the crack-side slice.
func applyCrackWater(g *fileio.Globals, res *Result) {
	if res.CrackDepth <= 0 || g.TCrackWater <= 0 {
		return
	}
	hw := math.Min(g.TCrackWater, res.CrackDepth)
	pw := 0.5 * g.GammaWater * hw * hw
	if res.MovementRight {
		res.Slices[0].ShearReinf -= pw
	} else {
		res.Slices[len(res.Slices)-1].ShearReinf -= pw
	}
}

// applyReinforcement adds FL/FT where reinforcement lines cross the failure
// surface.
func applyReinforcement(g *fileio.Globals, res *Result) {
	for _, line := range g.ReinforceLines {
		poly := make(geometry.Polyline, len(line))
		for i, p := range line {
			poly[i] = geometry.Point{X: p.X, Y: p.Y}
		}
		cuts := geometry.Intersections(poly, res.Surface)
		for _, cut := range cuts {
			idx := sliceAt(res.Slices, cut.X)
			if idx == -1 {
				continue
			}
			fl, ft := reinforceAt(line, cut.X)
			res.Slices[idx].ShearReinf += fl
			res.Slices[idx].NormalReinf += ft
		}
	}
}

func sliceAt(slices []Slice, x float64) int {
	for i, s := range slices {
		if x >= s.XMid-s.Width/2-geometry.Tol && x <= s.XMid+s.Width/2+geometry.Tol {
			return i
		}
	}
	return -1
}

func reinforceAt(line []fileio.ReinforcePoint, x float64) (fl, ft float64) {
	for i := 1; i < len(line); i++ {
		x0, x1 := line[i-1].X, line[i].X
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		if x < x0-geometry.Tol || x > x1+geometry.Tol {
			continue
		}
		if math.Abs(line[i].X-line[i-1].X) < geometry.Tol {
			return line[i].FL, line[i].FT
		}
		t := (x - line[i-1].X) / (line[i].X - line[i-1].X)
		return line[i-1].FL + t*(line[i].FL-line[i-1].FL),
			line[i-1].FT + t*(line[i].FT-line[i-1].FT)
	}
	return 0, 0
}
