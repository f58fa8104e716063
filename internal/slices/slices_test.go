package slices

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostab/slopekit/internal/fileio"
	"github.com/geostab/slopekit/internal/geometry"
)

// testGlobals builds a simple right-facing slope: crest at y=20 on the left,
// toe at y=0 on the right, one Mohr-Coulomb layer.
func testGlobals() *fileio.Globals {
	g := &fileio.Globals{
		GammaWater: 9.81,
		MaxDepth:   math.Inf(-1),
		ProfileLines: []geometry.Polyline{
			{{X: 0, Y: 20}, {X: 20, Y: 20}, {X: 40, Y: 0}, {X: 60, Y: 0}},
		},
		Materials: []fileio.Material{
			{Gamma: 18, Option: fileio.OptionMohrCoulomb, C: 10, Phi: 30, Piezo: 1},
		},
	}
	g.GroundSurface = geometry.BuildGroundSurface(g.ProfileLines)
	return g
}

func testCircle() geometry.Circle {
	return geometry.Circle{Xo: 30, Yo: 25, R: 25, Depth: 0}
}

func TestGenerateCircular(t *testing.T) {
	g := testGlobals()
	circle := testCircle()

	res, err := Generate(g, &circle, 10)
	require.NoError(t, err)
	require.Len(t, res.Slices, 10)
	assert.True(t, res.MovementRight)

	t.Run("widths cover the clipped surface", func(t *testing.T) {
		var total float64
		for _, s := range res.Slices {
			assert.Greater(t, s.Width, 0.0)
			total += s.Width
		}
		span := res.Surface[len(res.Surface)-1].X - res.Surface[0].X
		assert.InDelta(t, span, total, 1e-6)
	})

	t.Run("crest slices drive and toe slices resist", func(t *testing.T) {
		assert.Greater(t, res.Slices[0].Alpha, 0.0)
		assert.Less(t, res.Slices[len(res.Slices)-1].Alpha, 0.0)
	})

	t.Run("weights are positive and use the layer unit weight", func(t *testing.T) {
		for _, s := range res.Slices {
			assert.Greater(t, s.W, 0.0)
		}
		// Tallest column is near the crest-side intersection with the crest
		// still at y=20.
		mid := res.Slices[3]
		groundY, ok := g.GroundSurface.YAt(mid.XMid)
		require.True(t, ok)
		want := 18.0 * (groundY - mid.YBase) * mid.Width
		assert.InDelta(t, want, mid.W, 1e-6)
	})

	t.Run("strength copied from the base material", func(t *testing.T) {
		for _, s := range res.Slices {
			assert.InDelta(t, 10.0, s.C, 1e-9)
			assert.InDelta(t, 30.0, s.Phi, 1e-9)
		}
	})

	t.Run("dry section has zero pore pressure", func(t *testing.T) {
		for _, s := range res.Slices {
			assert.Zero(t, s.U)
		}
	})
}

func TestGeneratePorePressure(t *testing.T) {
	g := testGlobals()
	g.PiezoLine = geometry.Polyline{{X: 0, Y: 18}, {X: 60, Y: 2}}
	circle := testCircle()

	res, err := Generate(g, &circle, 10)
	require.NoError(t, err)

	var wet int
	for _, s := range res.Slices {
		py, ok := g.PiezoLine.YAt(s.XMid)
		require.True(t, ok)
		if py > s.YBase {
			wet++
			assert.InDelta(t, (py-s.YBase)*g.GammaWater, s.U, 1e-6)
		} else {
			assert.Zero(t, s.U)
		}
	}
	assert.Greater(t, wet, 0)
}

func TestGenerateSeismic(t *testing.T) {
	g := testGlobals()
	circle := testCircle()
	dry, err := Generate(g, &circle, 8)
	require.NoError(t, err)

	g.KSeismic = 0.15
	seismic, err := Generate(g, &circle, 8)
	require.NoError(t, err)

	for i := range dry.Slices {
		// The horizontal force component adds driving shear.
		assert.Less(t, seismic.Slices[i].ShearReinf, dry.Slices[i].ShearReinf)
	}
}

func TestGenerateTensionCrack(t *testing.T) {
	g := testGlobals()
	g.TCrackDepth = 4
	g.TCrackWater = 2
	g.TCrackSurface = geometry.Offset(g.GroundSurface, -g.TCrackDepth)
	circle := testCircle()

	full := testGlobals()
	fullRes, err := Generate(full, &circle, 12)
	require.NoError(t, err)

	res, err := Generate(g, &circle, 12)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, res.CrackDepth, 1e-9)

	// Truncation removes crest-side surface length.
	assert.Greater(t, res.Surface[0].X, fullRes.Surface[0].X)

	// Water in the crack adds a hydrostatic driving force on the crest slice.
	pw := 0.5 * g.GammaWater * 2 * 2
	assert.InDelta(t, -pw, res.Slices[0].ShearReinf, 1e-6)
}

func TestGenerateReinforcement(t *testing.T) {
	g := testGlobals()
	g.ReinforceLines = [][]fileio.ReinforcePoint{
		{{X: 10, Y: 6, FL: 50, FT: 20}, {X: 50, Y: 6, FL: 50, FT: 20}},
	}
	circle := testCircle()

	res, err := Generate(g, &circle, 10)
	require.NoError(t, err)

	var fl, ft float64
	for _, s := range res.Slices {
		fl += s.ShearReinf
		ft += s.NormalReinf
	}
	// The line enters through the descending branch of the arc once; the
	// ascending branch stays below it inside the clipped surface.
	assert.InDelta(t, 50.0, fl, 1e-6)
	assert.InDelta(t, 20.0, ft, 1e-6)
}

func TestGenerateNonCircular(t *testing.T) {
	g := testGlobals()
	g.Circles = nil
	g.Circular = false
	g.NonCirc = []fileio.NonCircPoint{
		{X: 6, Y: 20, Movement: "Free"},
		{X: 25, Y: 8},
		{X: 45, Y: 0, Movement: "Free"},
	}

	res, err := Generate(g, nil, 12)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(res.Slices), 12)
	for _, s := range res.Slices {
		assert.Greater(t, s.Width, 0.0)
	}

	t.Run("daylighting surface truncated at the ground", func(t *testing.T) {
		// The last segment crosses the slope face at x = 110/3 and runs above
		// it from there to x = 45; the clipped surface must end at the
		// crossing, not at the last vertex.
		end := res.Surface[len(res.Surface)-1]
		assert.InDelta(t, 110.0/3, end.X, 1e-6)
		assert.InDelta(t, 10.0/3, end.Y, 1e-6)

		for _, s := range res.Slices {
			groundY, ok := g.GroundSurface.YAt(s.XMid)
			require.True(t, ok)
			assert.LessOrEqual(t, s.YBase, groundY+1e-9)
		}
	})
}

func TestGenerateErrors(t *testing.T) {
	t.Run("circle missing the slope", func(t *testing.T) {
		g := testGlobals()
		c := geometry.Circle{Xo: 300, Yo: 40, R: 5, Depth: 35}
		_, err := Generate(g, &c, 10)
		require.Error(t, err)
	})

	t.Run("circle below max depth", func(t *testing.T) {
		g := testGlobals()
		g.MaxDepth = 5
		c := testCircle() // bottom at y=0
		_, err := Generate(g, &c, 10)
		require.Error(t, err)
	})

	t.Run("zero slice count", func(t *testing.T) {
		g := testGlobals()
		c := testCircle()
		_, err := Generate(g, &c, 0)
		require.Error(t, err)
	})
}
