package reliability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/fileio"
	"github.com/geostab/slopekit/internal/geometry"
)

func reliabilityGlobals() *fileio.Globals {
	g := &fileio.Globals{
		GammaWater: 9.81,
		MaxDepth:   math.Inf(-1),
		ProfileLines: []geometry.Polyline{
			{{X: 0, Y: 20}, {X: 20, Y: 20}, {X: 40, Y: 0}, {X: 60, Y: 0}},
		},
		Materials: []fileio.Material{
			{Gamma: 18, Option: fileio.OptionMohrCoulomb, C: 10, Phi: 30, Piezo: 1,
				SigmaC: 2, SigmaPhi: 3},
		},
		Circular: true,
	}
	g.GroundSurface = geometry.BuildGroundSurface(g.ProfileLines)
	return g
}

func testCircle() geometry.Circle {
	return geometry.Circle{Xo: 30, Yo: 25, R: 25, Depth: 0}
}

func TestMonteCarlo(t *testing.T) {
	g := reliabilityGlobals()
	circle := testCircle()
	opt := DefaultOptions()
	opt.Draws = 200

	res, err := MonteCarlo(g, &circle, opt)
	require.NoError(t, err)

	assert.Equal(t, opt.Draws, res.Samples+res.FailedDraws)
	assert.Greater(t, res.StdFS, 0.0)
	assert.Greater(t, res.Deterministic, 0.0)

	// With modest sigmas the mean stays near the deterministic value.
	assert.InDelta(t, res.Deterministic, res.MeanFS, 0.5)

	// Beta and the failure probability are consistent for a normal FS.
	assert.InDelta(t, (res.MeanFS-1)/res.StdFS, res.Beta, 1e-9)
	if res.Beta > 0 {
		assert.Less(t, res.PFailure, 0.5)
	}

	t.Run("same seed reproduces the run", func(t *testing.T) {
		again, err := MonteCarlo(g, &circle, opt)
		require.NoError(t, err)
		assert.Equal(t, res.MeanFS, again.MeanFS)
		assert.Equal(t, res.StdFS, again.StdFS)
	})

	t.Run("different seed differs", func(t *testing.T) {
		opt2 := opt
		opt2.Seed = 42
		other, err := MonteCarlo(g, &circle, opt2)
		require.NoError(t, err)
		assert.NotEqual(t, res.MeanFS, other.MeanFS)
	})
}

func TestMonteCarloErrors(t *testing.T) {
	g := reliabilityGlobals()
	circle := testCircle()

	t.Run("too few draws", func(t *testing.T) {
		opt := DefaultOptions()
		opt.Draws = 1
		_, err := MonteCarlo(g, &circle, opt)
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryInput))
	})

	t.Run("no uncertain properties", func(t *testing.T) {
		dry := reliabilityGlobals()
		dry.Materials[0].SigmaC = 0
		dry.Materials[0].SigmaPhi = 0
		_, err := MonteCarlo(dry, &circle, DefaultOptions())
		require.Error(t, err)
	})
}

func TestFOSM(t *testing.T) {
	g := reliabilityGlobals()
	circle := testCircle()
	opt := DefaultOptions()

	res, err := FOSM(g, &circle, opt)
	require.NoError(t, err)

	assert.Greater(t, res.StdFS, 0.0)
	assert.Equal(t, res.Deterministic, res.MeanFS)
	assert.InDelta(t, (res.MeanFS-1)/res.StdFS, res.Beta, 1e-9)

	t.Run("agrees with Monte Carlo to first order", func(t *testing.T) {
		mcOpt := opt
		mcOpt.Draws = 400
		mc, err := MonteCarlo(g, &circle, mcOpt)
		require.NoError(t, err)
		assert.InDelta(t, mc.StdFS, res.StdFS, mc.StdFS) // same order of magnitude
	})

	t.Run("no uncertain properties", func(t *testing.T) {
		dry := reliabilityGlobals()
		dry.Materials[0].SigmaC = 0
		dry.Materials[0].SigmaPhi = 0
		_, err := FOSM(dry, &circle, opt)
		require.Error(t, err)
	})
}
