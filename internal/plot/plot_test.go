package plot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostab/slopekit/internal/fileio"
	"github.com/geostab/slopekit/internal/geometry"
	"github.com/geostab/slopekit/internal/slices"
	"github.com/geostab/slopekit/internal/solve"
)

func plotGlobals() *fileio.Globals {
	g := &fileio.Globals{
		GammaWater: 9.81,
		MaxDepth:   math.Inf(-1),
		ProfileLines: []geometry.Polyline{
			{{X: 0, Y: 20}, {X: 20, Y: 20}, {X: 40, Y: 0}, {X: 60, Y: 0}},
		},
		PiezoLine: geometry.Polyline{{X: 0, Y: 16}, {X: 60, Y: 1}},
		Materials: []fileio.Material{
			{Gamma: 18, Option: fileio.OptionMohrCoulomb, C: 10, Phi: 30, Piezo: 1},
		},
	}
	g.GroundSurface = geometry.BuildGroundSurface(g.ProfileLines)
	return g
}

func TestRender(t *testing.T) {
	g := plotGlobals()
	circle := geometry.Circle{Xo: 30, Yo: 25, R: 25, Depth: 0}

	res, err := slices.Generate(g, &circle, 12)
	require.NoError(t, err)

	fs, _, _ := solve.Bishop(res.Slices, solve.DefaultOptions())
	sr := &solve.Result{Method: solve.MethodBishop, FS: fs, Converged: true}

	for _, ext := range []string{"png", "svg"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "section."+ext)
			require.NoError(t, Render(g, res, sr, path, DefaultOptions()))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestRenderWithoutSolution(t *testing.T) {
	g := plotGlobals()
	path := filepath.Join(t.TempDir(), "profile.png")

	opt := DefaultOptions()
	opt.Title = "profile only"
	require.NoError(t, Render(g, nil, nil, path, opt))
}

func TestRenderBadFormat(t *testing.T) {
	g := plotGlobals()
	path := filepath.Join(t.TempDir(), "section.xyz")
	err := Render(g, nil, nil, path, DefaultOptions())
	require.Error(t, err)
}
