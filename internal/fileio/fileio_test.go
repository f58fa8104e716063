package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostab/slopekit/internal/errors"
)

const validInput = `
gamma_water: 9.81
tcrack_depth: 0
tcrack_water: 0
k_seismic: 0
profile_lines:
  - [[0, 30], [20, 30], [50, 15], [100, 15]]
materials:
  - {gamma: 18.5, option: mc, c: 10, phi: 28, sigma_c: 2, sigma_phi: 3}
piezo_line: [[0, 25], [100, 12]]
circles:
  - {xo: 45, yo: 45, option: Radius, r: 32}
  - {xo: 45, yo: 45, option: Depth, depth: 10}
  - {xo: 45, yo: 45, option: Intercept, xi: 45, yi: 15}
`

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	g, err := LoadYAML(writeInput(t, validInput))
	require.NoError(t, err)

	assert.InDelta(t, 9.81, g.GammaWater, 1e-9)
	assert.True(t, g.Circular)
	require.Len(t, g.Circles, 3)

	t.Run("radius option", func(t *testing.T) {
		assert.InDelta(t, 32.0, g.Circles[0].R, 1e-9)
		assert.InDelta(t, 13.0, g.Circles[0].Depth, 1e-9)
	})
	t.Run("depth option", func(t *testing.T) {
		assert.InDelta(t, 35.0, g.Circles[1].R, 1e-9)
		assert.InDelta(t, 10.0, g.Circles[1].Depth, 1e-9)
	})
	t.Run("intercept option", func(t *testing.T) {
		assert.InDelta(t, 30.0, g.Circles[2].R, 1e-9)
		assert.InDelta(t, 15.0, g.Circles[2].Depth, 1e-9)
	})

	t.Run("ground surface derived from profile", func(t *testing.T) {
		require.NotEmpty(t, g.GroundSurface)
		y, ok := g.GroundSurface.YAt(10)
		require.True(t, ok)
		assert.InDelta(t, 30.0, y, 1e-9)
	})

	t.Run("default piezo factor applied", func(t *testing.T) {
		require.Len(t, g.Materials, 1)
		assert.InDelta(t, 1.0, g.Materials[0].Piezo, 1e-9)
	})
}

func TestLoadYAMLValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{
			name: "no failure surface",
			body: `
profile_lines:
  - [[0, 30], [100, 15]]
materials:
  - {gamma: 18.5, option: mc, c: 10, phi: 28}
`,
		},
		{
			name: "no profile lines",
			body: `
materials:
  - {gamma: 18.5, option: mc, c: 10, phi: 28}
circles:
  - {xo: 45, yo: 45, option: Radius, r: 32}
`,
		},
		{
			name: "material count mismatch",
			body: `
profile_lines:
  - [[0, 30], [100, 15]]
  - [[0, 20], [100, 5]]
materials:
  - {gamma: 18.5, option: mc, c: 10, phi: 28}
circles:
  - {xo: 45, yo: 45, option: Radius, r: 32}
`,
		},
		{
			name: "single point piezo line",
			body: `
profile_lines:
  - [[0, 30], [100, 15]]
materials:
  - {gamma: 18.5, option: mc, c: 10, phi: 28}
piezo_line: [[0, 25]]
circles:
  - {xo: 45, yo: 45, option: Radius, r: 32}
`,
		},
		{
			name: "unknown circle option",
			body: `
profile_lines:
  - [[0, 30], [100, 15]]
materials:
  - {gamma: 18.5, option: mc, c: 10, phi: 28}
circles:
  - {xo: 45, yo: 45, option: Chord, r: 32}
`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadYAML(writeInput(t, tc.body))
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryInput))
		})
	}
}

func TestLoadDispatch(t *testing.T) {
	t.Run("yaml path", func(t *testing.T) {
		g, err := Load(writeInput(t, validInput))
		require.NoError(t, err)
		assert.True(t, g.Circular)
	})
	t.Run("missing workbook", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.xlsx"))
		require.Error(t, err)
	})
}
