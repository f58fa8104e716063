// Package fileio loads and validates slope stability analysis input, either
// from the Excel input workbook or from an equivalent YAML document. It parses
// circular and non-circular failure surface data, reinforcement, piezometric
// lines, and distributed loads into the Globals structure used throughout the
// analysis.
package fileio

import (
	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/geometry"
)

// MaterialOption selects the strength model of a material.
type MaterialOption string

const (
	// OptionMohrCoulomb uses cohesion c and friction angle phi.
	OptionMohrCoulomb MaterialOption = "mc"
	// OptionCPhiRatio uses an undrained strength ratio cp below a reference
	// elevation.
	OptionCPhiRatio MaterialOption = "cp"
)

// Material describes one soil layer. The layer order matches ProfileLines.
type Material struct {
	Gamma  float64        `yaml:"gamma"`
	Option MaterialOption `yaml:"option"`
	C      float64        `yaml:"c,omitempty"`
	Phi    float64        `yaml:"phi,omitempty"`
	Cp     float64        `yaml:"cp,omitempty"`
	RElev  float64        `yaml:"r_elev,omitempty"`
	Piezo  float64        `yaml:"piezo"`

	// Standard deviations for reliability analysis. Zero means deterministic.
	SigmaGamma float64 `yaml:"sigma_gamma,omitempty"`
	SigmaC     float64 `yaml:"sigma_c,omitempty"`
	SigmaPhi   float64 `yaml:"sigma_phi,omitempty"`
	SigmaCp    float64 `yaml:"sigma_cp,omitempty"`
}

// NonCircPoint is one vertex of a user-specified non-circular failure surface.
// Movement flags the constrained direction of the vertex ("Free", "Horiz", ...).
type NonCircPoint struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Movement string  `yaml:"movement,omitempty"`
}

// DLoadPoint is one vertex of a distributed load block. Normal is the load
// intensity normal to the ground surface at (X, Y).
type DLoadPoint struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Normal float64 `yaml:"normal"`
}

// ReinforcePoint is one vertex of a reinforcement line. FL is the force
// opposing sliding (shear), FT the force contributing to the base normal.
type ReinforcePoint struct {
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	FL float64 `yaml:"fl"`
	FT float64 `yaml:"ft"`
}

// Globals is the parsed and validated input for one analysis.
type Globals struct {
	GammaWater  float64
	TCrackDepth float64
	TCrackWater float64
	KSeismic    float64

	ProfileLines  []geometry.Polyline
	GroundSurface geometry.Polyline
	TCrackSurface geometry.Polyline
	Materials     []Material
	PiezoLine     geometry.Polyline

	// Circular is true when at least one circle is specified; otherwise the
	// non-circular surface is used.
	Circular bool
	MaxDepth float64
	Circles  []geometry.Circle
	NonCirc  []NonCircPoint

	DLoads         [][]DLoadPoint
	ReinforceLines [][]ReinforcePoint
}

// finish derives the ground and tension-crack surfaces and validates the
// assembled input. Both loaders call it after parsing.
func (g *Globals) finish() error {
	g.GroundSurface = geometry.BuildGroundSurface(g.ProfileLines)
	if g.TCrackDepth > 0 {
		g.TCrackSurface = geometry.Offset(g.GroundSurface, -g.TCrackDepth)
	}
	g.Circular = len(g.Circles) > 0
	return g.validate()
}

func (g *Globals) validate() error {
	if !g.Circular && len(g.NonCirc) == 0 {
		return errors.InputError("circles", "input must include either circular or non-circular surface data")
	}
	if len(g.ProfileLines) == 0 {
		return errors.InputError("profile", "profile lines sheet is empty or invalid")
	}
	for _, line := range g.ProfileLines {
		if len(line) < 2 {
			return errors.InputError("profile", "each profile line must contain at least two points")
		}
	}
	if len(g.Materials) == 0 {
		return errors.InputError("mat", "materials sheet is empty")
	}
	if len(g.Materials) != len(g.ProfileLines) {
		return errors.InputError("mat", "each profile line must have a corresponding material")
	}
	if len(g.PiezoLine) == 1 {
		return errors.InputError("piezo", "piezometric line must contain at least two points")
	}
	for _, block := range g.DLoads {
		if len(block) < 2 {
			return errors.InputError("dloads", "each distributed load block must contain at least two points")
		}
	}
	for _, line := range g.ReinforceLines {
		if len(line) < 2 {
			return errors.InputError("reinforce", "each reinforcement line must contain at least two points")
		}
	}
	return nil
}
