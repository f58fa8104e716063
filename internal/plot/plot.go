// Package plot renders a cross section of the analyzed slope: profile lines,
// ground surface, piezometric line, the failure surface, and slice outlines.
package plot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/fileio"
	"github.com/geostab/slopekit/internal/geometry"
	"github.com/geostab/slopekit/internal/slices"
	"github.com/geostab/slopekit/internal/solve"
)

var (
	colorGround  = color.RGBA{R: 0x33, G: 0x66, B: 0x1a, A: 0xff}
	colorProfile = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	colorPiezo   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	colorSurface = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	colorSlice   = color.RGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}
)

// Options controls the rendered figure.
type Options struct {
	Title      string
	Width      vg.Length
	Height     vg.Length
	DrawSlices bool
}

// DefaultOptions renders an 8x5 inch section with slice outlines.
func DefaultOptions() Options {
	return Options{Width: 8 * vg.Inch, Height: 5 * vg.Inch, DrawSlices: true}
}

// Render writes the cross section to path. The format follows the file
// extension (png, svg, pdf and the other formats gonum/plot saves).
func Render(g *fileio.Globals, res *slices.Result, sr *solve.Result, path string, opt Options) error {
	p := plot.New()
	p.Title.Text = opt.Title
	if p.Title.Text == "" && sr != nil {
		p.Title.Text = fmt.Sprintf("%s  FS = %.3f", sr.Method, sr.FS)
	}
	p.X.Label.Text = "x"
	p.Y.Label.Text = "elevation"

	for i, line := range g.ProfileLines {
		if err := addLine(p, line, colorProfile, vg.Points(0.5), fmt.Sprintf("layer %d", i+1)); err != nil {
			return err
		}
	}
	if len(g.GroundSurface) > 0 {
		if err := addLine(p, g.GroundSurface, colorGround, vg.Points(1.5), "ground"); err != nil {
			return err
		}
	}
	if len(g.PiezoLine) > 0 {
		l, err := newLine(g.PiezoLine, colorPiezo, vg.Points(1))
		if err != nil {
			return err
		}
		l.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(l)
		p.Legend.Add("piezometric", l)
	}

	if res != nil {
		if opt.DrawSlices {
			if err := addSlices(p, g, res); err != nil {
				return err
			}
		}
		if err := addLine(p, res.Surface, colorSurface, vg.Points(2), "failure surface"); err != nil {
			return err
		}
	}

	p.Legend.Top = true
	if err := p.Save(opt.Width, opt.Height, path); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError,
			"failed to save cross section").WithContext("path", path)
	}
	return nil
}

func addLine(p *plot.Plot, line geometry.Polyline, c color.Color, w vg.Length, label string) error {
	l, err := newLine(line, c, w)
	if err != nil {
		return err
	}
	p.Add(l)
	if label != "" {
		p.Legend.Add(label, l)
	}
	return nil
}

func newLine(line geometry.Polyline, c color.Color, w vg.Length) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(line))
	for i, pt := range line {
		pts[i].X, pts[i].Y = pt.X, pt.Y
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, errors.SeverityError,
			"failed to build plot line")
	}
	l.Color = c
	l.Width = w
	return l, nil
}

// addSlices draws each slice as a vertical-sided quadrilateral between the
// failure surface and the ground surface.
func addSlices(p *plot.Plot, g *fileio.Globals, res *slices.Result) error {
	for _, s := range res.Slices {
		xl := s.XMid - s.Width/2
		xr := s.XMid + s.Width/2
		yl, okL := res.Surface.YAt(xl)
		yr, okR := res.Surface.YAt(xr)
		tl, okTL := g.GroundSurface.YAt(xl)
		tr, okTR := g.GroundSurface.YAt(xr)
		if !okL || !okR || !okTL || !okTR {
			continue
		}
		outline := geometry.Polyline{
			{X: xl, Y: yl}, {X: xl, Y: tl}, {X: xr, Y: tr}, {X: xr, Y: yr},
		}
		l, err := newLine(outline, colorSlice, vg.Points(0.5))
		if err != nil {
			return err
		}
		p.Add(l)
	}
	return nil
}
