package fileio

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/geometry"
)

// yamlInput is the YAML wire form of Globals. Coordinates are [x, y] pairs.
type yamlInput struct {
	GammaWater  float64  `yaml:"gamma_water"`
	TCrackDepth float64  `yaml:"tcrack_depth"`
	TCrackWater float64  `yaml:"tcrack_water"`
	KSeismic    float64  `yaml:"k_seismic"`
	MaxDepth    *float64 `yaml:"max_depth,omitempty"`

	ProfileLines []coordList `yaml:"profile_lines"`
	Materials    []Material  `yaml:"materials"`
	PiezoLine    coordList   `yaml:"piezo_line,omitempty"`

	Circles        []yamlCircle       `yaml:"circles,omitempty"`
	NonCirc        []NonCircPoint     `yaml:"non_circ,omitempty"`
	DLoads         [][]DLoadPoint     `yaml:"dloads,omitempty"`
	ReinforceLines [][]ReinforcePoint `yaml:"reinforce_lines,omitempty"`
}

// yamlCircle mirrors the workbook circle row: the option decides which of
// Depth, Xi/Yi, or R defines the circle.
type yamlCircle struct {
	Xo     float64 `yaml:"xo"`
	Yo     float64 `yaml:"yo"`
	Option string  `yaml:"option"`
	Depth  float64 `yaml:"depth,omitempty"`
	Xi     float64 `yaml:"xi,omitempty"`
	Yi     float64 `yaml:"yi,omitempty"`
	R      float64 `yaml:"r,omitempty"`
}

type coordList []geometry.Point

func (c *coordList) UnmarshalYAML(value *yaml.Node) error {
	var raw [][]float64
	if err := value.Decode(&raw); err != nil {
		return err
	}
	pts := make([]geometry.Point, 0, len(raw))
	for _, pair := range raw {
		if len(pair) != 2 {
			return errors.InputError("yaml", "coordinates must be [x, y] pairs")
		}
		pts = append(pts, geometry.Point{X: pair[0], Y: pair[1]})
	}
	*c = pts
	return nil
}

// LoadYAML reads analysis input from a YAML document. The same validation
// rules as the workbook loader apply.
func LoadYAML(path string) (*Globals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InputReadError(path, err)
	}
	var in yamlInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInput, errors.SeverityFatal, "failed to unmarshal input document").
			WithContext("path", path)
	}

	g := &Globals{
		GammaWater:     in.GammaWater,
		TCrackDepth:    in.TCrackDepth,
		TCrackWater:    in.TCrackWater,
		KSeismic:       in.KSeismic,
		Materials:      in.Materials,
		PiezoLine:      geometry.Polyline(in.PiezoLine),
		NonCirc:        in.NonCirc,
		DLoads:         in.DLoads,
		ReinforceLines: in.ReinforceLines,
	}
	if in.MaxDepth != nil {
		g.MaxDepth = *in.MaxDepth
	} else {
		g.MaxDepth = math.Inf(-1)
	}
	for _, line := range in.ProfileLines {
		g.ProfileLines = append(g.ProfileLines, geometry.Polyline(line))
	}
	for i := range g.Materials {
		if g.Materials[i].Piezo == 0 {
			g.Materials[i].Piezo = 1.0
		}
	}
	for _, yc := range in.Circles {
		c := geometry.Circle{Xo: yc.Xo, Yo: yc.Yo}
		switch yc.Option {
		case "Depth":
			c.Depth = yc.Depth
			c.R = yc.Yo - yc.Depth
		case "Intercept":
			c.R = math.Hypot(yc.Xi-yc.Xo, yc.Yi-yc.Yo)
			c.Depth = yc.Yo - c.R
		case "Radius":
			c.R = yc.R
			c.Depth = yc.Yo - yc.R
		default:
			return nil, errors.InputError("circles", "unknown option '"+yc.Option+"' for circles")
		}
		g.Circles = append(g.Circles, c)
	}

	if err := g.finish(); err != nil {
		return nil, err
	}
	return g, nil
}

// Load dispatches on the file extension: .xlsx/.xlsm to the workbook loader,
// everything else to the YAML loader.
func Load(path string) (*Globals, error) {
	switch ext(path) {
	case ".xlsx", ".xlsm":
		return LoadWorkbook(path)
	default:
		return LoadYAML(path)
	}
}

func ext(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}
