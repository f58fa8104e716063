package fileio

import (
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/geometry"
)

// Workbook sheet layout constants. The input template arranges repeating data
// blocks at fixed offsets; the loaders scan those offsets rather than the
// whole sheet.
var (
	profileBlocks = []struct{ headerRow, dataStart, dataEnd int }{
		{2, 3, 18},
		{20, 21, 36},
	}
	dloadBlocks     = []struct{ startRow, endRow int }{{3, 13}, {16, 26}}
	dloadCols       = []int{1, 5, 9, 13}
	reinforceBlocks = []struct{ startRow, endRow int }{{3, 13}, {16, 26}, {29, 39}}
	reinforceCols   = []int{1, 6, 11, 16}
)

const profileBlockWidth = 3

// LoadWorkbook reads analysis input from the Excel input workbook.
//
// Validation is enforced to ensure required geometry and material information
// is present:
//   - Circular failure surface: must contain at least one valid row with Xo and Yo
//   - Non-circular failure surface: required if no circular data is provided
//   - Profile lines: at least one valid set, and each line must have >= 2 points
//   - Materials: must match the number of profile lines
//   - Piezometric line: only included if it contains >= 2 valid rows
//   - Distributed loads and reinforcement: each block must contain >= 2 valid entries
func LoadWorkbook(path string) (*Globals, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.InputReadError(path, err)
	}
	defer f.Close()

	g := &Globals{}

	if err := loadStatics(f, g); err != nil {
		return nil, err
	}
	if err := loadProfile(f, g); err != nil {
		return nil, err
	}
	if err := loadMaterials(f, g); err != nil {
		return nil, err
	}
	if err := loadPiezo(f, g); err != nil {
		return nil, err
	}
	if err := loadDLoads(f, g); err != nil {
		return nil, err
	}
	if err := loadCircles(f, g); err != nil {
		return nil, err
	}
	if err := loadNonCirc(f, g); err != nil {
		return nil, err
	}
	if err := loadReinforce(f, g); err != nil {
		return nil, err
	}

	if err := g.finish(); err != nil {
		return nil, err
	}
	return g, nil
}

// loadStatics reads the static globals from the 'main' tab (column D,
// rows 16-19: gamma_water, tcrack_depth, tcrack_water, k_seismic).
func loadStatics(f *excelize.File, g *Globals) error {
	rows, err := f.GetRows("main")
	if err != nil {
		return errors.InputError("main", err.Error())
	}
	vals := make([]float64, 4)
	for i := range vals {
		v, ok := num(rows, 15+i, 3)
		if !ok {
			return errors.InputError("main", "error reading static global values (rows 16-19, column D)")
		}
		vals[i] = v
	}
	g.GammaWater, g.TCrackDepth, g.TCrackWater, g.KSeismic = vals[0], vals[1], vals[2], vals[3]
	return nil
}

func loadProfile(f *excelize.File, g *Globals) error {
	rows, err := f.GetRows("profile")
	if err != nil {
		return errors.InputError("profile", err.Error())
	}
	width := maxWidth(rows)
	for _, block := range profileBlocks {
		for col := 0; col+1 < width; col += profileBlockWidth {
			xHeader := strings.ToLower(strings.TrimSpace(cell(rows, block.headerRow, col)))
			yHeader := strings.ToLower(strings.TrimSpace(cell(rows, block.headerRow, col+1)))
			if xHeader != "x" || yHeader != "y" {
				continue
			}
			var line geometry.Polyline
			for r := block.dataStart; r < block.dataEnd; r++ {
				x, okX := num(rows, r, col)
				y, okY := num(rows, r, col+1)
				if !okX || !okY {
					continue
				}
				line = append(line, geometry.Point{X: x, Y: y})
			}
			if len(line) == 1 {
				return errors.InputError("profile", "each profile line must contain at least two points")
			}
			if len(line) > 0 {
				g.ProfileLines = append(g.ProfileLines, line)
			}
		}
	}
	return nil
}

// loadMaterials parses the 'mat' tab. The header row (row 3) names the
// columns; rows with a blank unit weight or an unknown strength option are
// skipped.
func loadMaterials(f *excelize.File, g *Globals) error {
	rows, err := f.GetRows("mat")
	if err != nil {
		return errors.InputError("mat", err.Error())
	}
	const headerRow = 2
	idx := headerIndex(rows, headerRow)

	for r := headerRow + 1; r < len(rows); r++ {
		gamma, ok := numAt(rows, r, idx, "g")
		if !ok {
			continue
		}
		option := MaterialOption(strings.ToLower(strings.TrimSpace(cellAt(rows, r, idx, "option"))))
		if option != OptionMohrCoulomb && option != OptionCPhiRatio {
			continue
		}
		m := Material{Gamma: gamma, Option: option, Piezo: 1.0}
		if piezo, ok := numAt(rows, r, idx, "piezo"); ok {
			m.Piezo = piezo
		}
		switch option {
		case OptionMohrCoulomb:
			c, okC := numAt(rows, r, idx, "c")
			phi, okPhi := numAt(rows, r, idx, "f")
			if !okC || !okPhi {
				continue
			}
			m.C, m.Phi = c, phi
		case OptionCPhiRatio:
			cp, okCp := numAt(rows, r, idx, "cp")
			rElev, okR := numAt(rows, r, idx, "r-elev")
			if !okCp || !okR {
				continue
			}
			m.Cp, m.RElev = cp, rElev
		}
		m.SigmaGamma, _ = numAt(rows, r, idx, "s(g)")
		m.SigmaC, _ = numAt(rows, r, idx, "s(c)")
		m.SigmaPhi, _ = numAt(rows, r, idx, "s(f)")
		m.SigmaCp, _ = numAt(rows, r, idx, "s(cp)")
		g.Materials = append(g.Materials, m)
	}
	return nil
}

func loadPiezo(f *excelize.File, g *Globals) error {
	rows, err := f.GetRows("piezo")
	if err != nil {
		return errors.InputError("piezo", err.Error())
	}
	var line geometry.Polyline
	for r := 3; r < len(rows); r++ {
		x, okX := num(rows, r, 0)
		y, okY := num(rows, r, 1)
		if !okX || !okY {
			if rowHasData(rows, r) {
				return errors.InputError("piezo", "invalid piezometric line format")
			}
			continue
		}
		line = append(line, geometry.Point{X: x, Y: y})
	}
	if len(line) == 1 {
		return errors.InputError("piezo", "piezometric line must contain at least two points")
	}
	if len(line) >= 2 {
		g.PiezoLine = line
	}
	return nil
}

func loadDLoads(f *excelize.File, g *Globals) error {
	rows, err := f.GetRows("dloads")
	if err != nil {
		return errors.InputError("dloads", err.Error())
	}
	for _, block := range dloadBlocks {
		for _, col := range dloadCols {
			var pts []DLoadPoint
			for r := block.startRow; r < block.endRow; r++ {
				x, okX := num(rows, r, col)
				y, okY := num(rows, r, col+1)
				if !okX || !okY {
					continue
				}
				n, okN := num(rows, r, col+2)
				if !okN {
					return errors.InputError("dloads", "invalid data format in distributed load block")
				}
				pts = append(pts, DLoadPoint{X: x, Y: y, Normal: n})
			}
			if len(pts) == 1 {
				return errors.InputError("dloads", "each distributed load block must contain at least two points")
			}
			if len(pts) >= 2 {
				g.DLoads = append(g.DLoads, pts)
			}
		}
	}
	return nil
}

// loadCircles reads the max depth (cell C2) and the circle table (header row 4).
// Each circle's radius and depth are filled in depending on the circle option.
func loadCircles(f *excelize.File, g *Globals) error {
	rows, err := f.GetRows("circles")
	if err != nil {
		return errors.InputError("circles", err.Error())
	}
	if depth, ok := num(rows, 1, 2); ok {
		g.MaxDepth = depth
	} else {
		g.MaxDepth = math.Inf(-1)
	}

	const headerRow = 3
	idx := headerIndex(rows, headerRow)
	for r := headerRow + 1; r < len(rows); r++ {
		xo, okX := numAt(rows, r, idx, "xo")
		yo, okY := numAt(rows, r, idx, "yo")
		if !okX || !okY {
			continue
		}
		option := strings.TrimSpace(cellAt(rows, r, idx, "option"))
		depth, hasDepth := numAt(rows, r, idx, "depth")
		xi, _ := numAt(rows, r, idx, "xi")
		yi, _ := numAt(rows, r, idx, "yi")
		radius, hasRadius := numAt(rows, r, idx, "r")

		c := geometry.Circle{Xo: xo, Yo: yo}
		switch option {
		case "Depth":
			if !hasDepth {
				return errors.InputError("circles", "circle option 'Depth' requires a Depth value")
			}
			c.Depth = depth
			c.R = yo - depth
		case "Intercept":
			c.R = math.Hypot(xi-xo, yi-yo)
			c.Depth = yo - c.R
		case "Radius":
			if !hasRadius {
				return errors.InputError("circles", "circle option 'Radius' requires an R value")
			}
			c.R = radius
			c.Depth = yo - radius
		default:
			return errors.InputError("circles", "unknown option '"+option+"' for circles")
		}
		g.Circles = append(g.Circles, c)
	}
	return nil
}

func loadNonCirc(f *excelize.File, g *Globals) error {
	rows, err := f.GetRows("non-circ")
	if err != nil {
		return errors.InputError("non-circ", err.Error())
	}
	for r := 2; r < len(rows); r++ {
		x, okX := num(rows, r, 0)
		y, okY := num(rows, r, 1)
		if !okX || !okY {
			continue
		}
		g.NonCirc = append(g.NonCirc, NonCircPoint{
			X:        x,
			Y:        y,
			Movement: strings.TrimSpace(cell(rows, r, 2)),
		})
	}
	return nil
}

func loadReinforce(f *excelize.File, g *Globals) error {
	rows, err := f.GetRows("reinforce")
	if err != nil {
		return errors.InputError("reinforce", err.Error())
	}
	for _, block := range reinforceBlocks {
		for _, col := range reinforceCols {
			var pts []ReinforcePoint
			for r := block.startRow; r < block.endRow; r++ {
				x, okX := num(rows, r, col)
				y, okY := num(rows, r, col+1)
				if !okX || !okY {
					continue
				}
				fl, okFL := num(rows, r, col+2)
				ft, okFT := num(rows, r, col+3)
				if !okFL || !okFT {
					return errors.InputError("reinforce", "invalid data format in reinforcement block")
				}
				pts = append(pts, ReinforcePoint{X: x, Y: y, FL: fl, FT: ft})
			}
			if len(pts) == 1 {
				return errors.InputError("reinforce", "each reinforcement line must contain at least two points")
			}
			if len(pts) >= 2 {
				g.ReinforceLines = append(g.ReinforceLines, pts)
			}
		}
	}
	return nil
}

// Cell access helpers. GetRows trims trailing empty cells, so every access
// must be bounds-checked.

func cell(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) || c < 0 || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

func num(rows [][]string, r, c int) (float64, bool) {
	s := strings.TrimSpace(cell(rows, r, c))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func rowHasData(rows [][]string, r int) bool {
	if r < 0 || r >= len(rows) {
		return false
	}
	for _, s := range rows[r] {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

func maxWidth(rows [][]string) int {
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// headerIndex maps lower-cased header names in the given row to their column.
func headerIndex(rows [][]string, headerRow int) map[string]int {
	idx := make(map[string]int)
	if headerRow >= len(rows) {
		return idx
	}
	for c, name := range rows[headerRow] {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			if _, dup := idx[name]; !dup {
				idx[name] = c
			}
		}
	}
	return idx
}

func cellAt(rows [][]string, r int, idx map[string]int, name string) string {
	c, ok := idx[name]
	if !ok {
		return ""
	}
	return cell(rows, r, c)
}

func numAt(rows [][]string, r int, idx map[string]int, name string) (float64, bool) {
	c, ok := idx[name]
	if !ok {
		return 0, false
	}
	return num(rows, r, c)
}
