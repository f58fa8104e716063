package solve

import (
	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/fileio"
	"github.com/geostab/slopekit/internal/geometry"
	"github.com/geostab/slopekit/internal/slices"
)

// DrawdownResult reports the staged rapid drawdown analysis.
type DrawdownResult struct {
	PreDrawdown  Result `json:"pre_drawdown"`
	PostDrawdown Result `json:"post_drawdown"`
	// Governing is the lower of the two stage factors of safety.
	Governing float64 `json:"governing"`
}

// RapidDrawdown runs the staged rapid drawdown analysis on a circular
// surface: stage one under the pre-drawdown piezometric line, stage two with
// the pool lowered to the given line. Materials using the undrained strength
// ratio keep their undrained strengths through both stages; the governing
// factor of safety is the minimum.
func RapidDrawdown(g *fileio.Globals, circle geometry.Circle, lowered geometry.Polyline, n int, opt Options) (*DrawdownResult, error) {
	if len(lowered) < 2 {
		return nil, errors.InputError("drawdown", "lowered piezometric line must contain at least two points")
	}

	stage := func(piezo geometry.Polyline, method Method) (Result, error) {
		staged := *g
		staged.PiezoLine = piezo
		res, err := slices.Generate(&staged, &circle, n)
		if err != nil {
			return Result{}, err
		}
		return Run(method, res, true, opt)
	}

	pre, err := stage(g.PiezoLine, MethodBishop)
	if err != nil {
		return nil, err
	}
	post, err := stage(lowered, MethodBishop)
	if err != nil {
		return nil, err
	}

	out := &DrawdownResult{PreDrawdown: pre, PostDrawdown: post, Governing: pre.FS}
	if post.FS < out.Governing {
		out.Governing = post.FS
	}
	return out, nil
}
