package solve

import (
	"fmt"
	"math"

	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/slices"
)

// Method identifies a limit equilibrium method.
type Method string

const (
	MethodOMS              Method = "oms"
	MethodBishop           Method = "bishop"
	MethodJanbu            Method = "janbu"
	MethodJanbuCorrected   Method = "janbu-corrected"
	MethodSpencer          Method = "spencer"
	MethodSpencerMoment    Method = "spencer-moment"
	MethodMorgensternPrice Method = "morgenstern-price"
)

// Methods lists all supported methods in presentation order.
func Methods() []Method {
	return []Method{
		MethodOMS, MethodBishop, MethodJanbu, MethodJanbuCorrected,
		MethodSpencer, MethodSpencerMoment, MethodMorgensternPrice,
	}
}

// ParseMethod validates a method name.
func ParseMethod(name string) (Method, error) {
	m := Method(name)
	for _, known := range Methods() {
		if m == known {
			return m, nil
		}
	}
	return "", errors.New(errors.CategorySolve, errors.SeverityFatal, "unknown method").
		WithContext("method", name)
}

// Result is the unified outcome of one solver run.
type Result struct {
	Method    Method  `json:"method"`
	FS        float64 `json:"fs"`
	Beta      float64 `json:"beta,omitempty"`   // inter-slice inclination, degrees
	Lambda    float64 `json:"lambda,omitempty"` // inter-slice force ratio
	Converged bool    `json:"converged"`
	Slices    int     `json:"slices"`
}

func (r Result) String() string {
	switch r.Method {
	case MethodSpencer, MethodSpencerMoment:
		return fmt.Sprintf("%s: FS=%.3f, beta=%.2f", r.Method, r.FS, r.Beta)
	case MethodJanbuCorrected, MethodMorgensternPrice:
		return fmt.Sprintf("%s: FS=%.3f, lambda=%.3f", r.Method, r.FS, r.Lambda)
	default:
		return fmt.Sprintf("%s: FS=%.3f", r.Method, r.FS)
	}
}

// Run dispatches to the selected method. Circular-only methods reject
// non-circular slice tables.
func Run(method Method, res *slices.Result, circular bool, opt Options) (Result, error) {
	sl := res.Slices
	out := Result{Method: method, Slices: len(sl), Converged: true}

	switch method {
	case MethodOMS:
		if !circular {
			return out, circularOnly(method)
		}
		out.FS, _ = OMS(sl)
	case MethodBishop:
		if !circular {
			return out, circularOnly(method)
		}
		out.FS, _, out.Converged = Bishop(sl, opt)
	case MethodJanbu:
		out.FS = JanbuSimplified(sl, opt)
	case MethodJanbuCorrected:
		out.FS, out.Lambda, out.Converged = JanbuCorrected(sl, opt)
	case MethodSpencer:
		if !circular {
			return out, circularOnly(method)
		}
		out.FS, out.Beta = Spencer(sl, opt)
	case MethodSpencerMoment:
		out.FS, out.Beta = SpencerMoment(sl, DefaultBetaBounds(), opt)
	case MethodMorgensternPrice:
		out.FS, out.Lambda, out.Converged = MorgensternPrice(sl, nil, opt)
	default:
		return out, errors.New(errors.CategorySolve, errors.SeverityFatal, "unknown method").
			WithContext("method", string(method))
	}

	if math.IsNaN(out.FS) {
		return out, errors.SolveError(string(method), fmt.Errorf("factor of safety is NaN"))
	}
	return out, nil
}

func circularOnly(method Method) error {
	return errors.New(errors.CategorySolve, errors.SeverityFatal, "method requires a circular failure surface").
		WithContext("method", string(method))
}
