package solve

import (
	"math"

	"github.com/geostab/slopekit/internal/slices"
)

// Spencer computes the factor of safety using Spencer's Method on circular
// failure surfaces, iterating on the factor of safety and the inter-slice
// force inclination. For non-circular surfaces use SpencerMoment. Returns the
// factor of safety and the inclination angle in degrees.
func Spencer(sl []slices.Slice, opt Options) (float64, float64) {
	opt = opt.normalized()

	f := 1.0
	beta := 0.0
	for iter := 0; iter < opt.MaxIter; iter++ {
		sinB, cosB := math.Sin(beta), math.Cos(beta)

		var num, den float64
		perSlice := make([]float64, len(sl))
		for i, s := range sl {
			alpha := radians(s.Alpha)
			sinA, cosA := math.Sin(alpha), math.Cos(alpha)
			tanPhi := math.Tan(radians(s.Phi))

			n := s.C*s.DL*cosB + (s.W-s.U*s.DL)*(cosA*cosB-sinA*sinB)*tanPhi
			perSlice[i] = n
			num += n
			den += s.W*sinA - s.ShearReinf
		}
		fNew := num / den

		// Update beta from the ratio of residual horizontal and vertical
		// forces, averaged across slices.
		var sinBetaSum float64
		for i, s := range sl {
			alpha := radians(s.Alpha)
			sinA := math.Sin(alpha)
			tanPhi := math.Tan(radians(s.Phi))
			sinBetaSum += (s.W*sinA - perSlice[i]/fNew*sinA*tanPhi) / s.W
		}
		mean := sinBetaSum / float64(len(sl))
		betaNew := math.Asin(clamp(mean, -1.0, 1.0))

		if math.Abs(fNew-f) < opt.Tol && math.Abs(betaNew-beta) < opt.Tol {
			return fNew, degrees(betaNew)
		}
		f, beta = fNew, betaNew
	}
	return f, degrees(beta)
}

// BetaBounds is the inclination search range for SpencerMoment, in degrees.
type BetaBounds struct {
	Lo float64
	Hi float64
}

// DefaultBetaBounds matches the historical sweep range.
func DefaultBetaBounds() BetaBounds { return BetaBounds{Lo: -60, Hi: 60} }

// SpencerMoment implements Spencer's Method in its force/moment form: it
// sweeps the inter-slice inclination, solves the factor of safety from force
// equilibrium and from moment equilibrium independently, and returns the
// inclination where both agree. Valid for non-circular surfaces. Returns the
// factor of safety and the inclination in degrees.
func SpencerMoment(sl []slices.Slice, bounds BetaBounds, opt Options) (float64, float64) {
	opt = opt.normalized()

	fsForce := func(betaRad float64) float64 {
		sinB, cosB := math.Sin(betaRad), math.Cos(betaRad)
		f := 1.0
		for iter := 0; iter < opt.MaxIter; iter++ {
			var num, den float64
			for _, s := range sl {
				alpha := radians(s.Alpha)
				sinA, cosA := math.Sin(alpha), math.Cos(alpha)
				tanPhi := math.Tan(radians(s.Phi))

				n := s.W*cosA - s.U*s.DL*cosA*cosA + s.NormalReinf
				num += s.C*s.DL*cosB + n*(cosA*cosB-sinA*sinB)*tanPhi
				den += s.W*sinA - s.ShearReinf
			}
			fNew := num / den
			if math.Abs(fNew-f) < opt.Tol {
				return fNew
			}
			f = fNew
		}
		return f
	}

	fsMoment := func(betaRad float64) float64 {
		f := 1.0
		for iter := 0; iter < opt.MaxIter; iter++ {
			var resist, drive float64
			for _, s := range sl {
				alpha := radians(s.Alpha)
				cosA := math.Cos(alpha)
				tanPhi := math.Tan(radians(s.Phi))

				n := s.W*cosA - s.U*s.DL*cosA*cosA + s.NormalReinf
				shear := s.C*s.DL + n*tanPhi/f
				resist += shear * s.YArm
				drive += s.W * s.XArm
			}
			fNew := resist / drive
			if math.Abs(fNew-f) < opt.Tol {
				return fNew
			}
			f = fNew
		}
		return f
	}

	diff := func(betaDeg float64) float64 {
		betaRad := radians(betaDeg)
		return math.Abs(fsForce(betaRad) - fsMoment(betaRad))
	}

	betaDeg := minimizeScalar(diff, bounds.Lo, bounds.Hi, opt.Tol)
	return fsForce(radians(betaDeg)), betaDeg
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// invphi = 1/phi for golden-section search.
const invphi = 0.6180339887498949

// minimizeScalar finds the minimizer of f on [lo, hi] by golden-section
// search with absolute tolerance tol on x.
func minimizeScalar(f func(float64) float64, lo, hi, tol float64) float64 {
	a, b := lo, hi
	c := b - (b-a)*invphi
	d := a + (b-a)*invphi
	fc, fd := f(c), f(d)
	for b-a > tol {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - (b-a)*invphi
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + (b-a)*invphi
			fd = f(d)
		}
	}
	return (a + b) / 2
}
