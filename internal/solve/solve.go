// Package solve implements the limit equilibrium methods: the Ordinary Method
// of Slices, Bishop's Simplified Method, Janbu's simplified and corrected
// methods, Spencer's Method (iterative and force/moment sweep forms), and the
// Morgenstern-Price Method. All iterative solvers share tolerance and
// iteration limits and report convergence explicitly.
package solve

import (
	"math"

	"github.com/geostab/slopekit/internal/slices"
)

// Options controls the iterative solvers.
type Options struct {
	Tol     float64
	MaxIter int
}

// DefaultOptions matches the historical solver defaults.
func DefaultOptions() Options {
	return Options{Tol: 1e-6, MaxIter: 100}
}

func (o Options) normalized() Options {
	if o.Tol <= 0 {
		o.Tol = 1e-6
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 100
	}
	return o
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// OMS computes the factor of safety using the Ordinary Method of Slices.
// This method works on circular failure surfaces only. It returns the factor
// of safety and the normal force on the base of each slice. A zero driving
// sum yields +Inf.
func OMS(sl []slices.Slice) (float64, []float64) {
	normals := make([]float64, len(sl))
	var num, den float64
	for i, s := range sl {
		alpha := radians(s.Alpha)
		cosA := math.Cos(alpha)
		sinA := math.Sin(alpha)
		n := s.W*cosA - s.U*s.DL*cosA*cosA + s.NormalReinf
		normals[i] = n
		num += s.C*s.DL + n*math.Tan(radians(s.Phi))
		den += s.W*sinA - s.ShearReinf
	}
	if den == 0 {
		return math.Inf(1), normals
	}
	return num / den, normals
}

// Bishop computes the factor of safety using Bishop's Simplified Method.
// This method works on circular failure surfaces only. It iterates on the
// factor of safety until convergence is achieved, returning the factor of
// safety, the base normal forces, and whether the iteration converged.
func Bishop(sl []slices.Slice, opt Options) (float64, []float64, bool) {
	opt = opt.normalized()

	n := len(sl)
	normals := make([]float64, n)
	num := make([]float64, n)
	cosA := make([]float64, n)
	sinA := make([]float64, n)
	tanPhi := make([]float64, n)

	var den float64
	for i, s := range sl {
		alpha := radians(s.Alpha)
		cosA[i] = math.Cos(alpha)
		sinA[i] = math.Sin(alpha)
		tanPhi[i] = math.Tan(radians(s.Phi))
		normals[i] = s.W*cosA[i] - s.U*s.DL*cosA[i]*cosA[i] + s.NormalReinf
		num[i] = s.C*s.DL + normals[i]*tanPhi[i]
		den += s.W*sinA[i] - s.ShearReinf
	}

	fGuess := 1.0
	fCalc := fGuess
	converged := false
	for iter := 0; iter < opt.MaxIter; iter++ {
		var sum float64
		for i := range sl {
			m := cosA[i] + sinA[i]*tanPhi[i]/fGuess
			sum += num[i] / m
		}
		fCalc = sum / den
		if math.Abs(fCalc-fGuess) < opt.Tol {
			converged = true
			break
		}
		fGuess = fCalc
	}
	return fCalc, normals, converged
}

// JanbuSimplified computes the factor of safety using Janbu's Simplified
// Method. Force equilibrium only; valid for circular and non-circular
// surfaces.
func JanbuSimplified(sl []slices.Slice, opt Options) float64 {
	opt = opt.normalized()

	f := 1.0
	for iter := 0; iter < opt.MaxIter; iter++ {
		var sSum, tSum float64
		for _, s := range sl {
			alpha := radians(s.Alpha)
			n := s.W*math.Cos(alpha) + s.NormalReinf
			sSum += s.C*s.DL + (n-s.U*s.DL)*math.Tan(radians(s.Phi))/f
			tSum += s.W*math.Sin(alpha) - s.ShearReinf
		}
		fNew := sSum / tSum
		if math.Abs(fNew-f) < opt.Tol {
			return fNew
		}
		f = fNew
	}
	return f
}

// JanbuCorrected computes the factor of safety using Janbu's Corrected
// Method, iterating on the factor of safety and the horizontal force ratio
// lambda. Valid for circular and non-circular surfaces.
func JanbuCorrected(sl []slices.Slice, opt Options) (float64, float64, bool) {
	opt = opt.normalized()

	f := 1.0
	lambda := 0.0
	converged := false
	for iter := 0; iter < opt.MaxIter; iter++ {
		var rSum, tSum, rSin, rCos float64
		for _, s := range sl {
			alpha := radians(s.Alpha)
			sinA, cosA := math.Sin(alpha), math.Cos(alpha)
			tanPhi := math.Tan(radians(s.Phi))

			m := 1 + lambda*tanPhi/f
			n := s.W*cosA + s.NormalReinf
			shear := s.C*s.DL + (n-s.U*s.DL)*tanPhi/f
			r := shear / m

			rSum += r
			tSum += s.W*sinA - s.ShearReinf
			rSin += r * sinA
			rCos += r * cosA
		}
		fNew := rSum / tSum
		lambdaNew := rSin / rCos

		if math.Abs(fNew-f) < opt.Tol && math.Abs(lambdaNew-lambda) < opt.Tol {
			f, lambda = fNew, lambdaNew
			converged = true
			break
		}
		f, lambda = fNew, lambdaNew
	}
	return f, lambda, converged
}

// MorgensternPrice computes the factor of safety using the Morgenstern-Price
// Method. psi defines the inter-slice force function over x normalized to
// [0, 1] across slices; nil selects the constant function. Valid for circular
// and non-circular surfaces. Returns the factor of safety, the inter-slice
// force ratio lambda, and whether the iteration converged.
func MorgensternPrice(sl []slices.Slice, psi func(float64) float64, opt Options) (float64, float64, bool) {
	opt = opt.normalized()
	if psi == nil {
		psi = func(float64) float64 { return 1.0 }
	}

	n := len(sl)
	psiVals := make([]float64, n)
	for i := range psiVals {
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1)
		}
		psiVals[i] = psi(x)
	}

	f := 1.0
	lam := 0.0
	converged := false
	for iter := 0; iter < opt.MaxIter; iter++ {
		var rSum, tSum, num, den float64
		for i, s := range sl {
			alpha := radians(s.Alpha)
			sinA, cosA := math.Sin(alpha), math.Cos(alpha)
			tanPhi := math.Tan(radians(s.Phi))

			m := 1 + lam*psiVals[i]*tanPhi/f
			nForce := s.W*cosA + s.NormalReinf
			shear := s.C*s.DL + (nForce-s.U*s.DL)*tanPhi/f
			r := shear / m

			rSum += r
			tSum += s.W*sinA - s.ShearReinf
			num += r * psiVals[i] * sinA
			den += r * psiVals[i] * cosA
		}
		fNew := rSum / tSum
		lamNew := 0.0
		if den != 0 {
			lamNew = num / den
		}

		if math.Abs(fNew-f) < opt.Tol && math.Abs(lamNew-lam) < opt.Tol {
			f, lam = fNew, lamNew
			converged = true
			break
		}
		f, lam = fNew, lamNew
	}
	return f, lam, converged
}

// HalfSine is the half-sine inter-slice force function for Morgenstern-Price.
func HalfSine(x float64) float64 { return math.Sin(math.Pi * x) }
