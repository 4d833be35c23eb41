package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// fit.go: ajuste polinómico por mínimos cuadrados.
//
// La matriz de Vandermonde se construye sobre t = (x - centro) / semirrango,
// con t ∈ [-1, 1]; con x hasta ~1000 y grado 3 la matriz en x crudo queda
// mal condicionada para QR.

const (
	MaxFitDegree  = 3
	MinFitSamples = 3
	SmoothPoints  = 200
)

// ErrDegenerateFit indica que el sistema no tiene solución estable
// (todas las x iguales, muy pocas muestras o coeficientes no finitos).
var ErrDegenerateFit = errors.New("degenerate polynomial fit")

// Degree devuelve el grado del ajuste para n muestras: min(3, n-1).
func Degree(n int) int {
	return max(0, min(MaxFitDegree, n-1))
}

// Polynomial es un polinomio en la variable escalada t = (x - center) / scale.
type Polynomial struct {
	Coeffs []float64 // ascendentes: c0 + c1·t + c2·t² ...
	center float64
	scale  float64
}

// Degree devuelve el grado del polinomio.
func (p Polynomial) Degree() int {
	return len(p.Coeffs) - 1
}

// Eval evalúa el polinomio en x (Horner).
func (p Polynomial) Eval(x float64) float64 {
	t := (x - p.center) / p.scale
	y := 0.0
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		y = y*t + p.Coeffs[i]
	}
	return y
}

// PolyFit ajusta por mínimos cuadrados (QR) el polinomio de grado dado que mapea x→y.
func PolyFit(xs, ys []float64, degree int) (Polynomial, error) {
	n := len(xs)
	if n != len(ys) {
		return Polynomial{}, fmt.Errorf("domain.PolyFit: %d xs vs %d ys", n, len(ys))
	}
	if degree < 0 || n < degree+1 {
		return Polynomial{}, fmt.Errorf("domain.PolyFit: %d samples for degree %d: %w", n, degree, ErrDegenerateFit)
	}

	lo, hi := floats.Min(xs), floats.Max(xs)
	center, scale := (lo+hi)/2, (hi-lo)/2
	if scale == 0 {
		if degree > 0 {
			return Polynomial{}, fmt.Errorf("domain.PolyFit: all x equal to %g: %w", lo, ErrDegenerateFit)
		}
		scale = 1
	}

	cols := degree + 1
	a := mat.NewDense(n, cols, nil)
	for i, x := range xs {
		t := (x - center) / scale
		v := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, v)
			v *= t
		}
	}

	var qr mat.QR
	qr.Factorize(a)

	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, mat.NewVecDense(n, slices.Clone(ys))); err != nil {
		return Polynomial{}, fmt.Errorf("domain.PolyFit: solve: %w", errors.Join(ErrDegenerateFit, err))
	}

	coeffs := make([]float64, cols)
	for j := range coeffs {
		c := sol.AtVec(j)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return Polynomial{}, fmt.Errorf("domain.PolyFit: non-finite coefficient %d: %w", j, ErrDegenerateFit)
		}
		coeffs[j] = c
	}

	return Polynomial{Coeffs: coeffs, center: center, scale: scale}, nil
}

// FitCurve ajusta las coordenadas de las muestras y evalúa la curva en
// `points` x equiespaciadas sobre [min x, max x], ambos extremos incluidos.
//
// Devuelve false (sin curva) con menos de MinFitSamples muestras o si el ajuste
// es degenerado. No es un error: la trayectoria sigue siendo válida.
func FitCurve(xs, ys []float64, points int) (FittedCurve, bool) {
	if len(xs) < MinFitSamples || len(xs) != len(ys) {
		return FittedCurve{}, false
	}
	if points < 2 {
		points = SmoothPoints
	}

	poly, err := PolyFit(xs, ys, Degree(len(xs)))
	if err != nil {
		return FittedCurve{}, false
	}

	lo, hi := floats.Min(xs), floats.Max(xs)
	xSmooth := floats.Span(make([]float64, points), lo, hi)
	// Span calcula lo + step*i; el último punto puede quedar 1 ulp por debajo.
	xSmooth[points-1] = hi
	ySmooth := make([]float64, points)
	for i, x := range xSmooth {
		ySmooth[i] = poly.Eval(x)
	}

	return FittedCurve{XSmooth: xSmooth, YSmooth: ySmooth, Degree: poly.Degree()}, true
}
