package domain

// SweepSpec describe los conjuntos discretos del barrido de parámetros.
type SweepSpec struct {
	Heights      []float64
	Widths       []float64
	OpacitySteps int // índices 0..OpacitySteps-1
}

// DefaultSweep devuelve los conjuntos de referencia: 4 alturas × 6 anchos × 5 opacidades.
func DefaultSweep() SweepSpec {
	return SweepSpec{
		Heights:      []float64{20, 30, 40, 50},
		Widths:       []float64{20, 30, 40, 50, 60, 70},
		OpacitySteps: 5,
	}
}

// OpacityFor devuelve la opacidad del índice dado: index*10 + 10 → 10, 20, 30...
func OpacityFor(index int) float64 {
	return float64(index*10 + 10)
}

// Size devuelve cuántas tuplas produce el barrido.
func (s SweepSpec) Size() int {
	if s.OpacitySteps <= 0 {
		return 0
	}
	return s.OpacitySteps * len(s.Heights) * len(s.Widths)
}

// Sweep enumera el producto cartesiano opacidad × altura × ancho.
// El orden es estable (opacidad fuera, ancho dentro) para que el render sea reproducible.
func Sweep(spec SweepSpec) []Params {
	out := make([]Params, 0, spec.Size())
	for op := 0; op < spec.OpacitySteps; op++ {
		o := OpacityFor(op)
		for _, h := range spec.Heights {
			for _, w := range spec.Widths {
				out = append(out, Params{Height: h, Width: w, Opacity: o})
			}
		}
	}
	return out
}
