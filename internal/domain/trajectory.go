package domain

import "time"

// Point es una muestra (x, y) de la trayectoria.
type Point struct {
	X float64
	Y float64
}

// Trajectory es el resultado de una simulación. Solo lectura una vez finalizada.
//
// Samples arranca con el origen y VYHistory con vy0, así que ambas secuencias
// tienen siempre la misma longitud (una entrada más por tick).
type Trajectory struct {
	Params    Params
	Samples   []Point
	VYHistory []float64
	FinalVX   float64
	Rules     []Rule // Rules[i] = regla aplicada en el tick i+1; vacío en el modelo drift
	Ticks     int
	Elapsed   float64
}

// Xs devuelve las coordenadas x de las muestras.
func (t Trajectory) Xs() []float64 {
	xs := make([]float64, len(t.Samples))
	for i, p := range t.Samples {
		xs[i] = p.X
	}
	return xs
}

// Ys devuelve las coordenadas y de las muestras.
func (t Trajectory) Ys() []float64 {
	ys := make([]float64, len(t.Samples))
	for i, p := range t.Samples {
		ys[i] = p.Y
	}
	return ys
}

// RuleCounts cuenta cuántas veces se aplicó cada regla.
func (t Trajectory) RuleCounts() map[Rule]int {
	counts := make(map[Rule]int, len(t.Rules))
	for _, r := range t.Rules {
		counts[r]++
	}
	return counts
}

// FittedCurve es la aproximación polinómica evaluada en una rejilla uniforme de x.
type FittedCurve struct {
	XSmooth []float64
	YSmooth []float64
	Degree  int
}

// Path es lo que consume el renderer: trayectoria, curva opcional y score normalizado.
type Path struct {
	Trajectory Trajectory
	Curve      *FittedCurve // nil si el ajuste se omitió
	RawScore   float64
	Score      float64 // normalizado a [0, 1] sobre todo el lote
}

// Fitted indica si la trayectoria tiene curva para dibujar.
func (p Path) Fitted() bool {
	return p.Curve != nil
}

// Run es un lote completo ya puntuado, tal como se archiva.
type Run struct {
	ID        string
	CreatedAt time.Time
	Model     Model
	Sim       SimConfig
	Paths     []Path
}

// RunSummary es la fila ligera que devuelve el listado de ejecuciones.
type RunSummary struct {
	ID        string
	CreatedAt time.Time
	Model     Model
	Paths     int
	Fitted    int
	BestRaw   float64
}

// Summarize calcula el resumen de un lote.
func (r Run) Summarize() RunSummary {
	s := RunSummary{ID: r.ID, CreatedAt: r.CreatedAt, Model: r.Model, Paths: len(r.Paths)}
	for i, p := range r.Paths {
		if p.Fitted() {
			s.Fitted++
		}
		if i == 0 || p.RawScore > s.BestRaw {
			s.BestRaw = p.RawScore
		}
	}
	return s
}
