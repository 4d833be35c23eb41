package domain

import "gonum.org/v1/gonum/floats"

// ScoreWindow es el número de entradas iniciales de VYHistory que entran en el score.
const ScoreWindow = 5

// SpeedScore calcula el score de velocidad temprana de una trayectoria.
//
// Fórmula: S = Σ_{i < min(5, len)} (vx_final + vy[i]) / 10
//   - vx_final: vx al salir del bucle (no la inicial)
//   - vy[i]: historial de vy, empezando por vy0
func SpeedScore(t Trajectory) float64 {
	n := min(ScoreWindow, len(t.VYHistory))
	s := 0.0
	for i := 0; i < n; i++ {
		s += t.FinalVX + t.VYHistory[i]
	}
	return s / 10
}

// NormalizeScores aplica min-max sobre todo el lote.
// Si todos los scores son iguales el rango se fija en 1.0, así que todos valen 0.
func NormalizeScores(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	lo, hi := floats.Min(scores), floats.Max(scores)
	span := hi - lo
	if hi == lo {
		span = 1.0
	}

	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = (s - lo) / span
	}
	return out
}
