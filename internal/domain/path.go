package domain

// Assemble ajusta y puntúa las trayectorias de un lote, preservando su orden.
// Las trayectorias sin curva se conservan con Curve == nil.
func Assemble(trajectories []Trajectory, smoothPoints int) []Path {
	paths := make([]Path, len(trajectories))
	raw := make([]float64, len(trajectories))

	for i, t := range trajectories {
		paths[i].Trajectory = t
		if curve, ok := FitCurve(t.Xs(), t.Ys(), smoothPoints); ok {
			paths[i].Curve = &curve
		}
		raw[i] = SpeedScore(t)
		paths[i].RawScore = raw[i]
	}

	for i, s := range NormalizeScores(raw) {
		paths[i].Score = s
	}
	return paths
}
