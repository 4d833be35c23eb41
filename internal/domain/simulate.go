package domain

import "fmt"

// SimConfig contiene las constantes de integración, resueltas una vez por lote.
type SimConfig struct {
	TimeStep float64 // duración de un tick
	MaxTime  float64
	BoundX   float64
	BoundY   float64
}

// DefaultSimConfig devuelve el área de juego 1000×600 con ticks de 0.2 hasta 3.0.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		TimeStep: 0.2,
		MaxTime:  3.0,
		BoundX:   1000,
		BoundY:   600,
	}
}

// MaxTicks devuelve el número máximo de ticks antes de agotar MaxTime.
func (c SimConfig) MaxTicks() int {
	if c.TimeStep <= 0 {
		return 0
	}
	n := 0
	for c.elapsed(n) < c.MaxTime {
		n++
	}
	return n
}

// elapsed se calcula desde el contador de ticks para no acumular error de redondeo.
func (c SimConfig) elapsed(ticks int) float64 {
	return float64(ticks) * c.TimeStep
}

// done evalúa la condición de parada al principio de cada iteración.
func (c SimConfig) done(s State) bool {
	return s.X >= c.BoundX || s.Y >= c.BoundY || c.elapsed(s.Tick) >= c.MaxTime
}

// Model selecciona la dinámica de la simulación.
type Model string

const (
	ModelBranching Model = "branching"
	ModelDrift     Model = "drift"
)

// Simulator integra una tupla de parámetros hasta la condición de parada.
type Simulator func(p Params, cfg SimConfig) Trajectory

// SimulatorFor devuelve el simulador del modelo dado. Vacío equivale a branching.
func SimulatorFor(m Model) (Simulator, error) {
	switch m {
	case ModelBranching, "":
		return Simulate, nil
	case ModelDrift:
		return SimulateDrift, nil
	default:
		return nil, fmt.Errorf("domain.SimulatorFor: unknown model %q", m)
	}
}

// InitialState calcula velocidades e incrementos base del modelo branching.
//
//	vx0 = 600 - 2o - area/10
//	vy0 = 480 - o²/10 - h - w + 2·vx0/o
//	yi0 = 120 - 2o,  xi0 = -5
func InitialState(p Params) State {
	o := p.Opacity
	vx := 600 - 2*o - p.Area()/10
	vy := 480 - o*o/10 - p.Height - p.Width + 2*vx/o
	return State{
		VX: vx,
		VY: vy,
		XI: -5.0,
		YI: 120 - 2*o,
	}
}

// Step avanza un tick: desplaza la posición con la velocidad actual y aplica
// la regla de aceleración que corresponda.
func Step(s *State, p Params, cfg SimConfig) Rule {
	perUnit := 1 / cfg.TimeStep
	s.X += s.VX / perUnit
	s.Y += s.VY / perUnit
	rule := ApplyRule(s, p)
	s.Tick++
	return rule
}

// Simulate ejecuta el modelo branching para una tupla.
// La muestra que cruza el borde se registra antes de que el bucle termine.
func Simulate(p Params, cfg SimConfig) Trajectory {
	s := InitialState(p)
	t := newTrajectory(p, s, cfg)

	for !cfg.done(s) {
		rule := Step(&s, p, cfg)
		t.Samples = append(t.Samples, Point{X: s.X, Y: s.Y})
		t.VYHistory = append(t.VYHistory, s.VY)
		t.Rules = append(t.Rules, rule)
	}

	return finish(t, s, cfg)
}

// SimulateDrift es el primer borrador del modelo: vx constante y un incremento
// vertical fijo yi = 60 - o, sin reglas.
func SimulateDrift(p Params, cfg SimConfig) Trajectory {
	o := p.Opacity
	s := State{
		VX: 600 - 2*o - p.Area()/10,
		VY: 480 - o*o/10 - p.Height - p.Width,
		YI: 60 - o,
	}
	t := newTrajectory(p, s, cfg)
	perUnit := 1 / cfg.TimeStep

	for !cfg.done(s) {
		s.X += s.VX / perUnit
		s.Y += s.VY / perUnit
		s.VY += s.YI
		s.Tick++
		t.Samples = append(t.Samples, Point{X: s.X, Y: s.Y})
		t.VYHistory = append(t.VYHistory, s.VY)
	}

	return finish(t, s, cfg)
}

func newTrajectory(p Params, s State, cfg SimConfig) Trajectory {
	capacity := cfg.MaxTicks() + 1
	t := Trajectory{
		Params:    p,
		Samples:   make([]Point, 0, capacity),
		VYHistory: make([]float64, 0, capacity),
	}
	t.Samples = append(t.Samples, Point{X: s.X, Y: s.Y})
	t.VYHistory = append(t.VYHistory, s.VY)
	return t
}

func finish(t Trajectory, s State, cfg SimConfig) Trajectory {
	t.FinalVX = s.VX
	t.Ticks = s.Tick
	t.Elapsed = cfg.elapsed(s.Tick)
	return t
}
