package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func assertSamples(t *testing.T, want []Point, got []Point) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, eps, "x[%d]", i)
		assert.InDelta(t, want[i].Y, got[i].Y, eps, "y[%d]", i)
	}
}

func rulesOf(letters ...string) []Rule {
	out := make([]Rule, len(letters))
	for i, l := range letters {
		out[i] = ParseRule(l)
	}
	return out
}

// --- InitialState ---

func TestInitialState_Reference(t *testing.T) {
	// area=400: vx0 = 600 - 20 - 40 = 540
	// vy0 = 480 - 10 - 20 - 20 + 2×540/10 = 538
	s := InitialState(Params{Height: 20, Width: 20, Opacity: 10})
	assert.InDelta(t, 540.0, s.VX, eps)
	assert.InDelta(t, 538.0, s.VY, eps)
	assert.InDelta(t, 100.0, s.YI, eps)
	assert.InDelta(t, -5.0, s.XI, eps)
	assert.Zero(t, s.X)
	assert.Zero(t, s.Y)
	assert.Zero(t, s.Tick)
}

// --- Simulate: trayectorias de referencia paso a paso ---

func TestSimulate_Reference_H20W20O10(t *testing.T) {
	tr := Simulate(Params{Height: 20, Width: 20, Opacity: 10}, DefaultSimConfig())

	// tick 1: x=108, y=107.6 → ninguna guarda A–E se cumple → F
	assert.Equal(t, rulesOf("F", "D", "D", "D", "D", "D"), tr.Rules)
	assertSamples(t, []Point{
		{0, 0},
		{108, 107.6},
		{213, 219.2},
		{129.3, 334.8},
		{225.93, 454.4},
		{151.893, 578.0},
		{241.1193, 705.6}, // cruza y ≥ 600 y aun así se registra
	}, tr.Samples)
	assert.Equal(t, []float64{538, 558, 578, 598, 618, 638, 658}, tr.VYHistory)
	assert.InDelta(t, -325.57185, tr.FinalVX, 1e-6)
	assert.Equal(t, 6, tr.Ticks)
}

func TestSimulate_Reference_H20W20O20_Crossover(t *testing.T) {
	tr := Simulate(Params{Height: 20, Width: 20, Opacity: 20}, DefaultSimConfig())

	assert.Equal(t, rulesOf("F", "F", "E", "D", "D"), tr.Rules)
	assertSamples(t, []Point{
		{0, 0},
		{104, 90.4},
		{203, 182.8},
		{293, 277.2},
		{288.6, 470.4},
		{321.86, 665.6},
	}, tr.Samples)
	// tick 3 (regla E): vy salta de 472 a 966 sin sumar yi
	assert.Equal(t, []float64{452, 462, 472, 966, 976, 986}, tr.VYHistory)
	assert.InDelta(t, -5.37, tr.FinalVX, 1e-6)
}

// --- Propiedades sobre todo el barrido ---

func TestSimulate_SweepTerminatesWithin15Ticks(t *testing.T) {
	cfg := DefaultSimConfig()
	require.Equal(t, 15, cfg.MaxTicks())

	for _, p := range Sweep(DefaultSweep()) {
		tr := Simulate(p, cfg)
		assert.LessOrEqual(t, tr.Ticks, 15, "params %+v", p)
		assert.GreaterOrEqual(t, len(tr.Samples), 1)
		assert.Equal(t, Point{}, tr.Samples[0])
		assert.Len(t, tr.VYHistory, len(tr.Samples), "params %+v", p)
		assert.Len(t, tr.Rules, tr.Ticks)
		assert.Equal(t, tr.Ticks+1, len(tr.Samples))
		assert.LessOrEqual(t, tr.Elapsed, cfg.MaxTime+cfg.TimeStep)
	}
}

func TestSimulate_StopsAtTimeLimit(t *testing.T) {
	cfg := SimConfig{TimeStep: 0.2, MaxTime: 0.6, BoundX: 1e9, BoundY: 1e9}
	tr := Simulate(Params{Height: 50, Width: 70, Opacity: 50}, cfg)
	assert.Equal(t, 3, tr.Ticks)
	assert.Len(t, tr.Samples, 4)
}

func TestSimulate_AlreadyOutOfBounds(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.BoundX = 0 // x=0 ≥ 0 → no hay ningún tick
	tr := Simulate(Params{Height: 20, Width: 20, Opacity: 10}, cfg)
	assert.Equal(t, []Point{{0, 0}}, tr.Samples)
	assert.Len(t, tr.VYHistory, 1)
	assert.InDelta(t, 540.0, tr.FinalVX, eps)
}

// --- Modelo drift ---

func TestSimulateDrift_FirstTick(t *testing.T) {
	tr := SimulateDrift(Params{Height: 20, Width: 20, Opacity: 10}, DefaultSimConfig())
	// vx=540 constante, vy0 = 480 - 10 - 40 = 430, yi = 50
	require.GreaterOrEqual(t, len(tr.Samples), 2)
	assert.InDelta(t, 108.0, tr.Samples[1].X, eps)
	assert.InDelta(t, 86.0, tr.Samples[1].Y, eps)
	assert.Equal(t, 430.0, tr.VYHistory[0])
	assert.Equal(t, 480.0, tr.VYHistory[1])
	assert.InDelta(t, 540.0, tr.FinalVX, eps)
	assert.Empty(t, tr.Rules)
	assert.Len(t, tr.VYHistory, len(tr.Samples))
}

func TestSimulatorFor(t *testing.T) {
	sim, err := SimulatorFor(ModelBranching)
	require.NoError(t, err)
	assert.NotNil(t, sim)

	sim, err = SimulatorFor("")
	require.NoError(t, err)
	assert.NotNil(t, sim)

	sim, err = SimulatorFor(ModelDrift)
	require.NoError(t, err)
	assert.NotNil(t, sim)

	_, err = SimulatorFor("ballistic")
	assert.Error(t, err)
}

func TestSimConfig_MaxTicks_ZeroStep(t *testing.T) {
	assert.Equal(t, 0, SimConfig{TimeStep: 0, MaxTime: 3}.MaxTicks())
}
