package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/cloudpaths/internal/domain"
	"github.com/alejandrodnm/cloudpaths/internal/ports"
	"github.com/google/uuid"
)

// Config contiene la configuración del lote, resuelta una vez al arrancar.
type Config struct {
	Sweep        domain.SweepSpec
	Sim          domain.SimConfig
	Model        domain.Model
	SmoothPoints int
	Workers      int    // <= 0 usa runtime.NumCPU()
	Output       string // ruta del gráfico; vacío = no dibujar
}

// DefaultConfig devuelve el barrido y la simulación de referencia.
func DefaultConfig() Config {
	return Config{
		Sweep:        domain.DefaultSweep(),
		Sim:          domain.DefaultSimConfig(),
		Model:        domain.ModelBranching,
		SmoothPoints: domain.SmoothPoints,
	}
}

// Runner es el orquestador: barrido → simulación → ajuste/score → salidas.
type Runner struct {
	cfg      Config
	simulate domain.Simulator
	renderer ports.Renderer
	notifier ports.Notifier
	storage  ports.RunStorage
}

// New crea un Runner con todas las dependencias inyectadas.
// renderer, notifier y storage pueden ser nil.
func New(
	cfg Config,
	renderer ports.Renderer,
	notifier ports.Notifier,
	storage ports.RunStorage,
) (*Runner, error) {
	sim, err := domain.SimulatorFor(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("batch.New: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = domain.ModelBranching
	}
	return &Runner{
		cfg:      cfg,
		simulate: sim,
		renderer: renderer,
		notifier: notifier,
		storage:  storage,
	}, nil
}

// RunOnce ejecuta el lote y devuelve las trayectorias ajustadas y puntuadas,
// en el orden del barrido.
func (r *Runner) RunOnce(ctx context.Context) ([]domain.Path, error) {
	params := domain.Sweep(r.cfg.Sweep)

	trajectories, err := simulateConcurrent(ctx, r.simulate, params, r.cfg.Sim, r.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("batch.RunOnce: %w", err)
	}

	paths := domain.Assemble(trajectories, r.cfg.SmoothPoints)
	for i, p := range paths {
		if !p.Fitted() {
			slog.Debug("curve skipped",
				"index", i,
				"params", p.Trajectory.Params,
				"samples", len(p.Trajectory.Samples),
			)
		}
	}
	return paths, nil
}

// Run ejecuta el lote completo y notifica/archiva/dibuja los resultados.
// Los errores del notificador y del archivo solo se registran; los del
// renderer abortan, porque el gráfico es la salida principal.
func (r *Runner) Run(ctx context.Context) (domain.Run, error) {
	start := time.Now()

	paths, err := r.RunOnce(ctx)
	if err != nil {
		return domain.Run{}, err
	}

	run := domain.Run{
		ID:        uuid.New().String(),
		CreatedAt: start.UTC(),
		Model:     r.cfg.Model,
		Sim:       r.cfg.Sim,
		Paths:     paths,
	}

	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, paths); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	if r.storage != nil {
		if err := r.storage.SaveRun(ctx, run); err != nil {
			slog.Warn("storage error", "run_id", run.ID, "err", err)
		}
	}

	if r.renderer != nil && r.cfg.Output != "" {
		if err := r.renderer.RenderFile(ctx, paths, r.cfg.Output); err != nil {
			return run, fmt.Errorf("batch.Run: render: %w", err)
		}
	}

	sum := run.Summarize()
	slog.Info("batch complete",
		"run_id", run.ID,
		"model", run.Model,
		"paths", sum.Paths,
		"fitted", sum.Fitted,
		"output", r.cfg.Output,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return run, nil
}
