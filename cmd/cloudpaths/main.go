package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/cloudpaths/config"
	"github.com/alejandrodnm/cloudpaths/internal/adapters/notify"
	"github.com/alejandrodnm/cloudpaths/internal/adapters/render"
	"github.com/alejandrodnm/cloudpaths/internal/adapters/storage"
	"github.com/alejandrodnm/cloudpaths/internal/batch"
	"github.com/alejandrodnm/cloudpaths/internal/domain"
	"github.com/alejandrodnm/cloudpaths/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file (empty = built-in defaults)")
	out := flag.String("out", "", "chart output path, .png or .svg (overrides config)")
	workers := flag.Int("workers", -1, "simulation workers, 0 = NumCPU (overrides config)")
	model := flag.String("model", "", "trajectory model: branching|drift (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print one row per path (default: compact 1-line summary)")
	noStore := flag.Bool("no-store", false, "do not archive the run in SQLite")
	list := flag.Int("list", 0, "list the last N archived runs and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *out != "" {
		cfg.Render.Output = *out
	}
	if *workers >= 0 {
		cfg.Batch.Workers = *workers
	}
	if *model != "" {
		cfg.Simulation.Model = *model
	}
	closeLog := setupLogger(cfg.Log)
	defer closeLog()

	notifier := notify.NewConsole(*table)

	var store *storage.SQLiteStorage
	if cfg.Storage.DSN != "" && (!*noStore || *list > 0) {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *list > 0 {
		if store == nil {
			slog.Error("listing runs requires storage.dsn")
			os.Exit(1)
		}
		runs, err := store.ListRuns(ctx, *list)
		if err != nil {
			slog.Error("failed to list runs", "err", err)
			os.Exit(1)
		}
		notifier.PrintRuns(runs)
		return
	}

	slog.Info("cloudpaths starting",
		"config", *configPath,
		"model", cfg.Simulation.Model,
		"sweep", len(cfg.Sweep.Heights)*len(cfg.Sweep.Widths)*cfg.Sweep.OpacitySteps,
		"output", cfg.Render.Output,
		"store", store != nil,
	)

	batchCfg := batch.DefaultConfig()
	batchCfg.Sweep = domain.SweepSpec{
		Heights:      cfg.Sweep.Heights,
		Widths:       cfg.Sweep.Widths,
		OpacitySteps: cfg.Sweep.OpacitySteps,
	}
	batchCfg.Sim = domain.SimConfig{
		TimeStep: cfg.Simulation.TimeStep,
		MaxTime:  cfg.Simulation.MaxTime,
		BoundX:   cfg.Simulation.BoundX,
		BoundY:   cfg.Simulation.BoundY,
	}
	batchCfg.Model = domain.Model(cfg.Simulation.Model)
	batchCfg.SmoothPoints = cfg.Fit.SmoothPoints
	batchCfg.Workers = cfg.Batch.Workers
	batchCfg.Output = cfg.Render.Output

	renderer := render.NewPlot(render.Options{
		Format:   cfg.Render.Format,
		WidthIn:  cfg.Render.WidthIn,
		HeightIn: cfg.Render.HeightIn,
		Title:    cfg.Render.Title,
		XMax:     cfg.Simulation.BoundX,
		YMax:     cfg.Simulation.BoundY,
	})

	// Un *SQLiteStorage nil dentro de la interfaz no es una interfaz nil.
	var runStore ports.RunStorage
	if store != nil && !*noStore {
		runStore = store
	}

	runner, err := batch.New(batchCfg, renderer, notifier, runStore)
	if err != nil {
		slog.Error("invalid batch config", "err", err)
		os.Exit(1)
	}

	if _, err := runner.Run(ctx); err != nil {
		slog.Error("batch failed", "err", err)
		os.Exit(1)
	}
}
