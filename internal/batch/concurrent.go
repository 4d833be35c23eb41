package batch

// concurrent.go: simulación paralela del barrido.
//
// Cada tupla es independiente: un goroutine por tupla, limitado a `workers`
// a la vez. Cada resultado se escribe en su índice del barrido, así que el
// orden de salida no depende del scheduling.

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/alejandrodnm/cloudpaths/internal/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const progressInterval = 500 * time.Millisecond

func simulateConcurrent(
	ctx context.Context,
	simulate domain.Simulator,
	params []domain.Params,
	cfg domain.SimConfig,
	workers int,
) ([]domain.Trajectory, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]domain.Trajectory, len(params))
	var done atomic.Int64
	// Progreso: el primero y luego como mucho uno cada progressInterval.
	progress := rate.Sometimes{First: 1, Interval: progressInterval}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range params {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = simulate(p, cfg)
			n := done.Add(1)
			progress.Do(func() {
				slog.Debug("simulation progress", "done", n, "total", len(params))
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch.simulateConcurrent: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch.simulateConcurrent: %w", err)
	}

	slog.Debug("concurrent simulation complete",
		"trajectories", len(out),
		"workers", workers,
	)
	return out, nil
}
