package batch_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/alejandrodnm/cloudpaths/internal/adapters/notify"
	"github.com/alejandrodnm/cloudpaths/internal/adapters/storage"
	"github.com/alejandrodnm/cloudpaths/internal/batch"
	"github.com/alejandrodnm/cloudpaths/internal/domain"
	"github.com/alejandrodnm/cloudpaths/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// --- fakes ---

type fakeRenderer struct {
	paths []domain.Path
	file  string
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, paths []domain.Path, _ io.Writer) error {
	f.paths = paths
	return f.err
}

func (f *fakeRenderer) RenderFile(_ context.Context, paths []domain.Path, path string) error {
	f.paths = paths
	f.file = path
	return f.err
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, _ []domain.Path) error {
	f.calls++
	return f.err
}

type fakeStorage struct {
	runs []domain.Run
	err  error
}

func (f *fakeStorage) SaveRun(_ context.Context, run domain.Run) error {
	f.runs = append(f.runs, run)
	return f.err
}

func (f *fakeStorage) GetRun(_ context.Context, id string) (domain.Run, error) {
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Run{}, errors.New("not found")
}

func (f *fakeStorage) ListRuns(_ context.Context, _ int) ([]domain.RunSummary, error) {
	out := make([]domain.RunSummary, len(f.runs))
	for i, r := range f.runs {
		out[i] = r.Summarize()
	}
	return out, nil
}

func (f *fakeStorage) Close() error { return nil }

// newRunner recibe interfaces: un nil literal llega como interfaz nil.
func newRunner(t *testing.T, cfg batch.Config, r ports.Renderer, n ports.Notifier, s ports.RunStorage) *batch.Runner {
	t.Helper()
	runner, err := batch.New(cfg, r, n, s)
	require.NoError(t, err)
	return runner
}

// --- RunOnce ---

func TestRunner_RunOnce_SweepOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := batch.DefaultConfig()
	cfg.Workers = 8
	runner := newRunner(t, cfg, nil, nil, nil)

	paths, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 120)

	want := domain.Sweep(cfg.Sweep)
	for i, p := range paths {
		assert.Equal(t, want[i], p.Trajectory.Params)
		assert.GreaterOrEqual(t, p.Score, 0.0)
		assert.LessOrEqual(t, p.Score, 1.0)
	}

	// trayectoria de referencia en la posición 0
	assert.InDelta(t, 126.214075, paths[0].RawScore, 1e-6)
}

func TestRunner_RunOnce_DeterministicAcrossWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	seqCfg := batch.DefaultConfig()
	seqCfg.Workers = 1
	parCfg := batch.DefaultConfig()
	parCfg.Workers = 16

	seq, err := newRunner(t, seqCfg, nil, nil, nil).RunOnce(context.Background())
	require.NoError(t, err)
	par, err := newRunner(t, parCfg, nil, nil, nil).RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestRunner_RunOnce_DriftModel(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := batch.DefaultConfig()
	cfg.Model = domain.ModelDrift
	paths, err := newRunner(t, cfg, nil, nil, nil).RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 120)
	for _, p := range paths {
		assert.Empty(t, p.Trajectory.Rules)
	}
}

func TestRunner_RunOnce_CanceledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(t, batch.DefaultConfig(), nil, nil, nil).RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_UnknownModel(t *testing.T) {
	cfg := batch.DefaultConfig()
	cfg.Model = "ballistic"
	_, err := batch.New(cfg, nil, nil, nil)
	assert.Error(t, err)
}

// --- Run ---

func TestRunner_Run_WiresOutputs(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := batch.DefaultConfig()
	cfg.Output = "cloud_paths.png"
	r, n, s := &fakeRenderer{}, &fakeNotifier{}, &fakeStorage{}

	run, err := newRunner(t, cfg, r, n, s).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, domain.ModelBranching, run.Model)
	assert.Len(t, run.Paths, 120)
	assert.Equal(t, 1, n.calls)
	require.Len(t, s.runs, 1)
	assert.Equal(t, run.ID, s.runs[0].ID)
	assert.Equal(t, "cloud_paths.png", r.file)
	assert.Len(t, r.paths, 120)
}

func TestRunner_Run_NoOutputSkipsRenderer(t *testing.T) {
	r := &fakeRenderer{}
	_, err := newRunner(t, batch.DefaultConfig(), r, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, r.paths)
}

func TestRunner_Run_NotifierAndStorageErrorsAreWarnings(t *testing.T) {
	n := &fakeNotifier{err: errors.New("boom")}
	s := &fakeStorage{err: errors.New("disk full")}

	_, err := newRunner(t, batch.DefaultConfig(), nil, n, s).Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, n.calls)
	assert.Len(t, s.runs, 1)
}

func TestRunner_Run_RendererErrorFails(t *testing.T) {
	cfg := batch.DefaultConfig()
	cfg.Output = "x.png"
	r := &fakeRenderer{err: errors.New("no canvas")}

	_, err := newRunner(t, cfg, r, nil, nil).Run(context.Background())
	assert.ErrorContains(t, err, "no canvas")
}

// --- integración con los adapters reales ---

func TestRunner_Run_ArchivesToSQLite(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	cfg := batch.DefaultConfig()
	cfg.Sweep.OpacitySteps = 1

	runner, err := batch.New(cfg, nil, notify.NewConsoleWriter(&buf, false), db)
	require.NoError(t, err)

	run, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "24 paths")

	got, err := db.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, got.Paths, 24)
	assert.Equal(t, run.Paths[0].Trajectory.Samples, got.Paths[0].Trajectory.Samples)

	runs, err := db.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.Summarize().Fitted, runs[0].Fitted)
	assert.Equal(t, 24, runs[0].Paths)
}
