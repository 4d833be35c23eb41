package storage

// sqlite.go: archivo de lotes ejecutados.
//
// Estrategia:
//   - `runs`: una fila por lote con la config de simulación y un resumen.
//   - `paths`: una fila por trayectoria (run_id, idx). Muestras e historial de vy
//     se guardan como JSON; las curvas no, se recalculan si hacen falta.
//   - Prune automático al arrancar: lotes > 30d.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/cloudpaths/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Un lote por fila
CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,
    model      TEXT    NOT NULL,
    time_step  REAL    NOT NULL,
    max_time   REAL    NOT NULL,
    bound_x    REAL    NOT NULL,
    bound_y    REAL    NOT NULL,
    paths      INTEGER NOT NULL DEFAULT 0,
    fitted     INTEGER NOT NULL DEFAULT 0,
    best_raw   REAL    NOT NULL DEFAULT 0
);

-- Una fila por trayectoria, en el orden del barrido
CREATE TABLE IF NOT EXISTS paths (
    run_id     TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    idx        INTEGER NOT NULL,
    height     REAL    NOT NULL,
    width      REAL    NOT NULL,
    opacity    REAL    NOT NULL,
    ticks      INTEGER NOT NULL,
    elapsed    REAL    NOT NULL,
    final_vx   REAL    NOT NULL,
    raw_score  REAL    NOT NULL,
    score      REAL    NOT NULL,
    degree     INTEGER NOT NULL DEFAULT -1,
    rules      TEXT    NOT NULL DEFAULT '',
    samples    TEXT    NOT NULL,
    vy_history TEXT    NOT NULL,
    PRIMARY KEY (run_id, idx)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
`

const (
	retentionRuns    = 30 * 24 * time.Hour
	defaultListLimit = 20
)

// ErrRunNotFound se devuelve cuando el ID no existe en el archivo.
var ErrRunNotFound = errors.New("run not found")

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia lotes antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", withPragmas(path))
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer; además :memory: vive en una sola conexión
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste el lote y sus trayectorias en una transacción.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.Run) error {
	if run.ID == "" {
		return errors.New("storage.SaveRun: empty run id")
	}
	sum := run.Summarize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, model, time_step, max_time, bound_x, bound_y, paths, fitted, best_raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().UnixMilli(), string(run.Model),
		run.Sim.TimeStep, run.Sim.MaxTime, run.Sim.BoundX, run.Sim.BoundY,
		sum.Paths, sum.Fitted, sum.BestRaw,
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO paths
			(run_id, idx, height, width, opacity, ticks, elapsed, final_vx,
			 raw_score, score, degree, rules, samples, vy_history)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for i, p := range run.Paths {
		tr := p.Trajectory
		samples, err := json.Marshal(tr.Samples)
		if err != nil {
			return fmt.Errorf("storage.SaveRun: encode samples %d: %w", i, err)
		}
		vys, err := json.Marshal(tr.VYHistory)
		if err != nil {
			return fmt.Errorf("storage.SaveRun: encode vy history %d: %w", i, err)
		}
		degree := -1
		if p.Curve != nil {
			degree = p.Curve.Degree
		}

		if _, err := stmt.ExecContext(ctx,
			run.ID, i,
			tr.Params.Height, tr.Params.Width, tr.Params.Opacity,
			tr.Ticks, tr.Elapsed, tr.FinalVX,
			p.RawScore, p.Score, degree,
			encodeRules(tr.Rules), string(samples), string(vys),
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert path %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// GetRun reconstruye un lote por ID con sus trayectorias en orden.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (domain.Run, error) {
	var (
		run     domain.Run
		created int64
		model   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, model, time_step, max_time, bound_x, bound_y
		FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &created, &model, &run.Sim.TimeStep, &run.Sim.MaxTime, &run.Sim.BoundX, &run.Sim.BoundY)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Run{}, fmt.Errorf("storage.GetRun: %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return domain.Run{}, fmt.Errorf("storage.GetRun: query run: %w", err)
	}
	run.CreatedAt = time.UnixMilli(created).UTC()
	run.Model = domain.Model(model)

	rows, err := s.db.QueryContext(ctx, `
		SELECT height, width, opacity, ticks, elapsed, final_vx,
		       raw_score, score, rules, samples, vy_history
		FROM paths WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return domain.Run{}, fmt.Errorf("storage.GetRun: query paths: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p                   domain.Path
			rules, samples, vys string
		)
		tr := &p.Trajectory
		if err := rows.Scan(
			&tr.Params.Height, &tr.Params.Width, &tr.Params.Opacity,
			&tr.Ticks, &tr.Elapsed, &tr.FinalVX,
			&p.RawScore, &p.Score,
			&rules, &samples, &vys,
		); err != nil {
			return domain.Run{}, fmt.Errorf("storage.GetRun: scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(samples), &tr.Samples); err != nil {
			return domain.Run{}, fmt.Errorf("storage.GetRun: decode samples: %w", err)
		}
		if err := json.Unmarshal([]byte(vys), &tr.VYHistory); err != nil {
			return domain.Run{}, fmt.Errorf("storage.GetRun: decode vy history: %w", err)
		}
		tr.Rules = decodeRules(rules)
		run.Paths = append(run.Paths, p)
	}

	return run, rows.Err()
}

// ListRuns devuelve los últimos lotes, más recientes primero.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, model, paths, fitted, best_raw
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var (
			sum     domain.RunSummary
			created int64
			model   string
		)
		if err := rows.Scan(&sum.ID, &created, &model, &sum.Paths, &sum.Fitted, &sum.BestRaw); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan row: %w", err)
		}
		sum.CreatedAt = time.UnixMilli(created).UTC()
		sum.Model = domain.Model(model)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// pruneOld elimina lotes antiguos para mantener la DB ligera (paths caen en cascada).
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		slog.Warn("storage: prune failed", "err", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Debug("storage: pruned old runs", "runs", n)
	}
}

// withPragmas añade foreign_keys al DSN para que cada conexión del pool lo
// active; sin él el prune no borra las filas de paths en cascada.
func withPragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// encodeRules guarda la secuencia de reglas como letras: "FDDDDD".
func encodeRules(rules []domain.Rule) string {
	var sb strings.Builder
	sb.Grow(len(rules))
	for _, r := range rules {
		sb.WriteString(r.String())
	}
	return sb.String()
}

func decodeRules(s string) []domain.Rule {
	if s == "" {
		return nil
	}
	out := make([]domain.Rule, 0, len(s))
	for _, c := range s {
		out = append(out, domain.ParseRule(string(c)))
	}
	return out
}
