package ports

import (
	"context"

	"github.com/alejandrodnm/cloudpaths/internal/domain"
)

// RunStorage archiva los lotes ejecutados.
type RunStorage interface {
	// SaveRun persiste el lote completo (una fila por trayectoria).
	SaveRun(ctx context.Context, run domain.Run) error

	// GetRun reconstruye un lote por ID. Las curvas no se archivan: Curve es nil.
	GetRun(ctx context.Context, id string) (domain.Run, error)

	// ListRuns devuelve los últimos lotes, más recientes primero.
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
