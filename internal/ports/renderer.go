package ports

import (
	"context"
	"io"

	"github.com/alejandrodnm/cloudpaths/internal/domain"
)

// Renderer dibuja el lote de trayectorias en un único gráfico.
type Renderer interface {
	// Render escribe el gráfico en w con el formato configurado.
	// Las trayectorias sin curva se omiten.
	Render(ctx context.Context, paths []domain.Path, w io.Writer) error

	// RenderFile escribe el gráfico en un archivo; el formato sale de la extensión.
	RenderFile(ctx context.Context, paths []domain.Path, path string) error
}
