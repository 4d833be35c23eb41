package ports

import (
	"context"

	"github.com/alejandrodnm/cloudpaths/internal/domain"
)

// Notifier presenta el resultado del lote al usuario.
type Notifier interface {
	// Notify muestra las trayectorias en el orden del barrido.
	// En la implementación de consola, imprime un resumen o una tabla.
	Notify(ctx context.Context, paths []domain.Path) error
}
