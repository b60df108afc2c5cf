package dispatch

import (
	"context"

	"github.com/dropDatabas3/naiad/internal/orm"
	"github.com/dropDatabas3/naiad/internal/tenant"
)

// Request es el request entrante ya enriquecido con la metadata de routing.
// Se crea por conexión y muere al final del dispatch.
type Request struct {
	Method string
	Host   string
	Path   string

	// Endpoint es el identificador que dejó el router: una vista
	// registrada o un "model.method".
	Endpoint string

	// ViewArgs son los parámetros extraídos del path/query por el router.
	ViewArgs orm.Args

	// RoutingErr queda seteado cuando el router no matcheó
	// (ErrRouteNotFound / ErrMethodNotAllowed).
	RoutingErr error

	// AutoOptions indica que la ruta matcheada provee OPTIONS automático.
	AutoOptions bool
	// Allow lista los métodos de la ruta, para la respuesta OPTIONS.
	Allow []string

	// website se memoiza al resolver el tenant; válido solo durante
	// este dispatch.
	website *tenant.Website
}

// Website retorna el tenant resuelto para este request, o nil si la
// resolución aún no ocurrió.
func (r *Request) Website() *tenant.Website { return r.website }

// Txn es la vista del handle de transacción que consume el pipeline.
// La implementación real (internal/txn) se adapta en el wiring; los tests
// del pipeline usan fakes.
type Txn interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// Close libera la conexión en todos los caminos de salida.
	Close(ctx context.Context) error
	// WithContext agrega pares clave-valor sin abrir otra conexión.
	WithContext(extra map[string]any) Txn
	// Value lee del context-dict (satisface orm.Tx).
	Value(key string) any
}

// Opener abre transacciones top-level con scope (database, user, ctxvals).
type Opener interface {
	Begin(ctx context.Context, database string, userID int64, ctxvals map[string]any, readonly bool) (Txn, error)
}

// TenantSource resuelve el website por host dentro de una transacción dada.
type TenantSource interface {
	GetFromHost(ctx context.Context, tx Txn, host string) (*tenant.Website, error)
}

// Invalidator es la operación de invalidación por base de datos de la capa
// de cache de proceso.
type Invalidator interface {
	InvalidateDatabase(ctx context.Context, database string)
}
