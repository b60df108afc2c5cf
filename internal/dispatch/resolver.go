package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/naiad/internal/orm"
)

// ViewFunc es un handler pre-registrado por endpoint.
type ViewFunc func(ctx context.Context, tx Txn, args orm.Args) (any, error)

// Resolver mapea un endpoint a su target invocable: una vista registrada o
// un método del registry de modelos. La resolución es un lookup explícito
// con resultado tipado, nunca probing silencioso de atributos.
type Resolver struct {
	views    map[string]ViewFunc
	registry *orm.Registry
}

// NewResolver crea un Resolver sobre el registry y las vistas dadas.
func NewResolver(registry *orm.Registry, views map[string]ViewFunc) *Resolver {
	if views == nil {
		views = map[string]ViewFunc{}
	}
	return &Resolver{views: views, registry: registry}
}

type targetKind int

const (
	targetView targetKind = iota
	targetStatic
	targetInstance
)

// Target es el resultado tipado de la resolución: el invocable más la
// variante de dispatch (vista / estático / instancia con su id).
type Target struct {
	kind     targetKind
	endpoint string
	args     orm.Args

	view     ViewFunc
	static   orm.StaticFunc
	instance orm.InstanceFunc
	model    *orm.Model
	recordID int64
}

// Resolve resuelve un endpoint con sus argumentos de vista.
//
// Reglas, en orden:
//   - "locale" se descarta siempre de los args: es metadata de routing.
//   - una vista registrada con ese nombre gana;
//   - si no, el endpoint debe ser "<model>.<method>" (split en el último punto);
//   - método estático: se invoca con los args como keyword args;
//   - método de instancia: requiere active_id, que se extrae de los args y
//     materializa el handle que va como primer argumento.
func (r *Resolver) Resolve(endpoint string, args orm.Args) (*Target, error) {
	if args == nil {
		args = orm.Args{}
	}
	delete(args, "locale")

	if v, ok := r.views[endpoint]; ok {
		return &Target{kind: targetView, endpoint: endpoint, view: v, args: args}, nil
	}

	i := strings.LastIndex(endpoint, ".")
	if i <= 0 || i == len(endpoint)-1 {
		return nil, fmt.Errorf("%w: %q", ErrEndpointNotFound, endpoint)
	}
	modelName, methodName := endpoint[:i], endpoint[i+1:]

	model, ok := r.registry.Get(modelName)
	if !ok {
		return nil, fmt.Errorf("%w: model %q", ErrEndpointNotFound, modelName)
	}

	if fn, ok := model.StaticMethod(methodName); ok {
		return &Target{kind: targetStatic, endpoint: endpoint, static: fn, args: args}, nil
	}

	fn, ok := model.InstanceMethod(methodName)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no method %q", ErrEndpointNotFound, modelName, methodName)
	}

	raw, ok := args["active_id"]
	if !ok {
		return nil, fmt.Errorf("%w: endpoint %q", ErrMissingActiveID, endpoint)
	}
	delete(args, "active_id")
	id, err := orm.AsID(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingActiveID, err)
	}

	return &Target{
		kind:     targetInstance,
		endpoint: endpoint,
		instance: fn,
		model:    model,
		recordID: id,
		args:     args,
	}, nil
}

// Call invoca el target dentro de la transacción dada.
func (t *Target) Call(ctx context.Context, tx Txn) (any, error) {
	switch t.kind {
	case targetView:
		return t.view(ctx, tx, t.args)
	case targetStatic:
		return t.static(ctx, tx, t.args)
	case targetInstance:
		rec := t.model.Record(tx, t.recordID)
		return t.instance(ctx, tx, rec, t.args)
	default:
		return nil, fmt.Errorf("%w: %q", ErrEndpointNotFound, t.endpoint)
	}
}
