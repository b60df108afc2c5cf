package orm

import (
	"context"
	"fmt"
	"strconv"
)

// Args son los argumentos de vista que llegan del routing (keyword args).
type Args map[string]any

// Tx es la vista mínima de la transacción que ven los métodos de modelo.
// El handle real del txn manager la satisface; los métodos que necesitan
// SQL directo pueden type-assertar a la implementación concreta.
type Tx interface {
	// Value lee una clave del context-dict de la transacción (ej: "language").
	Value(key string) any
}

// StaticFunc es un método estático o de clase: opera sobre el modelo, no
// sobre un registro puntual.
type StaticFunc func(ctx context.Context, tx Tx, args Args) (any, error)

// InstanceFunc es un método de instancia: recibe el Record materializado a
// partir del active_id de la URL como primer argumento.
type InstanceFunc func(ctx context.Context, tx Tx, rec *Record, args Args) (any, error)

// Model describe un modelo de negocio con sus métodos publicables.
type Model struct {
	name      string
	statics   map[string]StaticFunc
	instances map[string]InstanceFunc
}

// NewModel crea un modelo con el nombre dado (ej: "sale.order").
func NewModel(name string) *Model {
	return &Model{
		name:      name,
		statics:   make(map[string]StaticFunc),
		instances: make(map[string]InstanceFunc),
	}
}

// Name retorna el nombre del modelo.
func (m *Model) Name() string { return m.name }

// Static registra un método estático. Retorna el modelo para encadenar.
func (m *Model) Static(name string, fn StaticFunc) *Model {
	m.statics[name] = fn
	return m
}

// Instance registra un método de instancia. Retorna el modelo para encadenar.
func (m *Model) Instance(name string, fn InstanceFunc) *Model {
	m.instances[name] = fn
	return m
}

// StaticMethod busca un método estático por nombre.
func (m *Model) StaticMethod(name string) (StaticFunc, bool) {
	fn, ok := m.statics[name]
	return fn, ok
}

// InstanceMethod busca un método de instancia por nombre.
func (m *Model) InstanceMethod(name string) (InstanceFunc, bool) {
	fn, ok := m.instances[name]
	return fn, ok
}

// Record materializa un handle de instancia atado a la transacción actual.
func (m *Model) Record(tx Tx, id int64) *Record {
	return &Record{model: m, id: id, tx: tx}
}

// AsID coerciona el valor de active_id (int del test, string de la URL,
// float64 de JSON) a int64.
func AsID(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("active_id %q is not an integer: %w", n, err)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("active_id has unsupported type %T", v)
	}
}
