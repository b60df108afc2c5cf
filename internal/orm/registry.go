// Package orm define el registry de modelos de negocio sobre el que el
// dispatch resuelve endpoints "model.method".
//
// El registry es de solo lectura una vez congelado (Freeze): las lecturas
// concurrentes durante el serving son seguras sin locking adicional.
package orm

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrModelNotFound indica que el modelo no existe en el registry.
	ErrModelNotFound = errors.New("model not found in registry")
	// ErrFrozen indica un intento de registro después de Freeze.
	ErrFrozen = errors.New("registry is frozen")
)

// Registry mapea nombres de modelo a sus descriptores.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
	frozen bool
}

// NewRegistry crea un registry vacío.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register agrega un modelo. Falla si el registry ya fue congelado o si
// el nombre está duplicado.
func (r *Registry) Register(m *Model) error {
	if m == nil || m.name == "" {
		return errors.New("nil or unnamed model")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	if _, dup := r.models[m.name]; dup {
		return fmt.Errorf("model %q already registered", m.name)
	}
	r.models[m.name] = m
	return nil
}

// Freeze marca el registry como inmutable. Idempotente.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Get busca un modelo por nombre.
func (r *Registry) Get(name string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// Names retorna los nombres registrados (para tooling/CLI).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.models))
	for name := range r.models {
		out = append(out, name)
	}
	return out
}
