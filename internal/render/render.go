// Package render define valores renderizables diferidos.
//
// Un handler puede retornar un Renderable en vez de un string; el pipeline
// lo resuelve explícitamente ANTES de cerrar la transacción, porque el
// rendering puede depender del tx abierto y del locale activo.
package render

import (
	"html/template"
	"strings"

	"github.com/dropDatabas3/naiad/internal/orm"
)

// Context es lo que el pipeline pone a disposición al forzar el render.
type Context struct {
	// Language es el locale efectivo del dispatch (ej: "es_AR").
	Language string
	// Tx es la transacción (hija, con language en su context-dict) aún abierta.
	Tx orm.Tx
}

// Renderable es un valor diferido que se evalúa a string final.
type Renderable interface {
	Resolve(rc Context) (string, error)
}

// Lazy envuelve un html/template con sus datos, posponiendo la ejecución
// hasta que el pipeline lo fuerce dentro del scope de transacción/locale.
type Lazy struct {
	tmpl *template.Template
	data map[string]any
}

// NewLazy crea un Renderable a partir de un template y datos.
func NewLazy(tmpl *template.Template, data map[string]any) *Lazy {
	return &Lazy{tmpl: tmpl, data: data}
}

// Resolve ejecuta el template inyectando Language bajo la clave "Language".
func (l *Lazy) Resolve(rc Context) (string, error) {
	data := make(map[string]any, len(l.data)+1)
	for k, v := range l.data {
		data[k] = v
	}
	if _, shadowed := data["Language"]; !shadowed {
		data["Language"] = rc.Language
	}
	var sb strings.Builder
	if err := l.tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Func adapta una función a Renderable (útil en tests y handlers chicos).
type Func func(rc Context) (string, error)

// Resolve implementa Renderable.
func (f Func) Resolve(rc Context) (string, error) { return f(rc) }
