// Package bootstrap registra los modelos y vistas de referencia del server.
// Una aplicación real arma su propio registry; esto deja el binario
// sirviendo end-to-end sin más código.
package bootstrap

import (
	"context"
	"html/template"

	"github.com/dropDatabas3/naiad/internal/dispatch"
	"github.com/dropDatabas3/naiad/internal/orm"
	"github.com/dropDatabas3/naiad/internal/render"
)

var pageTmpl = template.Must(template.New("page").Parse(
	`<!doctype html><html lang="{{.Language}}"><body><h1>{{.Title}}</h1></body></html>`))

// Registry arma el registry de ejemplo, ya congelado, y sus vistas.
func Registry() (*orm.Registry, map[string]dispatch.ViewFunc) {
	reg := orm.NewRegistry()

	page := orm.NewModel("example.page").
		Static("home", func(_ context.Context, _ orm.Tx, _ orm.Args) (any, error) {
			// Renderable diferido: el pipeline lo fuerza con el locale
			// del website y la transacción todavía abiertos.
			return render.NewLazy(pageTmpl, map[string]any{"Title": "naiad"}), nil
		}).
		Instance("show", func(_ context.Context, tx orm.Tx, rec *orm.Record, _ orm.Args) (any, error) {
			return map[string]any{
				"id":       rec.ID(),
				"model":    rec.ModelName(),
				"language": tx.Value("language"),
			}, nil
		})

	// El registro solo falla por duplicados; acá los nombres son fijos.
	_ = reg.Register(page)
	reg.Freeze()

	views := map[string]dispatch.ViewFunc{
		"health": func(context.Context, dispatch.Txn, orm.Args) (any, error) {
			return map[string]any{"status": "ok"}, nil
		},
	}
	return reg, views
}
