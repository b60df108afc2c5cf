package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/dropDatabas3/naiad/internal/observability/logger"
)

// WithRecover convierte un panic del handler en un 500 controlado.
// El stack se loguea completo; la respuesta no filtra detalles internos.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recovered",
						logger.Any("panic", rec),
						logger.Any("stack", string(debug.Stack())),
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
