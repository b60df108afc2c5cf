// Package http arma el router chi sobre el pipeline de dispatch y escribe
// las respuestas: el routing decide endpoint + view args, el pipeline decide
// todo lo demás.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/naiad/internal/config"
	"github.com/dropDatabas3/naiad/internal/dispatch"
	"github.com/dropDatabas3/naiad/internal/http/middlewares"
	"github.com/dropDatabas3/naiad/internal/observability/logger"
	"github.com/dropDatabas3/naiad/internal/orm"
)

// Dispatcher es lo que el router necesita del pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *dispatch.Request) (any, error)
}

// RouterOptions agrupa las piezas opcionales del router.
type RouterOptions struct {
	// Retryable clasifica errores transitorios para el mapeo a 503.
	Retryable func(error) bool
	// Metrics, si no es nil, se monta en GET /metrics.
	Metrics http.Handler
}

// NewRouter construye el handler HTTP completo: middlewares ambientales,
// tabla de rutas declarada en la config y fallbacks de routing que siguen
// pasando por el pipeline para mantener una sola taxonomía de errores.
func NewRouter(d Dispatcher, routes []config.Route, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		serve(d, opts.Retryable, w, req, &dispatch.Request{
			Method:     req.Method,
			Host:       req.Host,
			Path:       req.URL.Path,
			RoutingErr: dispatch.ErrRouteNotFound,
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		serve(d, opts.Retryable, w, req, &dispatch.Request{
			Method:     req.Method,
			Host:       req.Host,
			Path:       req.URL.Path,
			RoutingErr: dispatch.ErrMethodNotAllowed,
		})
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	for _, rt := range routes {
		route := rt // captura por iteración
		allow := allowedMethods(route)
		h := func(w http.ResponseWriter, req *http.Request) {
			serve(d, opts.Retryable, w, req, buildRequest(req, route, allow))
		}
		for _, m := range allow {
			r.Method(m, route.Pattern, http.HandlerFunc(h))
		}
	}

	return middlewares.Chain(r,
		middlewares.WithRequestID(),
		middlewares.WithRecover(),
		middlewares.WithLogging(),
		WithMetrics,
	)
}

// allowedMethods normaliza los métodos de la ruta y agrega OPTIONS cuando
// la ruta pide OPTIONS automático.
func allowedMethods(rt config.Route) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range rt.Methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	if len(out) == 0 {
		out = append(out, http.MethodGet)
		seen[http.MethodGet] = true
	}
	if rt.AutoOptions && !seen[http.MethodOptions] {
		out = append(out, http.MethodOptions)
	}
	sort.Strings(out)
	return out
}

// buildRequest arma el request de dispatch: endpoint declarado en la ruta y
// view args desde los parámetros de URL que extrajo chi.
func buildRequest(req *http.Request, rt config.Route, allow []string) *dispatch.Request {
	args := orm.Args{}
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			args[key] = rctx.URLParams.Values[i]
		}
	}
	return &dispatch.Request{
		Method:      req.Method,
		Host:        req.Host,
		Path:        req.URL.Path,
		Endpoint:    rt.Endpoint,
		ViewArgs:    args,
		AutoOptions: rt.AutoOptions,
		Allow:       allow,
	}
}

// serve corre el dispatch y escribe el resultado o el error mapeado.
func serve(d Dispatcher, retryable func(error) bool, w http.ResponseWriter, req *http.Request, dreq *dispatch.Request) {
	result, err := d.Dispatch(req.Context(), dreq)
	if err != nil {
		status, code := statusFor(err, retryable)
		if status >= 500 {
			logger.From(req.Context()).Error("dispatch failed",
				logger.Endpoint(dreq.Endpoint),
				logger.Err(err),
			)
		}
		writeError(w, status, code, err)
		return
	}
	writeResult(w, result)
}

// writeResult serializa el valor retornado por el handler:
// *dispatch.Response manda status/headers/body tal cual; string es HTML;
// []byte es binario; nil es 204; cualquier otra cosa va como JSON.
func writeResult(w http.ResponseWriter, result any) {
	switch v := result.(type) {
	case *dispatch.Response:
		for key, vals := range v.Header {
			for _, val := range vals {
				w.Header().Add(key, val)
			}
		}
		status := v.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = w.Write(v.Body)
	case string:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(v))
	case []byte:
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(v)
	case nil:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(v)
	}
}
