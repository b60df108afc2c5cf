package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dropDatabas3/naiad/internal/dispatch"
	"github.com/dropDatabas3/naiad/internal/tenant"
)

// apiError es el payload JSON de las respuestas de error.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor mapea la taxonomía de errores del dispatch a status HTTP.
// retryable detecta la clase transitoria: si un error transitorio llegó
// hasta acá es porque el presupuesto de reintentos se agotó.
func statusFor(err error, retryable func(error) bool) (int, string) {
	switch {
	case errors.Is(err, dispatch.ErrRouteNotFound):
		return http.StatusNotFound, "route_not_found"
	case errors.Is(err, dispatch.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case tenant.IsNotFound(err):
		return http.StatusNotFound, "website_not_found"
	case errors.Is(err, dispatch.ErrEndpointNotFound):
		return http.StatusNotFound, "endpoint_not_found"
	case errors.Is(err, dispatch.ErrMissingActiveID):
		return http.StatusBadRequest, "missing_active_id"
	case retryable != nil && retryable(err):
		return http.StatusServiceUnavailable, "transient_conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError escribe la respuesta de error JSON. Los 5xx nunca filtran el
// mensaje interno del error.
func writeError(w http.ResponseWriter, status int, code string, err error) {
	body := apiError{Code: code, Message: err.Error()}
	if status >= 500 {
		body.Message = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
