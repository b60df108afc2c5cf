// Package tenant resuelve el website (tenant) de un request a partir del
// host header. La búsqueda corre dentro de una transacción read-only con
// identidad de sistema, abierta y cerrada por el pipeline.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound indica que ningún website matchea el host.
// Es un error de nivel routing: nunca se reintenta.
var ErrNotFound = errors.New("no website matches host")

// IsNotFound reporta si el error es una falla de resolución de tenant.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Website es la configuración de un tenant. Inmutable por request;
// el core la lee, nunca la escribe.
type Website struct {
	ID   int64
	Name string
	Host string
	// ApplicationUserID es el usuario por defecto con el que corren las
	// transacciones del dispatch para este website.
	ApplicationUserID int64
	// CompanyID es la organización asociada, inyectada en el context-dict.
	CompanyID int64
	// Locale es el idioma por defecto del website (ej: "es_AR").
	Locale string
}

// Querier es lo mínimo que el resolver necesita de una transacción.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Resolver busca websites por host.
type Resolver struct{}

// NewResolver crea un Resolver.
func NewResolver() *Resolver { return &Resolver{} }

const queryByHost = `
SELECT id, name, host, application_user, company, locale
FROM website
WHERE host = $1
LIMIT 1`

// GetFromHost resuelve el website para un host header.
// El puerto se descarta antes de comparar.
func (r *Resolver) GetFromHost(ctx context.Context, q Querier, host string) (*Website, error) {
	h := CanonicalHost(host)
	if h == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, host)
	}

	var w Website
	err := q.QueryRow(ctx, queryByHost, h).
		Scan(&w.ID, &w.Name, &w.Host, &w.ApplicationUserID, &w.CompanyID, &w.Locale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, h)
		}
		return nil, err
	}
	return &w, nil
}

// CanonicalHost normaliza un host header: minúsculas y sin puerto.
func CanonicalHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
