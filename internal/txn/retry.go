package txn

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE que señalan un conflicto resoluble reintentando la
// transacción completa.
const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// Retryable es el predicado por defecto de la clase transitoria: solo los
// conflictos de serialización y deadlocks del backend califican. El pipeline
// lo toma como punto de configuración, no como chequeo fijo de tipos.
func Retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlstateSerializationFailure ||
			pgErr.Code == sqlstateDeadlockDetected
	}
	return false
}
