package txn

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotOwner indica commit/rollback sobre un handle hijo: solo el
	// handle top-level es dueño de la conexión.
	ErrNotOwner = errors.New("transaction handle does not own the connection")
	// ErrFinished indica una operación sobre una transacción ya cerrada.
	ErrFinished = errors.New("transaction already finished")
)

type txState int

const (
	stateActive txState = iota
	stateCommitted
	stateRolledBack
)

// Transaction es el handle de una transacción con scope
// (database, user_id, context-dict).
//
// Invariantes:
//   - exactamente un handle top-level abre la conexión por intento;
//   - WithContext crea hijos que comparten la conexión y capas de contexto,
//     nunca una segunda conexión;
//   - Close libera la conexión en todos los caminos de salida (rollback si
//     no hubo commit explícito).
type Transaction struct {
	database string
	userID   int64
	readonly bool

	tx     pgx.Tx
	values map[string]any
	parent *Transaction
	state  txState
}

// Database retorna la base de datos del scope.
func (t *Transaction) Database() string { return t.database }

// UserID retorna el usuario actuante del scope.
func (t *Transaction) UserID() int64 { return t.userID }

// ReadOnly indica si la transacción se abrió en modo read-only.
func (t *Transaction) ReadOnly() bool { return t.readonly }

// Value lee una clave del context-dict. Los hijos ven sus propias capas
// primero y delegan al padre.
func (t *Transaction) Value(key string) any {
	if v, ok := t.values[key]; ok {
		return v
	}
	if t.parent != nil {
		return t.parent.Value(key)
	}
	return nil
}

// WithContext retorna un handle hijo que agrega pares clave-valor sobre la
// transacción actual sin abrir otra conexión.
func (t *Transaction) WithContext(extra map[string]any) *Transaction {
	values := make(map[string]any, len(extra))
	for k, v := range extra {
		values[k] = v
	}
	return &Transaction{
		database: t.database,
		userID:   t.userID,
		readonly: t.readonly,
		tx:       t.tx,
		values:   values,
		parent:   t,
	}
}

// root encuentra el handle top-level.
func (t *Transaction) root() *Transaction {
	r := t
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Commit confirma la transacción. Solo el handle top-level puede hacerlo.
func (t *Transaction) Commit(ctx context.Context) error {
	if t.parent != nil {
		return ErrNotOwner
	}
	if t.state != stateActive {
		return ErrFinished
	}
	if err := t.tx.Commit(ctx); err != nil {
		return err
	}
	t.state = stateCommitted
	return nil
}

// Rollback revierte la transacción. Solo el handle top-level puede hacerlo.
// Idempotente una vez terminada.
func (t *Transaction) Rollback(ctx context.Context) error {
	if t.parent != nil {
		return ErrNotOwner
	}
	if t.state != stateActive {
		return nil
	}
	t.state = stateRolledBack
	return t.tx.Rollback(ctx)
}

// Close garantiza la liberación de la conexión en todos los caminos:
// si no hubo commit, revierte. Seguro de llamar más de una vez.
func (t *Transaction) Close(ctx context.Context) error {
	r := t.root()
	if r.state != stateActive {
		return nil
	}
	return r.Rollback(ctx)
}

// ---- Passthroughs de acceso a datos ----
// Los métodos de modelo que necesitan SQL usan el handle directamente.

// Query ejecuta una consulta dentro de la transacción.
func (t *Transaction) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.tx.Query(ctx, sql, args...)
}

// QueryRow ejecuta una consulta de una fila dentro de la transacción.
func (t *Transaction) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.tx.QueryRow(ctx, sql, args...)
}

// Exec ejecuta un statement dentro de la transacción.
func (t *Transaction) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.tx.Exec(ctx, sql, args...)
}
