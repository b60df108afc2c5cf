package app

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/naiad/internal/dispatch"
	"github.com/dropDatabas3/naiad/internal/tenant"
	"github.com/dropDatabas3/naiad/internal/txn"
)

// pgTxn adapta *txn.Transaction a la interfaz que consume el pipeline.
// Solo WithContext necesita wrapping: debe retornar el tipo de interfaz.
type pgTxn struct {
	*txn.Transaction
}

func (t pgTxn) WithContext(extra map[string]any) dispatch.Txn {
	return pgTxn{t.Transaction.WithContext(extra)}
}

// pgOpener adapta el txn.Manager al Opener del pipeline.
type pgOpener struct {
	manager *txn.Manager
}

func (o pgOpener) Begin(ctx context.Context, database string, userID int64, ctxvals map[string]any, readonly bool) (dispatch.Txn, error) {
	t, err := o.manager.Begin(ctx, database, userID, ctxvals, readonly)
	if err != nil {
		return nil, err
	}
	return pgTxn{t}, nil
}

// tenantSource corre el resolver de websites sobre la transacción del probe.
type tenantSource struct {
	resolver *tenant.Resolver
}

func (s tenantSource) GetFromHost(ctx context.Context, tx dispatch.Txn, host string) (*tenant.Website, error) {
	q, ok := tx.(tenant.Querier)
	if !ok {
		return nil, fmt.Errorf("transaction %T does not support queries", tx)
	}
	return s.resolver.GetFromHost(ctx, q, host)
}
