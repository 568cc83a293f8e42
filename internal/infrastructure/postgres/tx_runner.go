package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInKey inicia una transacción, ejecuta fn con el repositorio de saldos atado a la tx y hace
// Commit o Rollback. La fila de la clave se bloquea con SELECT FOR UPDATE dentro de fn; las
// transacciones de otras claves no se esperan entre sí. Deadlocks y fallas de serialización
// se devuelven como domain.ErrTransientConflict.
func (r *TxRunner) RunInKey(ctx context.Context, tenantID string, key entity.StockKey, fn func(repo repository.StockBalanceTxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStockBalanceTxRepository(tx)); err != nil {
		return mapTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapTxError(fmt.Errorf("commit transaction %s/%s: %w", tenantID, key, err))
	}
	return nil
}

func mapTxError(err error) error {
	if isRetryableTxError(err) {
		return fmt.Errorf("%w: %w", domain.ErrTransientConflict, err)
	}
	return err
}
