package ledger

import (
	"context"

	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de la transacción de una única clave de stock.
// Es el único punto de bloqueo del motor: claves distintas nunca compiten entre sí.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	RunInKey(ctx context.Context, tenantID string, key entity.StockKey,
		fn func(repo repository.StockBalanceTxRepository) error) error
}

// Applier aplica un evento del log a la proyección (lo implementa Aggregator).
type Applier interface {
	Apply(ctx context.Context, tenantID string, ev entity.MovementEvent) ([]Outcome, error)
}

// Dispatcher entrega un evento ya persistido al agregador (al menos una vez).
type Dispatcher interface {
	Dispatch(ctx context.Context, ev entity.MovementEvent) error
}
