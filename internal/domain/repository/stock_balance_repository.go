package repository

import (
	"context"

	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockBalanceRepository define la lectura de la proyección de saldos.
// Es lo único que lee el resto de la aplicación para saber "cuánto hay".
type StockBalanceRepository interface {
	// Get devuelve el saldo de la clave, o el saldo cero si la clave no tiene movimientos.
	Get(ctx context.Context, tenantID string, key entity.StockKey) (*entity.StockBalance, error)
	ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.StockBalance, error)
	// SumOnHandByProduct suma quantityOnHand de todas las claves de cada producto.
	SumOnHandByProduct(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error)
}

// StockBalanceTxRepository es la escritura de la proyección; solo existe dentro de la
// transacción de una clave (ver ledger.TxRunner) y solo la usa el agregador.
type StockBalanceTxRepository interface {
	// GetForUpdate lee el saldo de la clave dentro de la transacción (saldo cero si no existe).
	GetForUpdate(ctx context.Context, tenantID string, key entity.StockKey) (*entity.StockBalance, error)
	// IsApplied consulta el conjunto de eventos ya aplicados a la clave.
	IsApplied(ctx context.Context, tenantID string, key entity.StockKey, eventID string) (bool, error)
	// Save escribe el nuevo saldo y registra eventID como aplicado. Devuelve
	// domain.ErrTransientConflict si otro escritor modificó la fila desde la lectura.
	Save(ctx context.Context, balance *entity.StockBalance, eventID string) error
}
