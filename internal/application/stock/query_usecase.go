package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/inventory"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
)

// ProductBalance saldo agregado de un producto sobre todas sus claves.
type ProductBalance struct {
	ProductID       string
	QuantityOnHand  decimal.Decimal
	AverageUnitCost decimal.Decimal
	Keys            int
}

// QueryUseCase lee la proyección de saldos. Nunca lee el log.
type QueryUseCase struct {
	balances repository.StockBalanceRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(balances repository.StockBalanceRepository) *QueryUseCase {
	return &QueryUseCase{balances: balances}
}

// GetBalance devuelve el saldo de una clave (cero si no tiene movimientos).
// La clave se normaliza igual que en el agregador; sin ubicación se usa la ubicación por defecto.
func (uc *QueryUseCase) GetBalance(ctx context.Context, tenantID string, key entity.StockKey) (*entity.StockBalance, error) {
	key = entity.StockKey{
		ProductID:  inventory.NormalizeID(key.ProductID),
		LocationID: inventory.NormalizeID(key.LocationID),
		BatchID:    inventory.NormalizeID(key.BatchID),
		SerialID:   inventory.NormalizeID(key.SerialID),
	}
	if key.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if key.LocationID == "" {
		key.LocationID = entity.DefaultLocation
	}
	b, err := uc.balances.Get(ctx, inventory.NormalizeID(tenantID), key)
	if err != nil {
		return nil, fmt.Errorf("get balance %s: %w", key, err)
	}
	return b, nil
}

// ListByProduct devuelve el saldo de cada clave del producto.
func (uc *QueryUseCase) ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.StockBalance, error) {
	productID = inventory.NormalizeID(productID)
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	rows, err := uc.balances.ListByProduct(ctx, inventory.NormalizeID(tenantID), productID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	return rows, nil
}

// GetProductBalance suma la cantidad de todas las claves del producto. El costo es el promedio
// ponderado por cantidad de las claves con saldo positivo (0 si ninguna lo tiene).
func (uc *QueryUseCase) GetProductBalance(ctx context.Context, tenantID, productID string) (*ProductBalance, error) {
	rows, err := uc.ListByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return Aggregate(inventory.NormalizeID(productID), rows), nil
}

// Aggregate combina los saldos por clave de un producto.
func Aggregate(productID string, rows []*entity.StockBalance) *ProductBalance {
	out := &ProductBalance{ProductID: productID, QuantityOnHand: decimal.Zero, AverageUnitCost: decimal.Zero, Keys: len(rows)}
	positiveQty, value := decimal.Zero, decimal.Zero
	for _, b := range rows {
		out.QuantityOnHand = out.QuantityOnHand.Add(b.QuantityOnHand)
		if b.QuantityOnHand.IsPositive() {
			positiveQty = positiveQty.Add(b.QuantityOnHand)
			value = value.Add(b.QuantityOnHand.Mul(b.AverageUnitCost))
		}
	}
	if positiveQty.IsPositive() {
		out.AverageUnitCost = value.Div(positiveQty)
	}
	return out
}
