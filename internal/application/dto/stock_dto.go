package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceQuery filtros de GET /api/stock/balance.
type BalanceQuery struct {
	ProductID  string `query:"product_id" validate:"required"`
	LocationID string `query:"location_id"`
	BatchID    string `query:"batch_id"`
	SerialID   string `query:"serial_id"`
}

// StockBalanceDTO saldo de una clave de stock.
type StockBalanceDTO struct {
	StockKey           string          `json:"stock_key"`
	ProductID          string          `json:"product_id"`
	LocationID         string          `json:"location_id"`
	BatchID            string          `json:"batch_id,omitempty"`
	SerialID           string          `json:"serial_id,omitempty"`
	QuantityOnHand     decimal.Decimal `json:"quantity_on_hand" swaggertype:"string"`
	AverageUnitCost    decimal.Decimal `json:"average_unit_cost" swaggertype:"string"`
	LastAppliedEventID string          `json:"last_applied_event_id,omitempty"`
	UpdatedAt          time.Time       `json:"updated_at,omitempty"`
}

// ProductBalanceDTO saldo agregado de un producto sobre todas sus claves.
type ProductBalanceDTO struct {
	ProductID       string          `json:"product_id"`
	QuantityOnHand  decimal.Decimal `json:"quantity_on_hand" swaggertype:"string"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost" swaggertype:"string"`
	Keys            int             `json:"keys"`
}
