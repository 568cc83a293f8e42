package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SetMinimumRequest body para PUT /api/products/:productId/minimum.
type SetMinimumRequest struct {
	Minimum decimal.Decimal `json:"minimum" swaggertype:"string"`
}

// ProductMinimumDTO mínimo configurado.
type ProductMinimumDTO struct {
	ProductID string          `json:"product_id"`
	Minimum   decimal.Decimal `json:"minimum" swaggertype:"string"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LowStockAlertDTO producto por debajo de su mínimo.
type LowStockAlertDTO struct {
	ProductID string          `json:"product_id"`
	OnHand    decimal.Decimal `json:"on_hand" swaggertype:"string"`
	Minimum   decimal.Decimal `json:"minimum" swaggertype:"string"`
	Deficit   decimal.Decimal `json:"deficit" swaggertype:"string"`
	RaisedAt  time.Time       `json:"raised_at"`
}

// LowStockAlertList respuesta de GET /api/alerts/low-stock.
type LowStockAlertList struct {
	Total  int                `json:"total"`
	Alerts []LowStockAlertDTO `json:"alerts"`
}
