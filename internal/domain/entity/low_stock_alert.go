package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductMinimum es el stock mínimo configurado para un producto (punto de reorden).
type ProductMinimum struct {
	TenantID  string
	ProductID string
	Minimum   decimal.Decimal
	UpdatedAt time.Time
}

// LowStockAlert se emite cuando la suma del stock de un producto (todas sus claves)
// queda por debajo del mínimo.
type LowStockAlert struct {
	TenantID  string
	ProductID string
	OnHand    decimal.Decimal
	Minimum   decimal.Decimal
	RaisedAt  time.Time
}

// Deficit devuelve cuánto falta para alcanzar el mínimo.
func (a LowStockAlert) Deficit() decimal.Decimal {
	return a.Minimum.Sub(a.OnHand)
}
