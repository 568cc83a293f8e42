package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLocation es la ubicación usada cuando el evento no trae origen ni destino.
const DefaultLocation = "default"

// StockKey es la identidad bajo la que se agregan cantidad y costo:
// producto + ubicación + lote opcional + serial opcional.
type StockKey struct {
	ProductID  string
	LocationID string
	BatchID    string
	SerialID   string
}

// String devuelve la forma canónica de la clave. Lote y serial van en espacios de nombres
// distintos, así (p, loc, lote "5") nunca colisiona con (p, loc, serial "5").
func (k StockKey) String() string {
	var b strings.Builder
	b.WriteString("p:")
	b.WriteString(escapeSegment(k.ProductID))
	b.WriteString("|loc:")
	b.WriteString(escapeSegment(k.LocationID))
	if k.BatchID != "" {
		b.WriteString("|batch:")
		b.WriteString(escapeSegment(k.BatchID))
	}
	if k.SerialID != "" {
		b.WriteString("|serial:")
		b.WriteString(escapeSegment(k.SerialID))
	}
	return b.String()
}

// StockBalance representa el saldo actual de una clave de stock (fila de la proyección materializada).
// Solo la modifica el agregador del ledger, dentro de la transacción de su clave.
type StockBalance struct {
	TenantID           string
	Key                StockKey
	QuantityOnHand     decimal.Decimal // puede ser negativo si la aplicación permite backorders
	AverageUnitCost    decimal.Decimal // costo promedio ponderado, nunca negativo
	LastAppliedEventID string
	Version            int64 // 0 = la fila aún no existe
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewStockBalance devuelve el saldo cero de una clave sin movimientos.
func NewStockBalance(tenantID string, key StockKey) *StockBalance {
	return &StockBalance{
		TenantID:        tenantID,
		Key:             key,
		QuantityOnHand:  decimal.Zero,
		AverageUnitCost: decimal.Zero,
	}
}

// Exists informa si la fila ya fue persistida.
func (b *StockBalance) Exists() bool {
	return b.Version > 0
}
