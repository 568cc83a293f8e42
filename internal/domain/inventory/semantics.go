package inventory

import (
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Direction indica hacia dónde mueve la cantidad un tipo de movimiento.
type Direction int

const (
	DirectionNone       Direction = iota // COUNT: informativo
	DirectionIncrease                    // +|q|
	DirectionDecrease                    // -|q|
	DirectionByLocation                  // TRANSFER: + si la clave salió del destino, - si salió del origen
)

// Semantics es la fila de la tabla de semántica de movimientos.
type Semantics struct {
	Direction   Direction
	UpdatesCost bool // recalcula el costo promedio si el evento trae costo unitario
}

var semanticsTable = map[entity.MovementType]Semantics{
	entity.MovementTypeReceive:        {Direction: DirectionIncrease, UpdatesCost: true},
	entity.MovementTypeProduce:        {Direction: DirectionIncrease, UpdatesCost: true},
	entity.MovementTypeAdjustIncrease: {Direction: DirectionIncrease, UpdatesCost: true},
	entity.MovementTypeConsume:        {Direction: DirectionDecrease},
	entity.MovementTypeShip:           {Direction: DirectionDecrease},
	entity.MovementTypeAdjustDecrease: {Direction: DirectionDecrease},
	entity.MovementTypeTransfer:       {Direction: DirectionByLocation},
	entity.MovementTypeCount:          {Direction: DirectionNone},
}

// SemanticsOf devuelve la semántica de un tipo; false si el tipo no existe.
func SemanticsOf(t entity.MovementType) (Semantics, bool) {
	s, ok := semanticsTable[t]
	return s, ok
}

// Delta devuelve el delta firmado a aplicar sobre quantityOnHand.
// viaDestination indica si la clave se resolvió por toLocation.
func (s Semantics) Delta(quantity decimal.Decimal, viaDestination bool) decimal.Decimal {
	q := quantity.Abs()
	switch s.Direction {
	case DirectionIncrease:
		return q
	case DirectionDecrease:
		return q.Neg()
	case DirectionByLocation:
		if viaDestination {
			return q
		}
		return q.Neg()
	default:
		return decimal.Zero
	}
}

// Application es una actualización de una única clave derivada de un evento.
type Application struct {
	Key         entity.StockKey
	Delta       decimal.Decimal
	UpdatesCost bool
}

// Next calcula cantidad y costo resultantes de aplicar app sobre el saldo anterior.
// El costo solo cambia en entradas con costo unitario conocido.
func (app Application) Next(prevQty, prevCost decimal.Decimal, unitCost *decimal.Decimal) (qty, cost decimal.Decimal) {
	qty = prevQty.Add(app.Delta)
	cost = prevCost
	if app.UpdatesCost && unitCost != nil && app.Delta.IsPositive() {
		cost = CostCalculator(prevQty, prevCost, app.Delta, *unitCost)
	}
	return qty, cost
}
