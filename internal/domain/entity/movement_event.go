package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType es el tipo (enum cerrado) de un movimiento de inventario.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeReceive        MovementType = "RECEIVE"         // recepción de compra
	MovementTypeProduce        MovementType = "PRODUCE"         // producto terminado de una orden de producción
	MovementTypeAdjustIncrease MovementType = "ADJUST_INCREASE" // ajuste positivo
	MovementTypeConsume        MovementType = "CONSUME"         // consumo en producción
	MovementTypeShip           MovementType = "SHIP"            // despacho / venta
	MovementTypeAdjustDecrease MovementType = "ADJUST_DECREASE" // ajuste negativo
	MovementTypeTransfer       MovementType = "TRANSFER"        // traslado entre ubicaciones
	MovementTypeCount          MovementType = "COUNT"           // conteo físico (informativo)
)

// MovementTypes lista todos los tipos válidos.
var MovementTypes = []MovementType{
	MovementTypeReceive,
	MovementTypeProduce,
	MovementTypeAdjustIncrease,
	MovementTypeConsume,
	MovementTypeShip,
	MovementTypeAdjustDecrease,
	MovementTypeTransfer,
	MovementTypeCount,
}

// Valid informa si el tipo pertenece al enum.
func (t MovementType) Valid() bool {
	for _, mt := range MovementTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// MovementEvent representa un movimiento de inventario inmutable del log (append-only).
// Las correcciones se expresan como eventos nuevos; nunca se modifica ni se borra.
type MovementEvent struct {
	ID           string
	TenantID     string
	ProductID    string
	Type         MovementType
	Quantity     decimal.Decimal  // magnitud indicada por el productor (el signo lo decide el tipo)
	FromLocation string           // opcional
	ToLocation   string           // opcional
	BatchID      string           // opcional
	SerialID     string           // opcional
	UnitCost     *decimal.Decimal // opcional, solo relevante en entradas
	SourceRef    *SourceRef       // opcional: línea de OC, tarea de producción, sync externo
	ActorID      string
	Reason       string
	RecordedAt   time.Time // asignado por el servidor
}

// HasSourceRef informa si el evento proviene de un documento de negocio.
func (e *MovementEvent) HasSourceRef() bool {
	return e.SourceRef != nil && e.SourceRef.DocumentID != ""
}
