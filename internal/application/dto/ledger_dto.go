package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceRefDTO referencia al documento de negocio que origina un movimiento.
type SourceRefDTO struct {
	Kind       string `json:"kind" validate:"required,oneof=purchase_order production_task external"`
	DocumentID string `json:"document_id" validate:"required"`
	Line       int    `json:"line" validate:"min=0"`
}

// AppendMovementRequest body para POST /api/ledger/movements.
// Tenant y actor salen del token.
type AppendMovementRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	Type         string           `json:"movement_type" validate:"required,oneof=RECEIVE PRODUCE ADJUST_INCREASE CONSUME SHIP ADJUST_DECREASE TRANSFER COUNT"`
	Quantity     decimal.Decimal  `json:"quantity" swaggertype:"string"`
	FromLocation string           `json:"from_location,omitempty"`
	ToLocation   string           `json:"to_location,omitempty"`
	BatchID      string           `json:"batch_id,omitempty"`
	SerialID     string           `json:"serial_id,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty" swaggertype:"string"`
	SourceRef    *SourceRefDTO    `json:"source_ref,omitempty"`
	Reason       string           `json:"reason,omitempty" validate:"max=500"`
}

// AppendMovementResponse respuesta de un append exitoso.
type AppendMovementResponse struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
}

// MovementEventDTO evento del log tal como se expone en la auditoría.
type MovementEventDTO struct {
	ID           string           `json:"id"`
	ProductID    string           `json:"product_id"`
	Type         string           `json:"movement_type"`
	Quantity     decimal.Decimal  `json:"quantity" swaggertype:"string"`
	FromLocation string           `json:"from_location,omitempty"`
	ToLocation   string           `json:"to_location,omitempty"`
	BatchID      string           `json:"batch_id,omitempty"`
	SerialID     string           `json:"serial_id,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty" swaggertype:"string"`
	SourceRef    *SourceRefDTO    `json:"source_ref,omitempty"`
	ActorID      string           `json:"actor_id,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	RecordedAt   time.Time        `json:"recorded_at"`
}

// MovementListResponse página del log de un producto.
type MovementListResponse struct {
	Items []MovementEventDTO `json:"items"`
	Page  PageResponse       `json:"page"`
}
