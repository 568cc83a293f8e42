package dto

import "github.com/shopspring/decimal"

// PostedQuery parámetros de GET /api/posting/posted.
type PostedQuery struct {
	Kind       string `query:"kind" validate:"required,oneof=purchase_order production_task external"`
	DocumentID string `query:"document_id" validate:"required"`
	Line       int    `query:"line" validate:"min=0"`
}

// PostedResponse indica si una línea de documento ya generó su movimiento.
type PostedResponse struct {
	Posted   bool     `json:"posted"`
	EventIDs []string `json:"event_ids"`
}

// PostingResponse resultado de un posteo: Posted=false cuando ya estaba registrado.
type PostingResponse struct {
	EventIDs []string `json:"event_ids"`
	Posted   bool     `json:"posted"`
}

// ReceiveLineRequest body para POST /api/purchase-orders/:poId/lines/:line/receive.
// Sin location_id se recibe en la ubicación por defecto.
type ReceiveLineRequest struct {
	ProductID  string           `json:"product_id" validate:"required"`
	LocationID string           `json:"location_id,omitempty"`
	BatchID    string           `json:"batch_id,omitempty"`
	SerialID   string           `json:"serial_id,omitempty"`
	Quantity   decimal.Decimal  `json:"quantity" swaggertype:"string"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty" swaggertype:"string"`
}

// ComponentRequest insumo consumido por una tarea de producción.
type ComponentRequest struct {
	ProductID  string          `json:"product_id" validate:"required"`
	LocationID string          `json:"location_id" validate:"required"`
	BatchID    string          `json:"batch_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity" swaggertype:"string"`
}

// CompleteTaskRequest body para POST /api/production-tasks/:taskId/complete.
type CompleteTaskRequest struct {
	ProductID  string             `json:"product_id" validate:"required"`
	LocationID string             `json:"location_id" validate:"required"`
	BatchID    string             `json:"batch_id,omitempty"`
	Quantity   decimal.Decimal    `json:"quantity" swaggertype:"string"`
	UnitCost   *decimal.Decimal   `json:"unit_cost,omitempty" swaggertype:"string"`
	Components []ComponentRequest `json:"components" validate:"dive"`
}

// CompleteTaskResponse un resultado por línea (0 = producto terminado).
type CompleteTaskResponse struct {
	Lines []PostingResponse `json:"lines"`
}

// SyncMovementRequest body para POST /api/sync/movements (integraciones externas).
// Las cantidades llegan como número JSON.
type SyncMovementRequest struct {
	System       string   `json:"system" validate:"required,max=100"`
	ExternalID   string   `json:"external_id" validate:"required,max=200"`
	ProductID    string   `json:"product_id" validate:"required"`
	Type         string   `json:"movement_type" validate:"required,oneof=RECEIVE PRODUCE ADJUST_INCREASE CONSUME SHIP ADJUST_DECREASE TRANSFER COUNT"`
	Quantity     float64  `json:"quantity"`
	UnitCost     *float64 `json:"unit_cost,omitempty"`
	FromLocation string   `json:"from_location,omitempty"`
	ToLocation   string   `json:"to_location,omitempty"`
	BatchID      string   `json:"batch_id,omitempty"`
	SerialID     string   `json:"serial_id,omitempty"`
	Reason       string   `json:"reason,omitempty" validate:"max=500"`
}
