package posting

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/inventory"
)

// ReceiveLineInput recepción de una línea de orden de compra.
type ReceiveLineInput struct {
	TenantID        string
	ActorID         string
	PurchaseOrderID string
	Line            int
	ProductID       string
	LocationID      string
	BatchID         string
	SerialID        string
	Quantity        decimal.Decimal
	UnitCost        *decimal.Decimal
}

// ReceivePurchaseOrderLine registra un RECEIVE por la línea. Una segunda llamada con la misma
// orden y línea no agrega nada. Si la validación falla el documento no debe marcarse recibido.
func (p *Poster) ReceivePurchaseOrderLine(ctx context.Context, in ReceiveLineInput) (Result, error) {
	ev := entity.MovementEvent{
		TenantID:   in.TenantID,
		ProductID:  in.ProductID,
		Type:       entity.MovementTypeReceive,
		Quantity:   in.Quantity,
		ToLocation: in.LocationID,
		BatchID:    in.BatchID,
		SerialID:   in.SerialID,
		UnitCost:   in.UnitCost,
		ActorID:    in.ActorID,
		Reason:     "recepción de orden de compra",
		SourceRef: &entity.SourceRef{
			Kind:       entity.SourceKindPurchaseOrder,
			DocumentID: in.PurchaseOrderID,
			Line:       in.Line,
		},
	}
	return p.Post(ctx, ev)
}

// ComponentInput insumo consumido por una tarea de producción.
type ComponentInput struct {
	ProductID  string
	LocationID string
	BatchID    string
	Quantity   decimal.Decimal
}

// ProductionTaskInput completar una tarea de producción.
type ProductionTaskInput struct {
	TenantID   string
	ActorID    string
	TaskID     string
	ProductID  string
	LocationID string
	BatchID    string
	Quantity   decimal.Decimal
	UnitCost   *decimal.Decimal // si falta se deriva del costo promedio de los insumos
	Components []ComponentInput
}

// CompleteProductionTask registra el PRODUCE del terminado (línea 0) y un CONSUME por insumo
// (línea i+1). Cada línea es idempotente por separado, así una completitud a medias se puede
// retomar. Todas las líneas se validan antes de registrar la primera.
func (p *Poster) CompleteProductionTask(ctx context.Context, in ProductionTaskInput) ([]Result, error) {
	ref := func(line int) *entity.SourceRef {
		return &entity.SourceRef{Kind: entity.SourceKindProductionTask, DocumentID: in.TaskID, Line: line}
	}

	events := make([]entity.MovementEvent, 0, len(in.Components)+1)
	events = append(events, entity.MovementEvent{
		TenantID:   in.TenantID,
		ProductID:  in.ProductID,
		Type:       entity.MovementTypeProduce,
		Quantity:   in.Quantity,
		ToLocation: in.LocationID,
		BatchID:    in.BatchID,
		UnitCost:   in.UnitCost,
		ActorID:    in.ActorID,
		Reason:     "producción terminada",
		SourceRef:  ref(0),
	})
	for i, c := range in.Components {
		events = append(events, entity.MovementEvent{
			TenantID:     in.TenantID,
			ProductID:    c.ProductID,
			Type:         entity.MovementTypeConsume,
			Quantity:     c.Quantity,
			FromLocation: c.LocationID,
			BatchID:      c.BatchID,
			ActorID:      in.ActorID,
			Reason:       "consumo de producción",
			SourceRef:    ref(i + 1),
		})
	}
	for i := range events {
		if err := inventory.ValidateEvent(events[i]); err != nil {
			return nil, fmt.Errorf("production task %s line %d: %w", in.TaskID, i, err)
		}
	}

	if in.UnitCost == nil {
		cost, err := p.componentsCost(ctx, in)
		if err != nil {
			return nil, err
		}
		events[0].UnitCost = cost
	}

	results := make([]Result, 0, len(events))
	for i, ev := range events {
		res, err := p.Post(ctx, ev)
		if err != nil {
			return results, fmt.Errorf("production task %s line %d: %w", in.TaskID, i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// componentsCost costo unitario del terminado = Σ(cant. insumo × costo promedio) / cant. producida.
// nil si no hay insumos o ninguno tiene costo.
func (p *Poster) componentsCost(ctx context.Context, in ProductionTaskInput) (*decimal.Decimal, error) {
	if p.balances == nil || len(in.Components) == 0 {
		return nil, nil
	}
	total := decimal.Zero
	for _, c := range in.Components {
		ev := entity.MovementEvent{ProductID: c.ProductID, FromLocation: c.LocationID, BatchID: c.BatchID}
		key, _ := inventory.ResolveKey(ev)
		b, err := p.balances.Get(ctx, inventory.NormalizeID(in.TenantID), key)
		if err != nil {
			return nil, fmt.Errorf("component balance %s: %w", key, err)
		}
		total = total.Add(c.Quantity.Abs().Mul(b.AverageUnitCost))
	}
	if !total.IsPositive() {
		return nil, nil
	}
	cost := total.Div(in.Quantity.Abs()).Round(inventory.Scale)
	return &cost, nil
}

// ExternalMovementInput movimiento recibido del sistema contable externo.
// Las cantidades llegan como float y se validan antes de convertir.
type ExternalMovementInput struct {
	TenantID     string
	ActorID      string
	System       string
	ExternalID   string
	ProductID    string
	Type         entity.MovementType
	Quantity     float64
	UnitCost     *float64
	FromLocation string
	ToLocation   string
	BatchID      string
	SerialID     string
	Reason       string
}

// SyncExternalMovement registra el movimiento externo una única vez por (sistema, id externo).
func (p *Poster) SyncExternalMovement(ctx context.Context, in ExternalMovementInput) (Result, error) {
	system := strings.TrimSpace(in.System)
	externalID := strings.TrimSpace(in.ExternalID)
	if system == "" {
		return Result{}, domain.NewValidationError("system", "requerido")
	}
	if externalID == "" {
		return Result{}, domain.NewValidationError("external_id", "requerido")
	}
	qty, err := inventory.DecimalFromFloat("quantity", in.Quantity)
	if err != nil {
		return Result{}, err
	}
	var unitCost *decimal.Decimal
	if in.UnitCost != nil {
		c, err := inventory.DecimalFromFloat("unit_cost", *in.UnitCost)
		if err != nil {
			return Result{}, err
		}
		unitCost = &c
	}

	ev := entity.MovementEvent{
		TenantID:     in.TenantID,
		ProductID:    in.ProductID,
		Type:         in.Type,
		Quantity:     qty,
		FromLocation: in.FromLocation,
		ToLocation:   in.ToLocation,
		BatchID:      in.BatchID,
		SerialID:     in.SerialID,
		UnitCost:     unitCost,
		ActorID:      in.ActorID,
		Reason:       in.Reason,
		SourceRef: &entity.SourceRef{
			Kind:       entity.SourceKindExternal,
			DocumentID: system + "/" + externalID,
		},
	}
	return p.Post(ctx, ev)
}
