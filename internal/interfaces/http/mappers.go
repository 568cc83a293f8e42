package http

import (
	"github.com/devalicin1/Inventory-sub005/internal/application/dto"
	"github.com/devalicin1/Inventory-sub005/internal/application/posting"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
)

func toSourceRef(in *dto.SourceRefDTO) *entity.SourceRef {
	if in == nil {
		return nil
	}
	return &entity.SourceRef{Kind: entity.SourceKind(in.Kind), DocumentID: in.DocumentID, Line: in.Line}
}

func toMovementDTO(ev *entity.MovementEvent) dto.MovementEventDTO {
	out := dto.MovementEventDTO{
		ID:           ev.ID,
		ProductID:    ev.ProductID,
		Type:         string(ev.Type),
		Quantity:     ev.Quantity,
		FromLocation: ev.FromLocation,
		ToLocation:   ev.ToLocation,
		BatchID:      ev.BatchID,
		SerialID:     ev.SerialID,
		UnitCost:     ev.UnitCost,
		ActorID:      ev.ActorID,
		Reason:       ev.Reason,
		RecordedAt:   ev.RecordedAt,
	}
	if ev.SourceRef != nil {
		out.SourceRef = &dto.SourceRefDTO{
			Kind:       string(ev.SourceRef.Kind),
			DocumentID: ev.SourceRef.DocumentID,
			Line:       ev.SourceRef.Line,
		}
	}
	return out
}

func toBalanceDTO(b *entity.StockBalance) dto.StockBalanceDTO {
	return dto.StockBalanceDTO{
		StockKey:           b.Key.String(),
		ProductID:          b.Key.ProductID,
		LocationID:         b.Key.LocationID,
		BatchID:            b.Key.BatchID,
		SerialID:           b.Key.SerialID,
		QuantityOnHand:     b.QuantityOnHand,
		AverageUnitCost:    b.AverageUnitCost,
		LastAppliedEventID: b.LastAppliedEventID,
		UpdatedAt:          b.UpdatedAt,
	}
}

func toPostingResponse(r posting.Result) dto.PostingResponse {
	ids := r.EventIDs
	if ids == nil {
		ids = []string{}
	}
	return dto.PostingResponse{EventIDs: ids, Posted: r.Posted}
}

func toAlertDTO(a entity.LowStockAlert) dto.LowStockAlertDTO {
	return dto.LowStockAlertDTO{
		ProductID: a.ProductID,
		OnHand:    a.OnHand,
		Minimum:   a.Minimum,
		Deficit:   a.Deficit(),
		RaisedAt:  a.RaisedAt,
	}
}
