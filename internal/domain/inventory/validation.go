package inventory

import (
	"math"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Scale decimales que conservan cantidades y costos en el almacén.
const Scale = 6

// ExceedsScale informa si d tiene más decimales de los que el almacén conserva.
func ExceedsScale(d decimal.Decimal) bool {
	return !d.Equal(d.Truncate(Scale))
}

// ValidateEvent valida un evento en el borde, antes de llegar al log o al agregador.
// Devuelve *domain.ValidationError con el primer campo inválido.
func ValidateEvent(ev entity.MovementEvent) error {
	if NormalizeID(ev.TenantID) == "" {
		return domain.NewValidationError("tenant_id", "requerido")
	}
	if NormalizeID(ev.ProductID) == "" {
		return domain.NewValidationError("product_id", "requerido")
	}
	if !ev.Type.Valid() {
		return domain.NewValidationError("movement_type", "tipo de movimiento desconocido")
	}
	if ev.Quantity.IsZero() {
		return domain.NewValidationError("quantity", "debe ser distinta de cero")
	}
	if ExceedsScale(ev.Quantity) {
		return domain.NewValidationError("quantity", "admite a lo sumo 6 decimales")
	}
	if ev.UnitCost != nil {
		if ev.UnitCost.IsNegative() {
			return domain.NewValidationError("unit_cost", "no puede ser negativo")
		}
		if ExceedsScale(*ev.UnitCost) {
			return domain.NewValidationError("unit_cost", "admite a lo sumo 6 decimales")
		}
	}
	if ev.Type == entity.MovementTypeTransfer {
		from, to := NormalizeID(ev.FromLocation), NormalizeID(ev.ToLocation)
		if from == "" && to == "" {
			return domain.NewValidationError("to_location", "un traslado requiere origen o destino")
		}
		if from != "" && from == to {
			return domain.NewValidationError("to_location", "origen y destino no pueden ser iguales")
		}
	}
	if ev.SourceRef != nil {
		if !ev.SourceRef.Kind.Valid() {
			return domain.NewValidationError("source_ref.kind", "tipo de origen desconocido")
		}
		if NormalizeID(ev.SourceRef.DocumentID) == "" {
			return domain.NewValidationError("source_ref.document_id", "requerido")
		}
		if ev.SourceRef.Line < 0 {
			return domain.NewValidationError("source_ref.line", "no puede ser negativa")
		}
	}
	return nil
}

// DecimalFromFloat convierte una cantidad recibida como float (ej. sync externo),
// rechazando NaN e infinitos. El resultado se redondea a Scale decimales.
func DecimalFromFloat(field string, f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, domain.NewValidationError(field, "debe ser un número finito")
	}
	return decimal.NewFromFloat(f).Round(Scale), nil
}
