package repository

import (
	"context"
	"time"

	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
)

// EventCursor posición dentro del log de un tenant (orden recorded_at, id).
type EventCursor struct {
	RecordedAt time.Time
	ID         string
}

// MovementEventRepository define el puerto del log de movimientos (append-only, por tenant).
// No existen Update ni Delete: las correcciones son eventos nuevos.
type MovementEventRepository interface {
	// Append persiste el evento. Si trae SourceRef, la unicidad (tenant, sourceRef) la
	// garantiza el almacén en la misma escritura: devuelve domain.ErrDuplicateSourceRef.
	Append(ctx context.Context, ev *entity.MovementEvent) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.MovementEvent, error)
	ListByProduct(ctx context.Context, tenantID, productID string, limit, offset int) ([]*entity.MovementEvent, error)

	// ListAfter devuelve hasta limit eventos posteriores al cursor, en orden temporal.
	// Cursor cero = desde el inicio del log.
	ListAfter(ctx context.Context, tenantID string, after EventCursor, limit int) ([]*entity.MovementEvent, error)
	ListTenants(ctx context.Context) ([]string, error)
}

// SourceRefRepository es el índice (referencia de origen) -> [ids de evento].
type SourceRefRepository interface {
	FindEventIDs(ctx context.Context, tenantID string, ref entity.SourceRef) ([]string, error)
}
