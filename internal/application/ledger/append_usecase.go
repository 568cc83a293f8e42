package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devalicin1/Inventory-sub005/internal/application/ports"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/inventory"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// AppendMovementUseCase registra un movimiento en el log y lo entrega al agregador.
// Es la única puerta de entrada de eventos: valida en el borde, asigna id y fecha de servidor.
type AppendMovementUseCase struct {
	events     repository.MovementEventRepository
	dispatcher Dispatcher
	metrics    ports.Metrics
	log        *logger.Logger
	now        func() time.Time
}

// NewAppendMovementUseCase construye el caso de uso.
func NewAppendMovementUseCase(
	events repository.MovementEventRepository,
	dispatcher Dispatcher,
	metrics ports.Metrics,
	log *logger.Logger,
) *AppendMovementUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &AppendMovementUseCase{
		events:     events,
		dispatcher: dispatcher,
		metrics:    metrics,
		log:        log.Component("appender"),
		now:        time.Now,
	}
}

// Append valida ev, lo persiste y lo despacha. Devuelve el evento tal como quedó en el log.
// Si el despacho falla el evento ya es durable: se registra el error y el Replayer lo aplicará.
// Con SourceRef repetida devuelve domain.ErrDuplicateSourceRef.
func (uc *AppendMovementUseCase) Append(ctx context.Context, ev entity.MovementEvent) (*entity.MovementEvent, error) {
	ev = inventory.NormalizeEvent(ev)
	if err := inventory.ValidateEvent(ev); err != nil {
		return nil, err
	}
	ev.ID = uuid.New().String()
	ev.RecordedAt = uc.now().UTC().Truncate(time.Microsecond)

	if err := uc.events.Append(ctx, &ev); err != nil {
		return nil, fmt.Errorf("append movement: %w", err)
	}
	uc.metrics.EventAppended(string(ev.Type))

	if err := uc.dispatcher.Dispatch(ctx, ev); err != nil {
		uc.metrics.DispatchFailed("append")
		uc.log.Error().Err(err).
			Str("event_id", ev.ID).
			Str("tenant_id", ev.TenantID).
			Msg("evento registrado pero no aplicado, queda pendiente para replay")
	}
	return &ev, nil
}

// GetByID devuelve un evento del log.
func (uc *AppendMovementUseCase) GetByID(ctx context.Context, tenantID, id string) (*entity.MovementEvent, error) {
	return uc.events.GetByID(ctx, tenantID, id)
}

// ListByProduct devuelve el historial (auditoría) de un producto, más reciente primero.
func (uc *AppendMovementUseCase) ListByProduct(ctx context.Context, tenantID, productID string, limit, offset int) ([]*entity.MovementEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return uc.events.ListByProduct(ctx, tenantID, inventory.NormalizeID(productID), limit, offset)
}
