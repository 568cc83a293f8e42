package ledger

import (
	"context"
	"errors"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
)

// InlineDispatcher aplica el evento en la misma goroutine que lo registró.
type InlineDispatcher struct {
	applier Applier
}

var _ Dispatcher = (*InlineDispatcher)(nil)

// NewInlineDispatcher construye el despachador síncrono.
func NewInlineDispatcher(applier Applier) *InlineDispatcher {
	return &InlineDispatcher{applier: applier}
}

// Dispatch aplica el evento. Los rechazos de validación ya quedaron registrados por el
// agregador y no se devuelven: reintentarlos nunca tendrá éxito.
func (d *InlineDispatcher) Dispatch(ctx context.Context, ev entity.MovementEvent) error {
	_, err := d.applier.Apply(ctx, ev.TenantID, ev)
	return dropPermanent(err)
}

// dropPermanent descarta los errores que una reentrega no puede resolver.
func dropPermanent(err error) error {
	if err == nil || errors.Is(err, domain.ErrInvalidInput) {
		return nil
	}
	return err
}
