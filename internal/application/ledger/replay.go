package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

const replayPageSize = 500

// ReplayStats resumen de una pasada de replay.
type ReplayStats struct {
	Events     int
	Applied    int
	Duplicates int
	Rejected   int
}

// Replayer vuelve a aplicar el log en orden de registro. Como la aplicación es idempotente
// sirve tanto para reconstruir la proyección como para recuperar despachos perdidos.
type Replayer struct {
	events  repository.MovementEventRepository
	applier Applier
	log     *logger.Logger
}

// NewReplayer construye el replayer.
func NewReplayer(events repository.MovementEventRepository, applier Applier, log *logger.Logger) *Replayer {
	return &Replayer{events: events, applier: applier, log: log.Component("replayer")}
}

// ReplayTenant re-aplica todos los eventos del tenant. Un evento inválido se cuenta y se
// salta; cualquier otro error detiene la pasada (se puede relanzar sin riesgo).
func (r *Replayer) ReplayTenant(ctx context.Context, tenantID string) (ReplayStats, error) {
	var stats ReplayStats
	var cursor repository.EventCursor
	for {
		page, err := r.events.ListAfter(ctx, tenantID, cursor, replayPageSize)
		if err != nil {
			return stats, fmt.Errorf("list events: %w", err)
		}
		for _, ev := range page {
			stats.Events++
			outcomes, err := r.applier.Apply(ctx, tenantID, *ev)
			switch {
			case errors.Is(err, domain.ErrInvalidInput):
				stats.Rejected++
			case err != nil:
				return stats, fmt.Errorf("replay event %s: %w", ev.ID, err)
			default:
				if allDuplicate(outcomes) {
					stats.Duplicates++
				} else {
					stats.Applied++
				}
			}
			cursor = repository.EventCursor{RecordedAt: ev.RecordedAt, ID: ev.ID}
		}
		if len(page) < replayPageSize {
			break
		}
	}
	r.log.Info().Str("tenant_id", tenantID).
		Int("events", stats.Events).
		Int("applied", stats.Applied).
		Int("duplicates", stats.Duplicates).
		Int("rejected", stats.Rejected).
		Msg("replay completo")
	return stats, nil
}

// ReplayAll re-aplica el log de todos los tenants.
func (r *Replayer) ReplayAll(ctx context.Context) (map[string]ReplayStats, error) {
	tenants, err := r.events.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	result := make(map[string]ReplayStats, len(tenants))
	for _, tenantID := range tenants {
		stats, err := r.ReplayTenant(ctx, tenantID)
		result[tenantID] = stats
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

func allDuplicate(outcomes []Outcome) bool {
	if len(outcomes) == 0 {
		return false
	}
	for _, o := range outcomes {
		if !o.Duplicate {
			return false
		}
	}
	return true
}
