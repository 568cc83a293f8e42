package posting

import (
	"context"
	"errors"
	"fmt"

	"github.com/devalicin1/Inventory-sub005/internal/application/ports"
	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/inventory"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// Appender es el puerto hacia el log de movimientos (ledger.AppendMovementUseCase).
type Appender interface {
	Append(ctx context.Context, ev entity.MovementEvent) (*entity.MovementEvent, error)
}

// Result resultado de postear una línea de documento.
// Posted=false significa que la línea ya estaba registrada y no se agregó nada al log.
type Result struct {
	EventIDs []string
	Posted   bool
}

// Poster registra movimientos originados en documentos de negocio a lo sumo una vez por
// línea. Chequea el índice antes de registrar; el almacén además garantiza la unicidad
// (tenant, referencia) y el perdedor de una carrera la ve como "ya posteado".
type Poster struct {
	refs     repository.SourceRefRepository
	appender Appender
	balances repository.StockBalanceRepository
	metrics  ports.Metrics
	log      *logger.Logger
}

// NewPoster construye el poster. balances se usa para costear producción sin costo explícito.
func NewPoster(
	refs repository.SourceRefRepository,
	appender Appender,
	balances repository.StockBalanceRepository,
	metrics ports.Metrics,
	log *logger.Logger,
) *Poster {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Poster{
		refs:     refs,
		appender: appender,
		balances: balances,
		metrics:  metrics,
		log:      log.Component("poster"),
	}
}

// AlreadyPosted informa si existe al menos un evento con la referencia dada.
func (p *Poster) AlreadyPosted(ctx context.Context, tenantID string, ref entity.SourceRef) (bool, error) {
	ids, err := p.PostedEventIDs(ctx, tenantID, ref)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// PostedEventIDs devuelve los eventos registrados con la referencia.
func (p *Poster) PostedEventIDs(ctx context.Context, tenantID string, ref entity.SourceRef) ([]string, error) {
	ref = inventory.NormalizeSourceRef(ref)
	ids, err := p.refs.FindEventIDs(ctx, inventory.NormalizeID(tenantID), ref)
	if err != nil {
		return nil, fmt.Errorf("find source ref %s: %w", ref.Key(), err)
	}
	return ids, nil
}

// Post registra ev salvo que su SourceRef ya esté posteada.
func (p *Poster) Post(ctx context.Context, ev entity.MovementEvent) (Result, error) {
	if ev.SourceRef == nil {
		return Result{}, domain.NewValidationError("source_ref", "requerido para postear un documento")
	}
	ev = inventory.NormalizeEvent(ev)
	ref := *ev.SourceRef
	if err := inventory.ValidateEvent(ev); err != nil {
		return Result{}, err
	}

	ids, err := p.PostedEventIDs(ctx, ev.TenantID, ref)
	if err != nil {
		return Result{}, err
	}
	if len(ids) > 0 {
		return Result{EventIDs: ids}, nil
	}

	stored, err := p.appender.Append(ctx, ev)
	if errors.Is(err, domain.ErrDuplicateSourceRef) {
		p.metrics.PostingRace(string(ref.Kind))
		p.log.Warn().
			Str("tenant_id", ev.TenantID).
			Str("source_ref", ref.Key()).
			Msg("carrera de posteo: otra petición registró la misma línea")
		ids, err := p.PostedEventIDs(ctx, ev.TenantID, ref)
		if err != nil {
			return Result{}, err
		}
		return Result{EventIDs: ids}, nil
	}
	if err != nil {
		return Result{}, err
	}

	p.metrics.EventPosted(string(ref.Kind))
	return Result{EventIDs: []string{stored.ID}, Posted: true}, nil
}
