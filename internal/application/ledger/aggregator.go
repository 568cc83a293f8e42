package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/devalicin1/Inventory-sub005/internal/application/ports"
	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/inventory"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// Outcome es el resultado de aplicar un evento sobre una clave.
// Duplicate indica que el evento ya estaba aplicado y el saldo no cambió.
type Outcome struct {
	Balance   *entity.StockBalance
	Duplicate bool
}

// RetryConfig acota los reintentos ante conflictos transitorios.
type RetryConfig struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig valores por defecto (5 intentos, 10ms..500ms).
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 5, InitialInterval: 10 * time.Millisecond, MaxInterval: 500 * time.Millisecond}
}

// Aggregator es el dueño de la escritura de saldos: aplica eventos del log a la
// proyección clave por clave, con idempotencia por id de evento.
type Aggregator struct {
	tx      TxRunner
	retry   RetryConfig
	metrics ports.Metrics
	log     *logger.Logger
	now     func() time.Time
}

var _ Applier = (*Aggregator)(nil)

// NewAggregator construye el agregador.
func NewAggregator(tx TxRunner, retry RetryConfig, metrics ports.Metrics, log *logger.Logger) *Aggregator {
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Aggregator{
		tx:      tx,
		retry:   retry,
		metrics: metrics,
		log:     log.Component("aggregator"),
		now:     time.Now,
	}
}

// Apply valida el evento y lo aplica a cada clave que resuelve (dos en un traslado con
// origen y destino). Un evento inválido se rechaza sin efectos y devuelve *domain.ValidationError.
// Un conflicto que sobrevive todos los reintentos devuelve domain.ErrRetryExhausted; las claves
// ya aplicadas quedan marcadas y una reentrega las reconoce como duplicadas.
func (a *Aggregator) Apply(ctx context.Context, tenantID string, ev entity.MovementEvent) ([]Outcome, error) {
	if err := a.validate(tenantID, ev); err != nil {
		a.reject(tenantID, ev, err)
		return nil, err
	}

	apps := inventory.ResolveApplications(ev)
	outcomes := make([]Outcome, 0, len(apps))
	for _, app := range apps {
		start := a.now()
		out, err := a.applyWithRetry(ctx, tenantID, ev, app)
		if err != nil {
			return outcomes, err
		}
		if out.Duplicate {
			a.metrics.EventDuplicate(string(ev.Type))
			a.log.Debug().Str("event_id", ev.ID).Str("tenant_id", tenantID).
				Str("stock_key", app.Key.String()).Msg("evento ya aplicado, se ignora")
		} else {
			a.metrics.EventApplied(string(ev.Type), a.now().Sub(start))
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (a *Aggregator) validate(tenantID string, ev entity.MovementEvent) error {
	if ev.ID == "" {
		return domain.NewValidationError("id", "requerido")
	}
	if err := inventory.ValidateEvent(ev); err != nil {
		return err
	}
	if inventory.NormalizeID(ev.TenantID) != inventory.NormalizeID(tenantID) {
		return domain.NewValidationError("tenant_id", "no coincide con el tenant de la operación")
	}
	return nil
}

func (a *Aggregator) reject(tenantID string, ev entity.MovementEvent, err error) {
	field := ""
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		field = verr.Field
	}
	a.metrics.ValidationRejected(field)
	a.log.Warn().Err(err).
		Str("event_id", ev.ID).
		Str("tenant_id", tenantID).
		Str("movement_type", string(ev.Type)).
		Str("field", field).
		Msg("evento rechazado por validación")
}

func (a *Aggregator) applyWithRetry(ctx context.Context, tenantID string, ev entity.MovementEvent, app inventory.Application) (Outcome, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.retry.InitialInterval
	b.MaxInterval = a.retry.MaxInterval

	op := func() (Outcome, error) {
		out, err := a.applyKey(ctx, tenantID, ev, app)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, domain.ErrTransientConflict) {
			return Outcome{}, err
		}
		return Outcome{}, backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		a.metrics.ConflictRetried()
		a.log.Debug().Err(err).Str("event_id", ev.ID).Str("stock_key", app.Key.String()).
			Dur("wait", wait).Msg("conflicto en la clave, reintentando")
	}

	out, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(a.retry.MaxAttempts),
		backoff.WithNotify(notify),
	)
	if err != nil {
		if errors.Is(err, domain.ErrTransientConflict) {
			a.metrics.RetryExhausted()
			a.log.Error().Err(err).Str("event_id", ev.ID).Str("tenant_id", tenantID).
				Str("stock_key", app.Key.String()).Msg("reintentos agotados")
			return Outcome{}, fmt.Errorf("%w: apply event %s to %s: %w", domain.ErrRetryExhausted, ev.ID, app.Key, err)
		}
		return Outcome{}, err
	}
	return out, nil
}

// applyKey: leer (ausente = cero) -> idempotencia -> calcular -> escribir, en una sola transacción.
func (a *Aggregator) applyKey(ctx context.Context, tenantID string, ev entity.MovementEvent, app inventory.Application) (Outcome, error) {
	var out Outcome
	err := a.tx.RunInKey(ctx, tenantID, app.Key, func(repo repository.StockBalanceTxRepository) error {
		current, err := repo.GetForUpdate(ctx, tenantID, app.Key)
		if err != nil {
			return err
		}
		if current.LastAppliedEventID == ev.ID {
			out = Outcome{Balance: current, Duplicate: true}
			return nil
		}
		applied, err := repo.IsApplied(ctx, tenantID, app.Key, ev.ID)
		if err != nil {
			return err
		}
		if applied {
			out = Outcome{Balance: current, Duplicate: true}
			return nil
		}

		now := a.now().UTC()
		next := *current
		next.QuantityOnHand, next.AverageUnitCost = app.Next(current.QuantityOnHand, current.AverageUnitCost, ev.UnitCost)
		next.LastAppliedEventID = ev.ID
		next.UpdatedAt = now
		if !current.Exists() {
			next.CreatedAt = now
		}
		if err := repo.Save(ctx, &next, ev.ID); err != nil {
			return err
		}
		out = Outcome{Balance: &next}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}
