package ledger

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/devalicin1/Inventory-sub005/internal/application/ports"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// ErrPoolClosed se devuelve al despachar sobre un pool ya cerrado.
var ErrPoolClosed = errors.New("worker pool cerrado")

// WorkerPool aplica eventos de forma concurrente con N goroutines que leen de una cola acotada.
// Si la proyección se atrasa o un evento agota sus reintentos, el Replayer lo recupera desde el log.
type WorkerPool struct {
	applier Applier
	workers int
	queue   chan entity.MovementEvent
	metrics ports.Metrics
	log     *logger.Logger

	mu     sync.RWMutex
	closed bool
}

var _ Dispatcher = (*WorkerPool)(nil)

// NewWorkerPool construye el pool; Run lo arranca.
func NewWorkerPool(applier Applier, workers, queueSize int, metrics ports.Metrics, log *logger.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &WorkerPool{
		applier: applier,
		workers: workers,
		queue:   make(chan entity.MovementEvent, queueSize),
		metrics: metrics,
		log:     log.Component("worker_pool"),
	}
}

// Dispatch encola el evento. Bloquea si la cola está llena hasta que haya lugar o ctx termine.
func (p *WorkerPool) Dispatch(ctx context.Context, ev entity.MovementEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queue <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run arranca los workers y bloquea hasta que la cola se cierre y se vacíe, o ctx termine.
func (p *WorkerPool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			return p.work(gctx)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *WorkerPool) work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-p.queue:
			if !ok {
				return nil
			}
			if _, err := p.applier.Apply(ctx, ev.TenantID, ev); dropPermanent(err) != nil {
				p.metrics.DispatchFailed("workers")
				p.log.Error().Err(err).Str("event_id", ev.ID).Str("tenant_id", ev.TenantID).
					Msg("no se pudo aplicar el evento, queda pendiente para replay")
			}
		}
	}
}

// Close deja de aceptar eventos; los workers drenan lo encolado y Run retorna.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
}
