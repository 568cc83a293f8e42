package alerts

import (
	"context"
	"time"

	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// Scheduler ejecuta el escaneo de stock bajo al arrancar y luego cada Interval.
type Scheduler struct {
	scanner  *Scanner
	interval time.Duration
	log      *logger.Logger
}

// NewScheduler construye el scheduler. interval <= 0 usa 24h.
func NewScheduler(scanner *Scanner, interval time.Duration, log *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{scanner: scanner, interval: interval, log: log.Component("scheduler")}
}

// Run bloquea hasta que ctx termine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("scheduler de stock bajo iniciado")
	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler de stock bajo detenido")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.scanner.Scan(ctx); err != nil && ctx.Err() == nil {
		s.log.Error().Err(err).Msg("escaneo programado con errores")
	}
}
