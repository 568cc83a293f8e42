package natsbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/application/ports"
	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// ConsumerConfig configuración del consumidor durable.
type ConsumerConfig struct {
	Stream     string
	Durable    string
	Prefix     string
	MaxDeliver int
	AckWait    time.Duration
}

// Consumer entrega al agregador los eventos del stream (al menos una vez).
// Ack al aplicar o al rechazar por validación; Nak ante errores reintentables.
type Consumer struct {
	js      jetstream.JetStream
	cfg     ConsumerConfig
	applier ledger.Applier
	metrics ports.Metrics
	log     *logger.Logger

	cc jetstream.ConsumeContext
}

// NewConsumer construye el consumidor.
func NewConsumer(js jetstream.JetStream, cfg ConsumerConfig, applier ledger.Applier, metrics ports.Metrics, log *logger.Logger) *Consumer {
	if cfg.MaxDeliver <= 0 {
		cfg.MaxDeliver = 10
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = 30 * time.Second
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Consumer{js: js, cfg: cfg, applier: applier, metrics: metrics, log: log.Component("nats_consumer")}
}

// Start crea (o actualiza) el consumidor durable y empieza a consumir.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, c.cfg.Stream, jetstream.ConsumerConfig{
		Durable:       c.cfg.Durable,
		FilterSubject: c.cfg.Prefix + ".>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.cfg.AckWait,
		MaxDeliver:    c.cfg.MaxDeliver,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", c.cfg.Durable, err)
	}
	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		c.handle(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.Durable, err)
	}
	c.cc = cc
	c.log.Info().Str("stream", c.cfg.Stream).Str("durable", c.cfg.Durable).Msg("consumidor iniciado")
	return nil
}

// Stop detiene el consumo.
func (c *Consumer) Stop() {
	if c.cc != nil {
		c.cc.Stop()
	}
}

func (c *Consumer) handle(ctx context.Context, msg jetstream.Msg) {
	ev, err := Decode(msg.Data())
	if err != nil {
		// mensaje ilegible: reentregarlo no lo arregla
		c.log.Error().Err(err).Str("subject", msg.Subject()).Msg("mensaje descartado")
		_ = msg.Term()
		return
	}

	tenantID, err := FilingTenant(c.cfg.Prefix, msg.Subject(), msg.Headers())
	if err != nil {
		c.metrics.ValidationRejected("tenant_id")
		c.log.Warn().Err(err).Str("subject", msg.Subject()).Str("event_id", ev.ID).Msg("mensaje descartado")
		_ = msg.Ack()
		return
	}

	_, err = c.applier.Apply(ctx, tenantID, ev)
	switch Decide(err) {
	case ActionAck:
		_ = msg.Ack()
	case ActionNak:
		c.metrics.DispatchFailed("nats")
		c.log.Warn().Err(err).Str("event_id", ev.ID).Msg("aplicación fallida, se reentrega")
		_ = msg.NakWithDelay(time.Second)
	}
}

// Action qué hacer con un mensaje tras intentar aplicarlo.
type Action int

const (
	ActionAck Action = iota
	ActionNak
)

// Decide: éxito o rechazo permanente -> Ack; cualquier otro error -> Nak.
func Decide(err error) Action {
	if err == nil || errors.Is(err, domain.ErrInvalidInput) {
		return ActionAck
	}
	return ActionNak
}
