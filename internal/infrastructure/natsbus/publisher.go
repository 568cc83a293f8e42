package natsbus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// Connect establece la conexión NATS y devuelve el contexto JetStream.
func Connect(url string, log *logger.Logger) (*nats.Conn, jetstream.JetStream, error) {
	l := log.Component("nats")
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			l.Warn().Err(err).Msg("NATS desconectado")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			l.Info().Msg("NATS reconectado")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return nc, js, nil
}

// EnsureStream crea o actualiza el stream de movimientos (<prefix>.>).
func EnsureStream(ctx context.Context, js jetstream.JetStream, stream, prefix string) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       stream,
		Subjects:   []string{prefix + ".>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     72 * time.Hour,
		Duplicates: 10 * time.Minute,
		Replicas:   1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", stream, err)
	}
	return nil
}

// Publisher despacha eventos ya registrados publicándolos en JetStream.
// El id del evento viaja como Nats-Msg-Id: JetStream descarta republicaciones dentro de la
// ventana de duplicados y el agregador descarta las que lleguen después.
type Publisher struct {
	js     jetstream.JetStream
	prefix string
}

var _ ledger.Dispatcher = (*Publisher)(nil)

// NewPublisher construye el publicador.
func NewPublisher(js jetstream.JetStream, prefix string) *Publisher {
	return &Publisher{js: js, prefix: prefix}
}

// Dispatch publica el evento en el subject de su tenant y espera el ack del stream.
// El tenant bajo el que se registró viaja además en el encabezado TenantHeader.
func (p *Publisher) Dispatch(ctx context.Context, ev entity.MovementEvent) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(Subject(p.prefix, ev.TenantID))
	msg.Data = data
	msg.Header.Set(TenantHeader, ev.TenantID)
	if _, err := p.js.PublishMsg(ctx, msg, jetstream.WithMsgID(ev.ID)); err != nil {
		return fmt.Errorf("publish event %s: %w", ev.ID, err)
	}
	return nil
}
