package natsbus

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
)

// envelope es la forma en que un MovementEvent viaja por JetStream.
// Cantidades y costos van como string decimal para no perder precisión.
type envelope struct {
	ID           string           `json:"id"`
	TenantID     string           `json:"tenant_id"`
	ProductID    string           `json:"product_id"`
	Type         string           `json:"movement_type"`
	Quantity     decimal.Decimal  `json:"quantity"`
	FromLocation string           `json:"from_location,omitempty"`
	ToLocation   string           `json:"to_location,omitempty"`
	BatchID      string           `json:"batch_id,omitempty"`
	SerialID     string           `json:"serial_id,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	SourceRef    *sourceRef       `json:"source_ref,omitempty"`
	ActorID      string           `json:"actor_id,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	RecordedAt   time.Time        `json:"recorded_at"`
}

type sourceRef struct {
	Kind       string `json:"kind"`
	DocumentID string `json:"document_id"`
	Line       int    `json:"line"`
}

// Encode serializa el evento.
func Encode(ev entity.MovementEvent) ([]byte, error) {
	env := envelope{
		ID: ev.ID, TenantID: ev.TenantID, ProductID: ev.ProductID, Type: string(ev.Type),
		Quantity: ev.Quantity, FromLocation: ev.FromLocation, ToLocation: ev.ToLocation,
		BatchID: ev.BatchID, SerialID: ev.SerialID, UnitCost: ev.UnitCost,
		ActorID: ev.ActorID, Reason: ev.Reason, RecordedAt: ev.RecordedAt,
	}
	if ev.SourceRef != nil {
		env.SourceRef = &sourceRef{Kind: string(ev.SourceRef.Kind), DocumentID: ev.SourceRef.DocumentID, Line: ev.SourceRef.Line}
	}
	return json.Marshal(env)
}

// Decode deserializa un mensaje del bus.
func Decode(data []byte) (entity.MovementEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return entity.MovementEvent{}, fmt.Errorf("decode movement envelope: %w", err)
	}
	ev := entity.MovementEvent{
		ID: env.ID, TenantID: env.TenantID, ProductID: env.ProductID, Type: entity.MovementType(env.Type),
		Quantity: env.Quantity, FromLocation: env.FromLocation, ToLocation: env.ToLocation,
		BatchID: env.BatchID, SerialID: env.SerialID, UnitCost: env.UnitCost,
		ActorID: env.ActorID, Reason: env.Reason, RecordedAt: env.RecordedAt,
	}
	if env.SourceRef != nil {
		ev.SourceRef = &entity.SourceRef{
			Kind:       entity.SourceKind(env.SourceRef.Kind),
			DocumentID: env.SourceRef.DocumentID,
			Line:       env.SourceRef.Line,
		}
	}
	return ev, nil
}

var subjectToken = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "\t", "_")

// Subject devuelve el subject del tenant: <prefix>.<tenant>. El tenant se sanea porque
// '.', '*' y '>' tienen significado en NATS; el id real viaja en el sobre.
func Subject(prefix, tenantID string) string {
	token := subjectToken.Replace(tenantID)
	if token == "" {
		token = "_"
	}
	return prefix + "." + token
}

// TenantHeader encabezado con el tenant bajo el que se registró el evento.
const TenantHeader = "Stock-Tenant"

// FilingTenant devuelve el tenant con el que se publicó el mensaje. Tiene que venir en el
// encabezado y corresponder al subject; el del sobre lo contrasta después el agregador.
func FilingTenant(prefix, subject string, header nats.Header) (string, error) {
	tenantID := header.Get(TenantHeader)
	if tenantID == "" {
		return "", domain.NewValidationError("tenant_id", "mensaje sin tenant")
	}
	if Subject(prefix, tenantID) != subject {
		return "", domain.NewValidationError("tenant_id", "el tenant no corresponde al subject")
	}
	return tenantID, nil
}
