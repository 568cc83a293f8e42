package natsbus_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/memory"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/natsbus"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

func TestSubject_SaneaTenant(t *testing.T) {
	assert.Equal(t, "stock.movements.T1", natsbus.Subject("stock.movements", "T1"))
	assert.Equal(t, "stock.movements.acme_co_", natsbus.Subject("stock.movements", "acme.co>"))
	assert.Equal(t, "stock.movements._", natsbus.Subject("stock.movements", ""))
}

func TestCodec_ConservaDecimalesYOpcionales(t *testing.T) {
	cost := decimal.RequireFromString("4.123456789")
	ev := entity.MovementEvent{
		ID: "e1", TenantID: "T1", ProductID: "P1", Type: entity.MovementTypeReceive,
		Quantity: decimal.RequireFromString("0.1"), ToLocation: "A", UnitCost: &cost,
		SourceRef:  &entity.SourceRef{Kind: entity.SourceKindPurchaseOrder, DocumentID: "PO-1", Line: 3},
		RecordedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	data, err := natsbus.Encode(ev)
	require.NoError(t, err)

	got, err := natsbus.Decode(data)
	require.NoError(t, err)
	assert.True(t, ev.Quantity.Equal(got.Quantity))
	require.NotNil(t, got.UnitCost)
	assert.True(t, cost.Equal(*got.UnitCost))
	assert.Equal(t, *ev.SourceRef, *got.SourceRef)
	assert.True(t, ev.RecordedAt.Equal(got.RecordedAt))

	plain, err := natsbus.Encode(entity.MovementEvent{ID: "e2", Type: entity.MovementTypeShip, Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)
	got, err = natsbus.Decode(plain)
	require.NoError(t, err)
	assert.Nil(t, got.UnitCost)
	assert.Nil(t, got.SourceRef)
}

func TestDecode_MensajeInvalido(t *testing.T) {
	_, err := natsbus.Decode([]byte("{"))
	assert.Error(t, err)
}

func TestDecide(t *testing.T) {
	assert.Equal(t, natsbus.ActionAck, natsbus.Decide(nil))
	assert.Equal(t, natsbus.ActionAck, natsbus.Decide(domain.NewValidationError("quantity", "x")))
	assert.Equal(t, natsbus.ActionNak, natsbus.Decide(fmt.Errorf("%w: x", domain.ErrRetryExhausted)))
	assert.Equal(t, natsbus.ActionNak, natsbus.Decide(errors.New("db caída")))
}

func tenantHeader(tenantID string) nats.Header {
	h := nats.Header{}
	if tenantID != "" {
		h.Set(natsbus.TenantHeader, tenantID)
	}
	return h
}

func TestFilingTenant(t *testing.T) {
	got, err := natsbus.FilingTenant("stock.movements", "stock.movements.acme_co", tenantHeader("acme.co"))
	require.NoError(t, err)
	assert.Equal(t, "acme.co", got)

	cases := map[string]struct {
		subject string
		header  nats.Header
	}{
		"sin encabezado":            {"stock.movements.T1", tenantHeader("")},
		"encabezado de otro tenant": {"stock.movements.T1", tenantHeader("T2")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := natsbus.FilingTenant("stock.movements", tc.subject, tc.header)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, natsbus.ActionAck, natsbus.Decide(err))
		})
	}
}

func TestSobreDeOtroTenant_SeDescartaSinTocarProyeccion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	agg := ledger.NewAggregator(store.Balances(),
		ledger.RetryConfig{MaxAttempts: 3, InitialInterval: time.Microsecond, MaxInterval: time.Millisecond}, nil, logger.Nop())

	// publicado en el subject de T1 pero el sobre dice T2
	ev := entity.MovementEvent{
		ID: "ev-1", TenantID: "T2", ProductID: "P1", Type: entity.MovementTypeReceive,
		Quantity: decimal.RequireFromString("5"), ToLocation: "A",
	}
	tenantID, err := natsbus.FilingTenant("stock.movements", "stock.movements.T1", tenantHeader("T1"))
	require.NoError(t, err)

	_, err = agg.Apply(ctx, tenantID, ev)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, natsbus.ActionAck, natsbus.Decide(err))

	for _, tenant := range []string{"T1", "T2"} {
		b, err := store.Balances().Get(ctx, tenant, entity.StockKey{ProductID: "P1", LocationID: "A"})
		require.NoError(t, err)
		assert.False(t, b.Exists(), tenant)
	}
}
