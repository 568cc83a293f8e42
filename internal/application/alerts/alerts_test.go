package alerts_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devalicin1/Inventory-sub005/internal/application/alerts"
	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/application/ports"
	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/memory"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newScanner(store *memory.Store, metrics ports.Metrics) *alerts.Scanner {
	return alerts.NewScanner(store.Balances(), store.Minimums(), store.Alerts(), metrics, logger.Nop())
}

func receive(t *testing.T, store *memory.Store, tenant, product, loc, qty string) {
	t.Helper()
	agg := ledger.NewAggregator(store.Balances(), ledger.DefaultRetryConfig(), nil, logger.Nop())
	_, err := agg.Apply(context.Background(), tenant, entity.MovementEvent{
		ID: uuid.New().String(), TenantID: tenant, ProductID: product,
		Type: entity.MovementTypeReceive, Quantity: dec(qty), ToLocation: loc,
	})
	require.NoError(t, err)
}

func TestScan_AlertaCuandoTotalBajoElMinimo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sc := newScanner(store, nil)

	receive(t, store, "T1", "P1", "A", "3")
	receive(t, store, "T1", "P1", "B", "4") // total 7
	receive(t, store, "T1", "P2", "A", "20")

	_, err := sc.SetMinimum(ctx, "T1", "P1", dec("10"))
	require.NoError(t, err)
	_, err = sc.SetMinimum(ctx, "T1", "P2", dec("10"))
	require.NoError(t, err)
	_, err = sc.SetMinimum(ctx, "T1", "P3", dec("1")) // sin movimientos
	require.NoError(t, err)

	require.NoError(t, sc.Scan(ctx))

	feed, err := sc.ListAlerts(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "P1", feed[0].ProductID)
	assert.True(t, dec("7").Equal(feed[0].OnHand))
	assert.True(t, dec("3").Equal(feed[0].Deficit()))
	assert.Equal(t, "P3", feed[1].ProductID)
	assert.True(t, feed[1].OnHand.IsZero())
}

func TestScan_ReemplazaElFeed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sc := newScanner(store, nil)

	_, err := sc.SetMinimum(ctx, "T1", "P1", dec("5"))
	require.NoError(t, err)
	require.NoError(t, sc.Scan(ctx))
	feed, _ := sc.ListAlerts(ctx, "T1")
	require.Len(t, feed, 1)

	receive(t, store, "T1", "P1", "A", "5")
	require.NoError(t, sc.Scan(ctx))
	feed, _ = sc.ListAlerts(ctx, "T1")
	assert.Empty(t, feed)
}

func TestScan_TenantsAislados(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sc := newScanner(store, nil)

	receive(t, store, "T2", "P1", "A", "100")
	_, err := sc.SetMinimum(ctx, "T1", "P1", dec("5"))
	require.NoError(t, err)
	require.NoError(t, sc.Scan(ctx))

	feed, _ := sc.ListAlerts(ctx, "T1")
	assert.Len(t, feed, 1)
	feed, _ = sc.ListAlerts(ctx, "T2")
	assert.Empty(t, feed)
}

func TestSetMinimum_Validacion(t *testing.T) {
	sc := newScanner(memory.NewStore(), nil)
	_, err := sc.SetMinimum(context.Background(), "T1", "P1", dec("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = sc.SetMinimum(context.Background(), "T1", " ", dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = sc.SetMinimum(context.Background(), "T1", "P1", dec("0.0000001"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type scanCounter struct {
	ports.NopMetrics
	scans atomic.Int32
}

func (m *scanCounter) LowStockAlerts(string, int) { m.scans.Add(1) }

func TestScheduler_EscaneaAlArrancarYSeDetiene(t *testing.T) {
	store := memory.NewStore()
	metrics := &scanCounter{}
	sc := newScanner(store, metrics)
	_, err := sc.SetMinimum(context.Background(), "T1", "P1", dec("1"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		alerts.NewScheduler(sc, time.Hour, logger.Nop()).Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return metrics.scans.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("el scheduler no se detuvo")
	}
}
