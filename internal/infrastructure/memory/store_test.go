package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/memory"
)

var t0 = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

func event(id string, at time.Time) *entity.MovementEvent {
	return &entity.MovementEvent{
		ID: id, TenantID: "T1", ProductID: "P1", Type: entity.MovementTypeReceive,
		Quantity: decimal.NewFromInt(1), RecordedAt: at,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Log
// ──────────────────────────────────────────────────────────────────────────────

func TestEventLog_ReferenciaDeOrigenUnica(t *testing.T) {
	ctx := context.Background()
	log := memory.NewStore().Events()
	ref := &entity.SourceRef{Kind: entity.SourceKindPurchaseOrder, DocumentID: "PO-1", Line: 0}

	first := event("e1", t0)
	first.SourceRef = ref
	require.NoError(t, log.Append(ctx, first))

	second := event("e2", t0.Add(time.Second))
	second.SourceRef = ref
	assert.ErrorIs(t, log.Append(ctx, second), domain.ErrDuplicateSourceRef)

	ids, err := log.FindEventIDs(ctx, "T1", *ref)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, ids)

	// otro tenant puede usar la misma referencia
	other := event("e3", t0)
	other.TenantID = "T2"
	other.SourceRef = ref
	assert.NoError(t, log.Append(ctx, other))
}

func TestEventLog_IDDuplicado(t *testing.T) {
	ctx := context.Background()
	log := memory.NewStore().Events()
	require.NoError(t, log.Append(ctx, event("e1", t0)))
	assert.ErrorIs(t, log.Append(ctx, event("e1", t0)), domain.ErrDuplicateEvent)
}

func TestEventLog_ListAfterRespetaOrdenYCursor(t *testing.T) {
	ctx := context.Background()
	log := memory.NewStore().Events()
	require.NoError(t, log.Append(ctx, event("c", t0.Add(2*time.Second))))
	require.NoError(t, log.Append(ctx, event("a", t0)))
	require.NoError(t, log.Append(ctx, event("b", t0.Add(time.Second))))

	page, err := log.ListAfter(ctx, "T1", repository.EventCursor{}, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].ID)
	assert.Equal(t, "b", page[1].ID)

	rest, err := log.ListAfter(ctx, "T1", repository.EventCursor{RecordedAt: page[1].RecordedAt, ID: page[1].ID}, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "c", rest[0].ID)
}

func TestEventLog_GetByIDNoEncontrado(t *testing.T) {
	_, err := memory.NewStore().Events().GetByID(context.Background(), "T1", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Proyección
// ──────────────────────────────────────────────────────────────────────────────

type txRepo = repository.StockBalanceTxRepository

func TestBalances_ClaveAusenteEsCero(t *testing.T) {
	key := entity.StockKey{ProductID: "P1", LocationID: "A"}
	b, err := memory.NewStore().Balances().Get(context.Background(), "T1", key)
	require.NoError(t, err)
	assert.True(t, b.QuantityOnHand.IsZero())
	assert.False(t, b.Exists())
}

func TestBalances_SaveDetectaEscrituraConcurrente(t *testing.T) {
	ctx := context.Background()
	balances := memory.NewStore().Balances()
	key := entity.StockKey{ProductID: "P1", LocationID: "A"}

	var stale *entity.StockBalance
	require.NoError(t, balances.RunInKey(ctx, "T1", key, func(repo txRepo) error {
		var err error
		stale, err = repo.GetForUpdate(ctx, "T1", key)
		return err
	}))

	require.NoError(t, balances.RunInKey(ctx, "T1", key, func(repo txRepo) error {
		b, _ := repo.GetForUpdate(ctx, "T1", key)
		b.QuantityOnHand = decimal.NewFromInt(5)
		return repo.Save(ctx, b, "e1")
	}))

	err := balances.RunInKey(ctx, "T1", key, func(repo txRepo) error {
		stale.QuantityOnHand = decimal.NewFromInt(9)
		return repo.Save(ctx, stale, "e2")
	})
	assert.ErrorIs(t, err, domain.ErrTransientConflict)

	got, _ := balances.Get(ctx, "T1", key)
	assert.True(t, decimal.NewFromInt(5).Equal(got.QuantityOnHand))
	assert.Equal(t, int64(1), got.Version)

	require.NoError(t, balances.RunInKey(ctx, "T1", key, func(repo txRepo) error {
		applied, err := repo.IsApplied(ctx, "T1", key, "e1")
		assert.True(t, applied)
		return err
	}))
}

func TestBalances_SumaPorProducto(t *testing.T) {
	ctx := context.Background()
	balances := memory.NewStore().Balances()
	for i, loc := range []string{"A", "B"} {
		key := entity.StockKey{ProductID: "P1", LocationID: loc}
		require.NoError(t, balances.RunInKey(ctx, "T1", key, func(repo txRepo) error {
			b, _ := repo.GetForUpdate(ctx, "T1", key)
			b.QuantityOnHand = decimal.NewFromInt(int64(3 + i))
			return repo.Save(ctx, b, "e")
		}))
	}

	sums, err := balances.SumOnHandByProduct(ctx, "T1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(7).Equal(sums["P1"]))

	rows, err := balances.ListByProduct(ctx, "T1", "P1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Key.LocationID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mínimos y alertas
// ──────────────────────────────────────────────────────────────────────────────

func TestMinimumsYAlertas(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Minimums().Upsert(ctx, &entity.ProductMinimum{TenantID: "T2", ProductID: "X", Minimum: decimal.NewFromInt(1)}))
	require.NoError(t, store.Minimums().Upsert(ctx, &entity.ProductMinimum{TenantID: "T1", ProductID: "P1", Minimum: decimal.NewFromInt(1)}))
	tenants, err := store.Minimums().ListTenants(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, tenants)

	require.NoError(t, store.Alerts().ReplaceForTenant(ctx, "T1", []entity.LowStockAlert{{TenantID: "T1", ProductID: "P1"}}))
	require.NoError(t, store.Alerts().ReplaceForTenant(ctx, "T1", nil))
	alerts, err := store.Alerts().ListByTenant(ctx, "T1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
