package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
)

// fakeQuerier responde cada Exec con la siguiente respuesta programada y guarda el SQL.
type fakeQuerier struct {
	replies []execReply
	sql     []string
}

type execReply struct {
	tag string
	err error
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	if len(f.replies) == 0 {
		return pgconn.CommandTag{}, errors.New("exec no esperado")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return pgconn.NewCommandTag(r.tag), r.err
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("query no esperado")
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{}
}

type errRow struct{}

func (errRow) Scan(...any) error { return pgx.ErrNoRows }

func existingBalance(version int64) *entity.StockBalance {
	b := entity.NewStockBalance("T1", entity.StockKey{ProductID: "P1", LocationID: "A"})
	b.QuantityOnHand = decimal.NewFromInt(5)
	b.Version = version
	b.UpdatedAt = time.Now().UTC()
	return b
}

// ──────────────────────────────────────────────────────────────────────────────
// Save versionado
// ──────────────────────────────────────────────────────────────────────────────

func TestSave_VersionVieja_EsConflictoTransitorio(t *testing.T) {
	q := &fakeQuerier{replies: []execReply{{tag: "UPDATE 0"}}}
	b := existingBalance(3)

	err := NewStockBalanceTxRepository(q).Save(context.Background(), b, "ev-1")
	require.ErrorIs(t, err, domain.ErrTransientConflict)
	assert.True(t, domain.IsRetryable(err))
	assert.Equal(t, int64(3), b.Version)
	// no se registra el evento aplicado
	require.Len(t, q.sql, 1)
	assert.Contains(t, q.sql[0], "UPDATE stock_balances")
}

func TestSave_ActualizaYRegistraEventoAplicado(t *testing.T) {
	q := &fakeQuerier{replies: []execReply{{tag: "UPDATE 1"}, {tag: "INSERT 0 1"}}}
	b := existingBalance(3)

	require.NoError(t, NewStockBalanceTxRepository(q).Save(context.Background(), b, "ev-1"))
	assert.Equal(t, int64(4), b.Version)
	require.Len(t, q.sql, 2)
	assert.Contains(t, q.sql[1], "stock_applied_events")
}

func TestSave_InsercionConcurrente_EsConflictoTransitorio(t *testing.T) {
	q := &fakeQuerier{replies: []execReply{{err: &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "stock_balances_pkey"}}}}
	b := existingBalance(0)

	err := NewStockBalanceTxRepository(q).Save(context.Background(), b, "ev-1")
	require.ErrorIs(t, err, domain.ErrTransientConflict)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(q.sql[0]), "INSERT INTO stock_balances"))
}

func TestGetForUpdate_SinFilaDevuelveSaldoCero(t *testing.T) {
	b, err := NewStockBalanceTxRepository(&fakeQuerier{}).GetForUpdate(context.Background(), "T1",
		entity.StockKey{ProductID: "P1", LocationID: "A"})
	require.NoError(t, err)
	assert.False(t, b.Exists())
	assert.True(t, b.QuantityOnHand.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Append del log
// ──────────────────────────────────────────────────────────────────────────────

func TestAppend_MapeaViolacionesUnicas(t *testing.T) {
	ev := &entity.MovementEvent{
		ID: "ev-1", TenantID: "T1", ProductID: "P1", Type: entity.MovementTypeReceive,
		Quantity:  decimal.NewFromInt(1),
		SourceRef: &entity.SourceRef{Kind: entity.SourceKindPurchaseOrder, DocumentID: "PO-1"},
	}
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"misma referencia de origen", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: sourceRefConstraint}, domain.ErrDuplicateSourceRef},
		{"mismo id", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "movement_events_pkey"}, domain.ErrDuplicateEvent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &fakeQuerier{replies: []execReply{{err: tc.err}}}
			err := NewMovementEventRepository(q).Append(context.Background(), ev)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	q := &fakeQuerier{replies: []execReply{{err: errors.New("conexión cerrada")}}}
	err := NewMovementEventRepository(q).Append(context.Background(), ev)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrDuplicateSourceRef))
}
