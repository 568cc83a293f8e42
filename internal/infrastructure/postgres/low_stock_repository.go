package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
)

var (
	_ repository.ProductMinimumRepository = (*ProductMinimumRepo)(nil)
	_ repository.LowStockAlertRepository  = (*LowStockAlertRepo)(nil)
)

// ProductMinimumRepo mínimos de stock por producto.
type ProductMinimumRepo struct {
	q Querier
}

// NewProductMinimumRepository construye el adaptador.
func NewProductMinimumRepository(q Querier) *ProductMinimumRepo {
	return &ProductMinimumRepo{q: q}
}

// Upsert inserta o actualiza el mínimo del producto.
func (r *ProductMinimumRepo) Upsert(ctx context.Context, m *entity.ProductMinimum) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_minimums (tenant_id, product_id, minimum, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, product_id)
		DO UPDATE SET minimum = EXCLUDED.minimum, updated_at = EXCLUDED.updated_at`,
		m.TenantID, m.ProductID, m.Minimum, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert product minimum: %w", err)
	}
	return nil
}

// ListByTenant mínimos del tenant ordenados por producto.
func (r *ProductMinimumRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.ProductMinimum, error) {
	rows, err := r.q.Query(ctx, `
		SELECT tenant_id, product_id, minimum, updated_at FROM product_minimums
		WHERE tenant_id = $1 ORDER BY product_id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list product minimums: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.ProductMinimum, 0)
	for rows.Next() {
		var m entity.ProductMinimum
		if err := rows.Scan(&m.TenantID, &m.ProductID, &m.Minimum, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product minimum: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ListTenants tenants con mínimos configurados.
func (r *ProductMinimumRepo) ListTenants(ctx context.Context) ([]string, error) {
	return collectStrings(ctx, r.q, `SELECT DISTINCT tenant_id FROM product_minimums ORDER BY tenant_id`)
}

// LowStockAlertRepo feed de alertas de stock bajo.
type LowStockAlertRepo struct {
	pool *pgxpool.Pool
}

// NewLowStockAlertRepository construye el adaptador (necesita el pool para reemplazar en una tx).
func NewLowStockAlertRepository(pool *pgxpool.Pool) *LowStockAlertRepo {
	return &LowStockAlertRepo{pool: pool}
}

// ReplaceForTenant borra el feed del tenant e inserta el nuevo en una sola transacción.
func (r *LowStockAlertRepo) ReplaceForTenant(ctx context.Context, tenantID string, alerts []entity.LowStockAlert) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM low_stock_alerts WHERE tenant_id = $1`, tenantID); err != nil {
			return fmt.Errorf("clear low stock alerts: %w", err)
		}
		if len(alerts) == 0 {
			return nil
		}
		rows := make([][]any, 0, len(alerts))
		for _, a := range alerts {
			rows = append(rows, []any{a.TenantID, a.ProductID, a.OnHand, a.Minimum, a.RaisedAt})
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"low_stock_alerts"},
			[]string{"tenant_id", "product_id", "on_hand", "minimum", "raised_at"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("insert low stock alerts: %w", err)
		}
		return nil
	})
}

// ListByTenant feed vigente del tenant.
func (r *LowStockAlertRepo) ListByTenant(ctx context.Context, tenantID string) ([]entity.LowStockAlert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tenant_id, product_id, on_hand, minimum, raised_at FROM low_stock_alerts
		WHERE tenant_id = $1 ORDER BY product_id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list low stock alerts: %w", err)
	}
	defer rows.Close()
	list := make([]entity.LowStockAlert, 0)
	for rows.Next() {
		var a entity.LowStockAlert
		if err := rows.Scan(&a.TenantID, &a.ProductID, &a.OnHand, &a.Minimum, &a.RaisedAt); err != nil {
			return nil, fmt.Errorf("scan low stock alert: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
