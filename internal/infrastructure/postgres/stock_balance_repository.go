package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
)

var (
	_ repository.StockBalanceRepository   = (*StockBalanceRepo)(nil)
	_ repository.StockBalanceTxRepository = (*StockBalanceTxRepo)(nil)
)

const balanceColumns = `tenant_id, product_id, location_id, batch_id, serial_id,
	quantity_on_hand, average_unit_cost, last_applied_event_id, version, created_at, updated_at`

// StockBalanceRepo lectura de la proyección sobre PostgreSQL (usable con pool o tx).
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador de lectura. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

// Get obtiene el saldo de una clave; saldo cero si la fila no existe.
func (r *StockBalanceRepo) Get(ctx context.Context, tenantID string, key entity.StockKey) (*entity.StockBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE tenant_id = $1 AND stock_key = $2`
	b, err := scanBalance(r.q.QueryRow(ctx, query, tenantID, key.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewStockBalance(tenantID, key), nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return b, nil
}

// ListByProduct devuelve todas las claves del producto.
func (r *StockBalanceRepo) ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.StockBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances
		WHERE tenant_id = $1 AND product_id = $2 ORDER BY stock_key`
	rows, err := r.q.Query(ctx, query, tenantID, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// SumOnHandByProduct suma quantity_on_hand por producto.
func (r *StockBalanceRepo) SumOnHandByProduct(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error) {
	query := `SELECT product_id, SUM(quantity_on_hand) FROM stock_balances
		WHERE tenant_id = $1 GROUP BY product_id`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("sum stock by product: %w", err)
	}
	defer rows.Close()
	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var productID string
		var total decimal.Decimal
		if err := rows.Scan(&productID, &total); err != nil {
			return nil, fmt.Errorf("scan stock sum: %w", err)
		}
		sums[productID] = total
	}
	return sums, rows.Err()
}

// StockBalanceTxRepo escritura de la proyección; solo se construye dentro de TxRunner.RunInKey.
type StockBalanceTxRepo struct {
	q Querier
}

// NewStockBalanceTxRepository construye el adaptador de escritura sobre una tx.
func NewStockBalanceTxRepository(q Querier) *StockBalanceTxRepo {
	return &StockBalanceTxRepo{q: q}
}

// GetForUpdate obtiene el saldo y bloquea la fila para update (SELECT FOR UPDATE).
// Si la fila no existe no hay nada que bloquear: el INSERT de Save detecta al escritor concurrente.
func (r *StockBalanceTxRepo) GetForUpdate(ctx context.Context, tenantID string, key entity.StockKey) (*entity.StockBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances
		WHERE tenant_id = $1 AND stock_key = $2 FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, tenantID, key.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewStockBalance(tenantID, key), nil
		}
		return nil, fmt.Errorf("get stock balance for update: %w", err)
	}
	return b, nil
}

// IsApplied consulta stock_applied_events.
func (r *StockBalanceTxRepo) IsApplied(ctx context.Context, tenantID string, key entity.StockKey, eventID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM stock_applied_events WHERE tenant_id = $1 AND stock_key = $2 AND event_id = $3)`,
		tenantID, key.String(), eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check applied event: %w", err)
	}
	return exists, nil
}

// Save inserta o actualiza la fila (con control de versión) y registra el evento aplicado.
func (r *StockBalanceTxRepo) Save(ctx context.Context, b *entity.StockBalance, eventID string) error {
	stockKey := b.Key.String()
	if !b.Exists() {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_balances (tenant_id, stock_key, product_id, location_id, batch_id, serial_id,
				quantity_on_hand, average_unit_cost, last_applied_event_id, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $11)`,
			b.TenantID, stockKey, b.Key.ProductID, b.Key.LocationID, b.Key.BatchID, b.Key.SerialID,
			b.QuantityOnHand, b.AverageUnitCost, b.LastAppliedEventID, b.CreatedAt, b.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: insert %s: %w", domain.ErrTransientConflict, stockKey, err)
			}
			return fmt.Errorf("insert stock balance: %w", err)
		}
	} else {
		tag, err := r.q.Exec(ctx, `
			UPDATE stock_balances
			SET quantity_on_hand = $3, average_unit_cost = $4, last_applied_event_id = $5,
				version = version + 1, updated_at = $6
			WHERE tenant_id = $1 AND stock_key = $2 AND version = $7`,
			b.TenantID, stockKey, b.QuantityOnHand, b.AverageUnitCost, b.LastAppliedEventID, b.UpdatedAt, b.Version,
		)
		if err != nil {
			return fmt.Errorf("update stock balance: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: version %d of %s is stale", domain.ErrTransientConflict, b.Version, stockKey)
		}
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_applied_events (tenant_id, stock_key, event_id, applied_at)
		VALUES ($1, $2, $3, $4)`,
		b.TenantID, stockKey, eventID, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: event %s already recorded for %s", domain.ErrTransientConflict, eventID, stockKey)
		}
		return fmt.Errorf("record applied event: %w", err)
	}
	b.Version++
	return nil
}

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := row.Scan(
		&b.TenantID, &b.Key.ProductID, &b.Key.LocationID, &b.Key.BatchID, &b.Key.SerialID,
		&b.QuantityOnHand, &b.AverageUnitCost, &b.LastAppliedEventID, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
