package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/devalicin1/Inventory-sub005/internal/application/ports"
	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/inventory"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// Scanner compara el stock total de cada producto con su mínimo configurado
// y mantiene el feed de alertas de stock bajo de cada tenant.
type Scanner struct {
	balances repository.StockBalanceRepository
	minimums repository.ProductMinimumRepository
	alerts   repository.LowStockAlertRepository
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewScanner construye el escáner.
func NewScanner(
	balances repository.StockBalanceRepository,
	minimums repository.ProductMinimumRepository,
	alerts repository.LowStockAlertRepository,
	metrics ports.Metrics,
	log *logger.Logger,
) *Scanner {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Scanner{
		balances: balances,
		minimums: minimums,
		alerts:   alerts,
		metrics:  metrics,
		log:      log.Component("low_stock_scanner"),
		now:      time.Now,
	}
}

// Scan recorre todos los tenants con mínimos. Un tenant que falla se registra y no
// impide escanear los demás; el primer error se devuelve al final.
func (s *Scanner) Scan(ctx context.Context) error {
	tenants, err := s.minimums.ListTenants(ctx)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}
	var firstErr error
	for _, tenantID := range tenants {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.ScanTenant(ctx, tenantID); err != nil {
			s.log.Error().Err(err).Str("tenant_id", tenantID).Msg("escaneo de stock bajo falló")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ScanTenant calcula las alertas del tenant y reemplaza su feed.
func (s *Scanner) ScanTenant(ctx context.Context, tenantID string) ([]entity.LowStockAlert, error) {
	mins, err := s.minimums.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list minimums: %w", err)
	}
	onHand, err := s.balances.SumOnHandByProduct(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("sum on hand: %w", err)
	}

	now := s.now().UTC()
	alerts := make([]entity.LowStockAlert, 0)
	for _, m := range mins {
		qty, ok := onHand[m.ProductID]
		if !ok {
			qty = decimal.Zero
		}
		if qty.LessThan(m.Minimum) {
			alerts = append(alerts, entity.LowStockAlert{
				TenantID:  tenantID,
				ProductID: m.ProductID,
				OnHand:    qty,
				Minimum:   m.Minimum,
				RaisedAt:  now,
			})
		}
	}
	if err := s.alerts.ReplaceForTenant(ctx, tenantID, alerts); err != nil {
		return nil, fmt.Errorf("replace alerts: %w", err)
	}
	s.metrics.LowStockAlerts(tenantID, len(alerts))
	s.log.Info().Str("tenant_id", tenantID).Int("alerts", len(alerts)).Msg("escaneo de stock bajo")
	return alerts, nil
}

// SetMinimum configura el stock mínimo de un producto. Minimum=0 desactiva la alerta.
func (s *Scanner) SetMinimum(ctx context.Context, tenantID, productID string, minimum decimal.Decimal) (*entity.ProductMinimum, error) {
	productID = inventory.NormalizeID(productID)
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if minimum.IsNegative() {
		return nil, domain.NewValidationError("minimum", "no puede ser negativo")
	}
	if inventory.ExceedsScale(minimum) {
		return nil, domain.NewValidationError("minimum", "admite a lo sumo 6 decimales")
	}
	m := &entity.ProductMinimum{
		TenantID:  inventory.NormalizeID(tenantID),
		ProductID: productID,
		Minimum:   minimum,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.minimums.Upsert(ctx, m); err != nil {
		return nil, fmt.Errorf("upsert minimum: %w", err)
	}
	return m, nil
}

// ListAlerts devuelve el feed vigente del tenant (resultado del último escaneo).
func (s *Scanner) ListAlerts(ctx context.Context, tenantID string) ([]entity.LowStockAlert, error) {
	return s.alerts.ListByTenant(ctx, inventory.NormalizeID(tenantID))
}
