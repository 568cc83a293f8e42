package repository

import (
	"context"

	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
)

// ProductMinimumRepository define el puerto para los mínimos de stock por producto.
type ProductMinimumRepository interface {
	Upsert(ctx context.Context, m *entity.ProductMinimum) error
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.ProductMinimum, error)
	// ListTenants devuelve los tenants con al menos un mínimo configurado.
	ListTenants(ctx context.Context) ([]string, error)
}

// LowStockAlertRepository guarda el feed de alertas de stock bajo de cada tenant.
type LowStockAlertRepository interface {
	// ReplaceForTenant reemplaza atómicamente el feed del tenant con el resultado del último escaneo.
	ReplaceForTenant(ctx context.Context, tenantID string, alerts []entity.LowStockAlert) error
	ListByTenant(ctx context.Context, tenantID string) ([]entity.LowStockAlert, error)
}
