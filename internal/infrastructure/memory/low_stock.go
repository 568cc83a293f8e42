package memory

import (
	"context"
	"sort"

	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
)

// Minimums guarda los mínimos de stock por producto.
type Minimums struct {
	s *Store
}

// Upsert guarda el mínimo del producto.
func (m *Minimums) Upsert(_ context.Context, pm *entity.ProductMinimum) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	byProduct := m.s.minimums[pm.TenantID]
	if byProduct == nil {
		byProduct = make(map[string]*entity.ProductMinimum)
		m.s.minimums[pm.TenantID] = byProduct
	}
	c := *pm
	byProduct[pm.ProductID] = &c
	return nil
}

// ListByTenant devuelve los mínimos del tenant ordenados por producto.
func (m *Minimums) ListByTenant(_ context.Context, tenantID string) ([]*entity.ProductMinimum, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*entity.ProductMinimum, 0, len(m.s.minimums[tenantID]))
	for _, pm := range m.s.minimums[tenantID] {
		c := *pm
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// ListTenants devuelve los tenants con mínimos configurados.
func (m *Minimums) ListTenants(_ context.Context) ([]string, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	tenants := make([]string, 0, len(m.s.minimums))
	for t, byProduct := range m.s.minimums {
		if len(byProduct) > 0 {
			tenants = append(tenants, t)
		}
	}
	sort.Strings(tenants)
	return tenants, nil
}

// Alerts guarda el feed de alertas de stock bajo por tenant.
type Alerts struct {
	s *Store
}

// ReplaceForTenant reemplaza el feed del tenant.
func (a *Alerts) ReplaceForTenant(_ context.Context, tenantID string, alerts []entity.LowStockAlert) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.alerts[tenantID] = append([]entity.LowStockAlert(nil), alerts...)
	return nil
}

// ListByTenant devuelve el feed actual del tenant.
func (a *Alerts) ListByTenant(_ context.Context, tenantID string) ([]entity.LowStockAlert, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return append([]entity.LowStockAlert{}, a.s.alerts[tenantID]...), nil
}
