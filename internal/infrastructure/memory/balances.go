package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
)

// Balances es la proyección de saldos por clave.
type Balances struct {
	s *Store
}

// Get devuelve el saldo de la clave o el saldo cero.
func (b *Balances) Get(_ context.Context, tenantID string, key entity.StockKey) (*entity.StockBalance, error) {
	return b.read(tenantID, key), nil
}

// ListByProduct devuelve todas las claves del producto, ordenadas por clave.
func (b *Balances) ListByProduct(_ context.Context, tenantID, productID string) ([]*entity.StockBalance, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	out := make([]*entity.StockBalance, 0)
	for rk, row := range b.s.balances {
		if rk.tenantID == tenantID && row.Key.ProductID == productID {
			c := *row
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, nil
}

// SumOnHandByProduct suma quantityOnHand por producto.
func (b *Balances) SumOnHandByProduct(_ context.Context, tenantID string) (map[string]decimal.Decimal, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	sums := make(map[string]decimal.Decimal)
	for rk, row := range b.s.balances {
		if rk.tenantID != tenantID {
			continue
		}
		sums[row.Key.ProductID] = sums[row.Key.ProductID].Add(row.QuantityOnHand)
	}
	return sums, nil
}

// RunInKey entrega a fn un repositorio ligado al almacén. No se toma ningún lock durante fn:
// Save detecta con Version si otro escritor modificó la fila y devuelve domain.ErrTransientConflict.
func (b *Balances) RunInKey(_ context.Context, _ string, _ entity.StockKey, fn func(repo repository.StockBalanceTxRepository) error) error {
	return fn(&balanceTx{b: b})
}

func (b *Balances) read(tenantID string, key entity.StockKey) *entity.StockBalance {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	row, ok := b.s.balances[rowKey{tenantID: tenantID, stockKey: key.String()}]
	if !ok {
		return entity.NewStockBalance(tenantID, key)
	}
	c := *row
	return &c
}

type balanceTx struct {
	b *Balances
}

func (t *balanceTx) GetForUpdate(_ context.Context, tenantID string, key entity.StockKey) (*entity.StockBalance, error) {
	return t.b.read(tenantID, key), nil
}

func (t *balanceTx) IsApplied(_ context.Context, tenantID string, key entity.StockKey, eventID string) (bool, error) {
	s := t.b.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.applied[rowKey{tenantID: tenantID, stockKey: key.String()}][eventID]
	return ok, nil
}

func (t *balanceTx) Save(_ context.Context, balance *entity.StockBalance, eventID string) error {
	s := t.b.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rk := rowKey{tenantID: balance.TenantID, stockKey: balance.Key.String()}
	var current int64
	if row, ok := s.balances[rk]; ok {
		current = row.Version
	}
	if current != balance.Version {
		return domain.ErrTransientConflict
	}

	balance.Version++
	stored := *balance
	s.balances[rk] = &stored
	set := s.applied[rk]
	if set == nil {
		set = make(map[string]struct{})
		s.applied[rk] = set
	}
	set[eventID] = struct{}{}
	return nil
}
