package memory

import (
	"context"
	"sort"
	"time"

	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
)

// EventLog es el log de movimientos y el índice de referencias de origen.
type EventLog struct {
	s *Store
}

// Append agrega el evento. Verifica id y referencia de origen en la misma sección crítica.
func (l *EventLog) Append(_ context.Context, ev *entity.MovementEvent) error {
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.eventIDs[ev.TenantID]
	if byID == nil {
		byID = make(map[string]*entity.MovementEvent)
		s.eventIDs[ev.TenantID] = byID
	}
	if _, ok := byID[ev.ID]; ok {
		return domain.ErrDuplicateEvent
	}
	var rk refKey
	if ev.HasSourceRef() {
		rk = refKey{tenantID: ev.TenantID, ref: ev.SourceRef.Key()}
		if len(s.sourceRefs[rk]) > 0 {
			return domain.ErrDuplicateSourceRef
		}
	}

	stored := copyEvent(ev)
	evs := s.events[ev.TenantID]
	i := sort.Search(len(evs), func(i int) bool { return after(evs[i], stored.RecordedAt, stored.ID) })
	evs = append(evs, nil)
	copy(evs[i+1:], evs[i:])
	evs[i] = stored
	s.events[ev.TenantID] = evs
	byID[ev.ID] = stored

	if ev.HasSourceRef() {
		s.sourceRefs[rk] = append(s.sourceRefs[rk], ev.ID)
	}
	return nil
}

// GetByID devuelve el evento o domain.ErrNotFound.
func (l *EventLog) GetByID(_ context.Context, tenantID, id string) (*entity.MovementEvent, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	ev, ok := l.s.eventIDs[tenantID][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEvent(ev), nil
}

// ListByProduct devuelve los eventos del producto, más reciente primero.
func (l *EventLog) ListByProduct(_ context.Context, tenantID, productID string, limit, offset int) ([]*entity.MovementEvent, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	evs := l.s.events[tenantID]
	out := make([]*entity.MovementEvent, 0)
	skipped := 0
	for i := len(evs) - 1; i >= 0 && len(out) < limit; i-- {
		if evs[i].ProductID != productID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, copyEvent(evs[i]))
	}
	return out, nil
}

// ListAfter devuelve hasta limit eventos posteriores al cursor en orden de registro.
func (l *EventLog) ListAfter(_ context.Context, tenantID string, cursor repository.EventCursor, limit int) ([]*entity.MovementEvent, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	evs := l.s.events[tenantID]
	start := 0
	if cursor.ID != "" {
		start = sort.Search(len(evs), func(i int) bool { return after(evs[i], cursor.RecordedAt, cursor.ID) })
	}
	end := start + limit
	if end > len(evs) {
		end = len(evs)
	}
	out := make([]*entity.MovementEvent, 0, end-start)
	for _, ev := range evs[start:end] {
		out = append(out, copyEvent(ev))
	}
	return out, nil
}

// ListTenants devuelve los tenants con eventos, ordenados.
func (l *EventLog) ListTenants(_ context.Context) ([]string, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	tenants := make([]string, 0, len(l.s.events))
	for t := range l.s.events {
		tenants = append(tenants, t)
	}
	sort.Strings(tenants)
	return tenants, nil
}

// FindEventIDs consulta el índice de referencias de origen.
func (l *EventLog) FindEventIDs(_ context.Context, tenantID string, ref entity.SourceRef) ([]string, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	ids := l.s.sourceRefs[refKey{tenantID: tenantID, ref: ref.Key()}]
	return append([]string(nil), ids...), nil
}

// after informa si ev va después de (at, id) en el orden del log.
func after(ev *entity.MovementEvent, at time.Time, id string) bool {
	if !ev.RecordedAt.Equal(at) {
		return ev.RecordedAt.After(at)
	}
	return ev.ID > id
}

func copyEvent(ev *entity.MovementEvent) *entity.MovementEvent {
	c := *ev
	if ev.UnitCost != nil {
		cost := *ev.UnitCost
		c.UnitCost = &cost
	}
	if ev.SourceRef != nil {
		ref := *ev.SourceRef
		c.SourceRef = &ref
	}
	return &c
}
