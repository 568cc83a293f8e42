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
	_ repository.MovementEventRepository = (*MovementEventRepo)(nil)
	_ repository.SourceRefRepository     = (*MovementEventRepo)(nil)
)

const eventColumns = `id, tenant_id, product_id, movement_type, quantity, from_location, to_location,
	batch_id, serial_id, unit_cost, source_kind, source_document_id, source_line,
	actor_id, reason, recorded_at`

// MovementEventRepo log de movimientos (append-only) sobre PostgreSQL.
// También responde el índice de referencias de origen (columna source_ref_key).
type MovementEventRepo struct {
	q Querier
}

// NewMovementEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementEventRepository(q Querier) *MovementEventRepo {
	return &MovementEventRepo{q: q}
}

// Append inserta el evento. El índice único parcial (tenant_id, source_ref_key) hace que un
// segundo posteo de la misma línea falle con domain.ErrDuplicateSourceRef.
func (r *MovementEventRepo) Append(ctx context.Context, ev *entity.MovementEvent) error {
	var kind, docID, refKey *string
	var line *int
	if ev.HasSourceRef() {
		k, d, rk := string(ev.SourceRef.Kind), ev.SourceRef.DocumentID, ev.SourceRef.Key()
		l := ev.SourceRef.Line
		kind, docID, refKey, line = &k, &d, &rk, &l
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO movement_events (id, tenant_id, product_id, movement_type, quantity,
			from_location, to_location, batch_id, serial_id, unit_cost,
			source_kind, source_document_id, source_line, source_ref_key,
			actor_id, reason, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		ev.ID, ev.TenantID, ev.ProductID, string(ev.Type), ev.Quantity,
		ev.FromLocation, ev.ToLocation, ev.BatchID, ev.SerialID, ev.UnitCost,
		kind, docID, line, refKey,
		ev.ActorID, ev.Reason, ev.RecordedAt,
	)
	if err != nil {
		switch {
		case isSourceRefViolation(err):
			return domain.ErrDuplicateSourceRef
		case isUniqueViolation(err):
			return domain.ErrDuplicateEvent
		}
		return fmt.Errorf("insert movement event: %w", err)
	}
	return nil
}

// GetByID obtiene un evento por id.
func (r *MovementEventRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.MovementEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM movement_events WHERE tenant_id = $1 AND id = $2`
	ev, err := scanEvent(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get movement event: %w", err)
	}
	return ev, nil
}

// ListByProduct historial del producto, más reciente primero.
func (r *MovementEventRepo) ListByProduct(ctx context.Context, tenantID, productID string, limit, offset int) ([]*entity.MovementEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM movement_events
		WHERE tenant_id = $1 AND product_id = $2
		ORDER BY recorded_at DESC, id DESC LIMIT $3 OFFSET $4`
	return r.list(ctx, query, tenantID, productID, limit, offset)
}

// ListAfter página del log en orden de registro a partir del cursor.
func (r *MovementEventRepo) ListAfter(ctx context.Context, tenantID string, cursor repository.EventCursor, limit int) ([]*entity.MovementEvent, error) {
	if cursor.ID == "" {
		query := `SELECT ` + eventColumns + ` FROM movement_events
			WHERE tenant_id = $1 ORDER BY recorded_at, id LIMIT $2`
		return r.list(ctx, query, tenantID, limit)
	}
	query := `SELECT ` + eventColumns + ` FROM movement_events
		WHERE tenant_id = $1 AND (recorded_at, id) > ($2, $3)
		ORDER BY recorded_at, id LIMIT $4`
	return r.list(ctx, query, tenantID, cursor.RecordedAt, cursor.ID, limit)
}

// ListTenants tenants con al menos un evento.
func (r *MovementEventRepo) ListTenants(ctx context.Context) ([]string, error) {
	return collectStrings(ctx, r.q, `SELECT DISTINCT tenant_id FROM movement_events ORDER BY tenant_id`)
}

// FindEventIDs ids de los eventos con la referencia de origen dada.
func (r *MovementEventRepo) FindEventIDs(ctx context.Context, tenantID string, ref entity.SourceRef) ([]string, error) {
	return collectStrings(ctx, r.q, `SELECT id FROM movement_events
		WHERE tenant_id = $1 AND source_ref_key = $2 ORDER BY recorded_at, id`, tenantID, ref.Key())
}

func (r *MovementEventRepo) list(ctx context.Context, query string, args ...any) ([]*entity.MovementEvent, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movement events: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.MovementEvent, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement event: %w", err)
		}
		list = append(list, ev)
	}
	return list, rows.Err()
}

func scanEvent(row pgx.Row) (*entity.MovementEvent, error) {
	var ev entity.MovementEvent
	var movementType string
	var unitCost *decimal.Decimal
	var kind, docID *string
	var line *int
	err := row.Scan(
		&ev.ID, &ev.TenantID, &ev.ProductID, &movementType, &ev.Quantity,
		&ev.FromLocation, &ev.ToLocation, &ev.BatchID, &ev.SerialID, &unitCost,
		&kind, &docID, &line,
		&ev.ActorID, &ev.Reason, &ev.RecordedAt,
	)
	if err != nil {
		return nil, err
	}
	ev.Type = entity.MovementType(movementType)
	ev.UnitCost = unitCost
	if kind != nil && docID != nil {
		ref := entity.SourceRef{Kind: entity.SourceKind(*kind), DocumentID: *docID}
		if line != nil {
			ref.Line = *line
		}
		ev.SourceRef = &ref
	}
	return &ev, nil
}

func collectStrings(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
