package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// Migration versión del esquema. Se aplican en orden y cada una en su propia transacción.
type Migration struct {
	Version string
	Name    string
	Up      string
}

// Migrations esquema del motor de saldos.
var Migrations = []Migration{
	{
		Version: "20260101000001",
		Name:    "create_movement_events",
		Up: `
CREATE TABLE IF NOT EXISTS movement_events (
    id                 TEXT PRIMARY KEY,
    tenant_id          TEXT NOT NULL,
    product_id         TEXT NOT NULL,
    movement_type      TEXT NOT NULL,
    quantity           NUMERIC(20, 6) NOT NULL,
    from_location      TEXT NOT NULL DEFAULT '',
    to_location        TEXT NOT NULL DEFAULT '',
    batch_id           TEXT NOT NULL DEFAULT '',
    serial_id          TEXT NOT NULL DEFAULT '',
    unit_cost          NUMERIC(20, 6),
    source_kind        TEXT,
    source_document_id TEXT,
    source_line        INT,
    source_ref_key     TEXT,
    actor_id           TEXT NOT NULL DEFAULT '',
    reason             TEXT NOT NULL DEFAULT '',
    recorded_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT chk_movement_events_type CHECK (movement_type IN
        ('RECEIVE','PRODUCE','ADJUST_INCREASE','CONSUME','SHIP','ADJUST_DECREASE','TRANSFER','COUNT'))
);

CREATE INDEX IF NOT EXISTS idx_movement_events_tenant_recorded ON movement_events (tenant_id, recorded_at, id);
CREATE INDEX IF NOT EXISTS idx_movement_events_product ON movement_events (tenant_id, product_id, recorded_at DESC);
CREATE UNIQUE INDEX IF NOT EXISTS ux_movement_events_source_ref
    ON movement_events (tenant_id, source_ref_key) WHERE source_ref_key IS NOT NULL;
`,
	},
	{
		Version: "20260101000002",
		Name:    "create_stock_balances",
		Up: `
CREATE TABLE IF NOT EXISTS stock_balances (
    tenant_id             TEXT NOT NULL,
    stock_key             TEXT NOT NULL,
    product_id            TEXT NOT NULL,
    location_id           TEXT NOT NULL,
    batch_id              TEXT NOT NULL DEFAULT '',
    serial_id             TEXT NOT NULL DEFAULT '',
    quantity_on_hand      NUMERIC(20, 6) NOT NULL DEFAULT 0,
    average_unit_cost     NUMERIC(20, 6) NOT NULL DEFAULT 0 CHECK (average_unit_cost >= 0),
    last_applied_event_id TEXT NOT NULL DEFAULT '',
    version               BIGINT NOT NULL DEFAULT 1,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (tenant_id, stock_key)
);

CREATE INDEX IF NOT EXISTS idx_stock_balances_product ON stock_balances (tenant_id, product_id);

CREATE TABLE IF NOT EXISTS stock_applied_events (
    tenant_id  TEXT NOT NULL,
    stock_key  TEXT NOT NULL,
    event_id   TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (tenant_id, stock_key, event_id)
);
`,
	},
	{
		Version: "20260101000003",
		Name:    "create_low_stock",
		Up: `
CREATE TABLE IF NOT EXISTS product_minimums (
    tenant_id  TEXT NOT NULL,
    product_id TEXT NOT NULL,
    minimum    NUMERIC(20, 6) NOT NULL CHECK (minimum >= 0),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (tenant_id, product_id)
);

CREATE TABLE IF NOT EXISTS low_stock_alerts (
    tenant_id  TEXT NOT NULL,
    product_id TEXT NOT NULL,
    on_hand    NUMERIC(20, 6) NOT NULL,
    minimum    NUMERIC(20, 6) NOT NULL,
    raised_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (tenant_id, product_id)
);
`,
	},
}

// Migrate aplica las migraciones pendientes y registra cada versión en schema_migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	applied := make(map[string]bool)
	versions, err := collectStrings(ctx, pool, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("get applied versions: %w", err)
	}
	for _, v := range versions {
		applied[v] = true
	}

	for _, m := range Migrations {
		if applied[m.Version] {
			continue
		}
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.Up); err != nil {
				return fmt.Errorf("exec migration %s: %w", m.Name, err)
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name)
			if err != nil {
				return fmt.Errorf("record migration %s: %w", m.Name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Info().Str("version", m.Version).Str("name", m.Name).Msg("migración aplicada")
	}
	return nil
}
