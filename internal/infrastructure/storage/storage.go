// Package storage arma el juego de repositorios según STORE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/memory"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/postgres"
	"github.com/devalicin1/Inventory-sub005/pkg/config"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// Stores repositorios del log, la proyección y las alertas sobre un mismo almacén.
type Stores struct {
	Driver     string
	Events     repository.MovementEventRepository
	SourceRefs repository.SourceRefRepository
	Balances   repository.StockBalanceRepository
	Tx         ledger.TxRunner
	Minimums   repository.ProductMinimumRepository
	Alerts     repository.LowStockAlertRepository

	close func()
}

// Close libera el almacén (pool de conexiones en postgres).
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Durable informa si el log sobrevive a un reinicio del proceso.
func (s *Stores) Durable() bool {
	return s.Driver == config.StoreDriverPostgres
}

// Open abre el almacén configurado. En postgres aplica las migraciones pendientes.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Stores, error) {
	switch cfg.Ledger.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("almacén en memoria: el log y los saldos se pierden al reiniciar")
		return Memory(memory.NewStore()), nil
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("postgres pool: %w", err)
		}
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		events := postgres.NewMovementEventRepository(pool)
		return &Stores{
			Driver:     config.StoreDriverPostgres,
			Events:     events,
			SourceRefs: events,
			Balances:   postgres.NewStockBalanceRepository(pool),
			Tx:         postgres.NewTxRunner(pool),
			Minimums:   postgres.NewProductMinimumRepository(pool),
			Alerts:     postgres.NewLowStockAlertRepository(pool),
			close:      pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("store driver %q no soportado", cfg.Ledger.StoreDriver)
	}
}

// Memory envuelve un almacén en memoria.
func Memory(store *memory.Store) *Stores {
	events := store.Events()
	return &Stores{
		Driver:     config.StoreDriverMemory,
		Events:     events,
		SourceRefs: events,
		Balances:   store.Balances(),
		Tx:         store.Balances(),
		Minimums:   store.Minimums(),
		Alerts:     store.Alerts(),
	}
}
