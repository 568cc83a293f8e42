// Package memory implementa los puertos del motor de saldos en memoria (tests y STORE_DRIVER=memory).
package memory

import (
	"sync"

	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"github.com/devalicin1/Inventory-sub005/internal/domain/repository"
)

var (
	_ repository.MovementEventRepository  = (*EventLog)(nil)
	_ repository.SourceRefRepository      = (*EventLog)(nil)
	_ repository.StockBalanceRepository   = (*Balances)(nil)
	_ ledger.TxRunner                     = (*Balances)(nil)
	_ repository.ProductMinimumRepository = (*Minimums)(nil)
	_ repository.LowStockAlertRepository  = (*Alerts)(nil)
)

type rowKey struct {
	tenantID string
	stockKey string
}

type refKey struct {
	tenantID string
	ref      string
}

// Store guarda log, índice de referencias, proyección, mínimos y alertas en mapas.
// El mutex solo se toma para leer o escribir los mapas, nunca durante el cálculo del
// agregador: la escritura de un saldo es un compare-and-swap sobre Version.
type Store struct {
	mu         sync.RWMutex
	events     map[string][]*entity.MovementEvent // tenant -> ordenado por (RecordedAt, ID)
	eventIDs   map[string]map[string]*entity.MovementEvent
	sourceRefs map[refKey][]string
	balances   map[rowKey]*entity.StockBalance
	applied    map[rowKey]map[string]struct{}
	minimums   map[string]map[string]*entity.ProductMinimum
	alerts     map[string][]entity.LowStockAlert
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		events:     make(map[string][]*entity.MovementEvent),
		eventIDs:   make(map[string]map[string]*entity.MovementEvent),
		sourceRefs: make(map[refKey][]string),
		balances:   make(map[rowKey]*entity.StockBalance),
		applied:    make(map[rowKey]map[string]struct{}),
		minimums:   make(map[string]map[string]*entity.ProductMinimum),
		alerts:     make(map[string][]entity.LowStockAlert),
	}
}

// Vistas por puerto sobre el mismo estado.
func (s *Store) Events() *EventLog   { return &EventLog{s: s} }
func (s *Store) Balances() *Balances { return &Balances{s: s} }
func (s *Store) Minimums() *Minimums { return &Minimums{s: s} }
func (s *Store) Alerts() *Alerts     { return &Alerts{s: s} }
