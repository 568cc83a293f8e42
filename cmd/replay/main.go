// Comando replay: reconstruye la proyección de saldos re-aplicando el log de movimientos.
//
//	go run ./cmd/replay                 # todos los tenants
//	go run ./cmd/replay -tenant <id>    # un tenant
//
// La aplicación es idempotente: re-ejecutarlo sobre una proyección al día no cambia nada.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/storage"
	"github.com/devalicin1/Inventory-sub005/pkg/config"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

func main() {
	tenant := flag.String("tenant", "", "tenant a reconstruir (vacío = todos)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if cfg.Ledger.StoreDriver != config.StoreDriverPostgres {
		log.Fatal().Str("store", cfg.Ledger.StoreDriver).Msg("replay requiere STORE_DRIVER=postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén")
	}
	defer stores.Close()

	aggregator := ledger.NewAggregator(stores.Tx, ledger.RetryConfig{
		MaxAttempts:     uint(cfg.Ledger.MaxRetries),
		InitialInterval: cfg.Ledger.RetryInitial,
		MaxInterval:     cfg.Ledger.RetryMaxBackoff,
	}, nil, log)
	replayer := ledger.NewReplayer(stores.Events, aggregator, log)

	if *tenant != "" {
		stats, err := replayer.ReplayTenant(ctx, *tenant)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", *tenant).Msg("replay falló")
			stores.Close()
			os.Exit(1)
		}
		log.Info().Int("events", stats.Events).Int("applied", stats.Applied).Msg("replay terminado")
		return
	}

	all, err := replayer.ReplayAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("replay falló")
		stores.Close()
		os.Exit(1)
	}
	log.Info().Int("tenants", len(all)).Msg("replay terminado")
}
