package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	_ "github.com/devalicin1/Inventory-sub005/docs"
	"github.com/devalicin1/Inventory-sub005/internal/application/alerts"
	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/application/posting"
	"github.com/devalicin1/Inventory-sub005/internal/application/stock"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/metrics"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/natsbus"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/storage"
	httpRouter "github.com/devalicin1/Inventory-sub005/internal/interfaces/http"
	"github.com/devalicin1/Inventory-sub005/pkg/config"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

// @title                       Stock Ledger API
// @version                     1.0
// @description                 Log de movimientos de inventario y saldos por clave de stock.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Ledger.StoreDriver).
		Str("dispatch", cfg.Ledger.DispatchMode).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén")
	}
	defer stores.Close()

	prom := metrics.NewPrometheus()
	aggregator := ledger.NewAggregator(stores.Tx, ledger.RetryConfig{
		MaxAttempts:     uint(cfg.Ledger.MaxRetries),
		InitialInterval: cfg.Ledger.RetryInitial,
		MaxInterval:     cfg.Ledger.RetryMaxBackoff,
	}, prom, log)

	g, gctx := errgroup.WithContext(ctx)
	var shutdownHooks []func()

	var dispatcher ledger.Dispatcher
	switch cfg.Ledger.DispatchMode {
	case config.DispatchWorkers:
		pool := ledger.NewWorkerPool(aggregator, cfg.Ledger.Workers, cfg.Ledger.QueueSize, prom, log)
		// sin cancelación: al apagar, Close drena la cola antes de que Run retorne
		g.Go(func() error { return pool.Run(context.WithoutCancel(gctx)) })
		shutdownHooks = append(shutdownHooks, pool.Close)
		dispatcher = pool
	case config.DispatchNATS:
		nc, js, err := natsbus.Connect(cfg.NATS.URL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a NATS")
		}
		if err := natsbus.EnsureStream(ctx, js, cfg.NATS.Stream, cfg.NATS.SubjectPrefix); err != nil {
			log.Fatal().Err(err).Msg("stream JetStream")
		}
		consumer := natsbus.NewConsumer(js, natsbus.ConsumerConfig{
			Stream:     cfg.NATS.Stream,
			Durable:    cfg.NATS.Durable,
			Prefix:     cfg.NATS.SubjectPrefix,
			MaxDeliver: cfg.NATS.MaxDeliver,
		}, aggregator, prom, log)
		if err := consumer.Start(gctx); err != nil {
			log.Fatal().Err(err).Msg("consumidor JetStream")
		}
		shutdownHooks = append(shutdownHooks, consumer.Stop, func() { drainNATS(nc, log) })
		dispatcher = natsbus.NewPublisher(js, cfg.NATS.SubjectPrefix)
	default:
		dispatcher = ledger.NewInlineDispatcher(aggregator)
	}

	appendUC := ledger.NewAppendMovementUseCase(stores.Events, dispatcher, prom, log)
	poster := posting.NewPoster(stores.SourceRefs, appendUC, stores.Balances, prom, log)
	queryUC := stock.NewQueryUseCase(stores.Balances)
	scanner := alerts.NewScanner(stores.Balances, stores.Minimums, stores.Alerts, prom, log)

	if cfg.Ledger.ReplayOnStart && stores.Durable() {
		replayer := ledger.NewReplayer(stores.Events, aggregator, log)
		g.Go(func() error {
			if _, err := replayer.ReplayAll(gctx); err != nil && gctx.Err() == nil {
				log.Error().Err(err).Msg("replay de arranque incompleto")
			}
			return nil
		})
	}
	if cfg.Scanner.Enabled {
		scheduler := alerts.NewScheduler(scanner, cfg.Scanner.Interval, log)
		g.Go(func() error {
			scheduler.Run(gctx)
			return nil
		})
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": stores.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:         appendUC,
		Stock:          queryUC,
		Poster:         poster,
		Scanner:        scanner,
		MetricsHandler: prom.Handler(),
		JWTSecret:      cfg.JWT.Secret,
	})

	g.Go(func() error {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			return fmt.Errorf("servidor HTTP: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del servidor")
		}
		for _, hook := range shutdownHooks {
			hook()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("aplicación finalizada con error")
	}
	log.Info().Msg("aplicación detenida")
}

func drainNATS(nc *nats.Conn, log *logger.Logger) {
	if err := nc.Drain(); err != nil {
		log.Warn().Err(err).Msg("drain NATS")
	}
}
