package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/devalicin1/Inventory-sub005/internal/application/alerts"
	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/application/posting"
	"github.com/devalicin1/Inventory-sub005/internal/application/stock"
)

// Roles autorizados a configurar mínimos.
var minimumEditors = []string{"admin", "bodeguero"}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger         *ledger.AppendMovementUseCase
	Stock          *stock.QueryUseCase
	Poster         *posting.Poster
	Scanner        *alerts.Scanner
	MetricsHandler nethttp.Handler // opcional: expone /metrics
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token); el tenant es el company_id del token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Log de movimientos
	ledgerHandler := NewLedgerHandler(deps.Ledger)
	ledgerGroup := protected.Group("/ledger")
	ledgerGroup.Post("/movements", ledgerHandler.Append)
	ledgerGroup.Get("/movements", ledgerHandler.List)
	ledgerGroup.Get("/movements/:id", ledgerHandler.Get)

	// Proyección de saldos
	stockHandler := NewStockHandler(deps.Stock)
	stockGroup := protected.Group("/stock")
	stockGroup.Get("/balance", stockHandler.GetBalance)
	stockGroup.Get("/products/:productId/balance", stockHandler.GetProductBalance)
	stockGroup.Get("/products/:productId/balances", stockHandler.ListProductBalances)

	// Posteo idempotente de documentos
	postingHandler := NewPostingHandler(deps.Poster)
	protected.Get("/posting/posted", postingHandler.Posted)
	protected.Post("/purchase-orders/:poId/lines/:line/receive", postingHandler.ReceiveLine)
	protected.Post("/production-tasks/:taskId/complete", postingHandler.CompleteTask)
	protected.Post("/sync/movements", postingHandler.SyncMovement)

	// Stock mínimo y alertas
	alertsHandler := NewAlertsHandler(deps.Scanner)
	protected.Put("/products/:productId/minimum", RequireRole(minimumEditors...), alertsHandler.SetMinimum)
	protected.Get("/alerts/low-stock", alertsHandler.ListLowStock)
}
