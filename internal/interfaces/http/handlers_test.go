package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devalicin1/Inventory-sub005/internal/application/alerts"
	"github.com/devalicin1/Inventory-sub005/internal/application/dto"
	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/application/posting"
	"github.com/devalicin1/Inventory-sub005/internal/application/stock"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/memory"
	"github.com/devalicin1/Inventory-sub005/internal/infrastructure/metrics"
	apphttp "github.com/devalicin1/Inventory-sub005/internal/interfaces/http"
	pkgjwt "github.com/devalicin1/Inventory-sub005/pkg/jwt"
	"github.com/devalicin1/Inventory-sub005/pkg/logger"
)

const otherCompanyID = "00000000-0000-0000-0000-000000000099"

// buildLedgerApp arma la API completa sobre el almacén en memoria con despacho inline.
func buildLedgerApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	prom := metrics.NewPrometheus()
	retry := ledger.RetryConfig{MaxAttempts: 50, InitialInterval: time.Microsecond, MaxInterval: time.Millisecond}
	agg := ledger.NewAggregator(store.Balances(), retry, prom, logger.Nop())
	appendUC := ledger.NewAppendMovementUseCase(store.Events(), ledger.NewInlineDispatcher(agg), prom, logger.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:         appendUC,
		Stock:          stock.NewQueryUseCase(store.Balances()),
		Poster:         posting.NewPoster(store.Events(), appendUC, store.Balances(), prom, logger.Nop()),
		Scanner:        alerts.NewScanner(store.Balances(), store.Minimums(), store.Alerts(), prom, logger.Nop()),
		MetricsHandler: prom.Handler(),
		JWTSecret:      testJWTSecret,
	})
	return app
}

func bearer(t *testing.T, companyID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, companyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerAPI_AppendYConsultaSaldo(t *testing.T) {
	app := buildLedgerApp(t)
	auth := bearer(t, testCompanyID, "bodeguero")

	for _, in := range []map[string]any{
		{"product_id": "P1", "movement_type": "RECEIVE", "quantity": "100", "to_location": "BOD-1", "unit_cost": "2.00"},
		{"product_id": "P1", "movement_type": "RECEIVE", "quantity": "50", "to_location": "BOD-1", "unit_cost": "5.00"},
	} {
		resp := call(t, app, http.MethodPost, "/api/ledger/movements", auth, in)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		created := decode[dto.AppendMovementResponse](t, resp)
		assert.NotEmpty(t, created.ID)
	}

	resp := call(t, app, http.MethodGet, "/api/stock/balance?product_id=P1&location_id=BOD-1", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bal := decode[dto.StockBalanceDTO](t, resp)
	assert.Equal(t, "150", bal.QuantityOnHand.String())
	assert.Equal(t, "2.3333", bal.AverageUnitCost.StringFixed(4))
	assert.Equal(t, "p:P1|loc:BOD-1", bal.StockKey)

	resp = call(t, app, http.MethodGet, "/api/ledger/movements?product_id=P1&limit=10", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.MovementListResponse](t, resp)
	require.Len(t, list.Items, 2)
	assert.Equal(t, testUserID, list.Items[0].ActorID)

	resp = call(t, app, http.MethodGet, "/api/ledger/movements/"+list.Items[0].ID, auth, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLedgerAPI_ErroresDeValidacionIndicanCampo(t *testing.T) {
	app := buildLedgerApp(t)
	auth := bearer(t, testCompanyID, "bodeguero")

	cases := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"sin producto", map[string]any{"movement_type": "RECEIVE", "quantity": "1"}, "product_id"},
		{"tipo desconocido", map[string]any{"product_id": "P1", "movement_type": "LOAN", "quantity": "1"}, "movement_type"},
		{"cantidad cero", map[string]any{"product_id": "P1", "movement_type": "SHIP", "quantity": "0"}, "quantity"},
		{"costo negativo", map[string]any{"product_id": "P1", "movement_type": "RECEIVE", "quantity": "1", "unit_cost": "-1"}, "unit_cost"},
		{"origen sin documento", map[string]any{
			"product_id": "P1", "movement_type": "RECEIVE", "quantity": "1",
			"source_ref": map[string]any{"kind": "purchase_order"},
		}, "source_ref.document_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, app, http.MethodPost, "/api/ledger/movements", auth, tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, "VALIDATION", body.Code)
			assert.Equal(t, tc.field, body.Field)
		})
	}
}

func TestLedgerAPI_SinTokenRetorna401(t *testing.T) {
	app := buildLedgerApp(t)
	resp := call(t, app, http.MethodGet, "/api/stock/balance?product_id=P1", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLedgerAPI_EventoInexistenteRetorna404(t *testing.T) {
	app := buildLedgerApp(t)
	resp := call(t, app, http.MethodGet, "/api/ledger/movements/no-existe", bearer(t, testCompanyID, "admin"), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStockAPI_TenantsAislados(t *testing.T) {
	app := buildLedgerApp(t)
	resp := call(t, app, http.MethodPost, "/api/ledger/movements", bearer(t, testCompanyID, "admin"),
		map[string]any{"product_id": "P1", "movement_type": "RECEIVE", "quantity": "7"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/stock/products/P1/balance", bearer(t, otherCompanyID, "admin"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	other := decode[dto.ProductBalanceDTO](t, resp)
	assert.True(t, other.QuantityOnHand.IsZero())
	assert.Equal(t, 0, other.Keys)

	resp = call(t, app, http.MethodGet, "/api/stock/products/P1/balances", bearer(t, testCompanyID, "admin"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := decode[[]dto.StockBalanceDTO](t, resp)
	require.Len(t, rows, 1)
	assert.Equal(t, "default", rows[0].LocationID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Posteo de documentos
// ──────────────────────────────────────────────────────────────────────────────

func TestPostingAPI_RecepcionDeOCEsIdempotente(t *testing.T) {
	app := buildLedgerApp(t)
	auth := bearer(t, testCompanyID, "bodeguero")
	body := map[string]any{"product_id": "P1", "quantity": "10", "unit_cost": "4.50"}

	resp := call(t, app, http.MethodPost, "/api/purchase-orders/PO-1/lines/0/receive", auth, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[dto.PostingResponse](t, resp)
	assert.True(t, first.Posted)
	require.Len(t, first.EventIDs, 1)

	resp = call(t, app, http.MethodPost, "/api/purchase-orders/PO-1/lines/0/receive", auth, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode[dto.PostingResponse](t, resp)
	assert.False(t, second.Posted)
	assert.Equal(t, first.EventIDs, second.EventIDs)

	resp = call(t, app, http.MethodGet, "/api/posting/posted?kind=purchase_order&document_id=PO-1&line=0", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posted := decode[dto.PostedResponse](t, resp)
	assert.True(t, posted.Posted)

	resp = call(t, app, http.MethodGet, "/api/stock/balance?product_id=P1", auth, nil)
	bal := decode[dto.StockBalanceDTO](t, resp)
	assert.Equal(t, "p:P1|loc:default", bal.StockKey)
	assert.Equal(t, "10", bal.QuantityOnHand.String())
	assert.Equal(t, "4.5", bal.AverageUnitCost.String())
}

func TestPostingAPI_LineaNoNumericaRetorna400(t *testing.T) {
	app := buildLedgerApp(t)
	resp := call(t, app, http.MethodPost, "/api/purchase-orders/PO-1/lines/x/receive", bearer(t, testCompanyID, "admin"),
		map[string]any{"product_id": "P1", "location_id": "A", "quantity": "1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "line", body.Field)
}

func TestPostingAPI_ProduccionYSync(t *testing.T) {
	app := buildLedgerApp(t)
	auth := bearer(t, testCompanyID, "admin")

	resp := call(t, app, http.MethodPost, "/api/sync/movements", auth, map[string]any{
		"system": "shop", "external_id": "ord-1", "product_id": "RAW",
		"movement_type": "RECEIVE", "quantity": 20, "unit_cost": 3.5, "to_location": "PLANTA",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.PostingResponse](t, resp).Posted)

	resp = call(t, app, http.MethodPost, "/api/production-tasks/T-9/complete", auth, map[string]any{
		"product_id": "FG", "location_id": "PLANTA", "quantity": "5",
		"components": []map[string]any{{"product_id": "RAW", "location_id": "PLANTA", "quantity": "10"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.CompleteTaskResponse](t, resp)
	require.Len(t, out.Lines, 2)
	assert.True(t, out.Lines[0].Posted)

	resp = call(t, app, http.MethodGet, "/api/stock/balance?product_id=FG&location_id=PLANTA", auth, nil)
	fg := decode[dto.StockBalanceDTO](t, resp)
	assert.Equal(t, "5", fg.QuantityOnHand.String())
	assert.Equal(t, "7", fg.AverageUnitCost.String())

	resp = call(t, app, http.MethodGet, "/api/stock/balance?product_id=RAW&location_id=PLANTA", auth, nil)
	raw := decode[dto.StockBalanceDTO](t, resp)
	assert.Equal(t, "10", raw.QuantityOnHand.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Mínimos y alertas
// ──────────────────────────────────────────────────────────────────────────────

func TestAlertsAPI_MinimoYFeed(t *testing.T) {
	app := buildLedgerApp(t)

	resp := call(t, app, http.MethodPut, "/api/products/P1/minimum", bearer(t, testCompanyID, "vendedor"),
		map[string]any{"minimum": "10"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	admin := bearer(t, testCompanyID, "admin")
	resp = call(t, app, http.MethodPut, "/api/products/P1/minimum", admin, map[string]any{"minimum": "10"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/ledger/movements", admin,
		map[string]any{"product_id": "P1", "movement_type": "RECEIVE", "quantity": "4", "to_location": "A"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/alerts/low-stock?refresh=true", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed := decode[dto.LowStockAlertList](t, resp)
	require.Equal(t, 1, feed.Total)
	assert.Equal(t, "P1", feed.Alerts[0].ProductID)
	assert.Equal(t, "6", feed.Alerts[0].Deficit.String())

	resp = call(t, app, http.MethodPut, "/api/products/P1/minimum", admin, map[string]any{"minimum": "-1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "minimum", decode[dto.ErrorResponse](t, resp).Field)
}

func TestMetricsEndpoint(t *testing.T) {
	app := buildLedgerApp(t)
	resp := call(t, app, http.MethodPost, "/api/ledger/movements", bearer(t, testCompanyID, "admin"),
		map[string]any{"product_id": "P1", "movement_type": "RECEIVE", "quantity": "1"})
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/metrics", "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "stock_ledger_log_events_appended_total")
	assert.Contains(t, string(raw), "stock_ledger_aggregator_events_applied_total")
}
