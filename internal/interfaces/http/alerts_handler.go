package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/devalicin1/Inventory-sub005/internal/application/alerts"
	"github.com/devalicin1/Inventory-sub005/internal/application/dto"
)

// AlertsHandler mínimos por producto y feed de stock bajo (protegido).
type AlertsHandler struct {
	scanner *alerts.Scanner
}

// NewAlertsHandler construye el handler.
func NewAlertsHandler(scanner *alerts.Scanner) *AlertsHandler {
	return &AlertsHandler{scanner: scanner}
}

// SetMinimum godoc
// @Summary      Configurar stock mínimo de un producto
// @Description  minimum=0 desactiva la alerta. Requiere rol admin o bodeguero.
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path      string                 true  "producto"
// @Param        body       body      dto.SetMinimumRequest  true  "mínimo"
// @Success      200        {object}  dto.ProductMinimumDTO
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Router       /api/products/{productId}/minimum [put]
func (h *AlertsHandler) SetMinimum(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.SetMinimumRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	m, err := h.scanner.SetMinimum(c.UserContext(), companyID, c.Params("productId"), in.Minimum)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductMinimumDTO{ProductID: m.ProductID, Minimum: m.Minimum, UpdatedAt: m.UpdatedAt})
}

// ListLowStock godoc
// @Summary      Feed de alertas de stock bajo
// @Description  Resultado del último escaneo; con refresh=true se escanea el tenant antes de responder.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        refresh  query     bool  false  "escanear antes de listar"
// @Success      200      {object}  dto.LowStockAlertList
// @Router       /api/alerts/low-stock [get]
func (h *AlertsHandler) ListLowStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if c.QueryBool("refresh") {
		if _, err := h.scanner.ScanTenant(c.UserContext(), companyID); err != nil {
			return writeError(c, err)
		}
	}
	list, err := h.scanner.ListAlerts(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.LowStockAlertList{Total: len(list), Alerts: make([]dto.LowStockAlertDTO, 0, len(list))}
	for _, a := range list {
		out.Alerts = append(out.Alerts, toAlertDTO(a))
	}
	return c.JSON(out)
}
