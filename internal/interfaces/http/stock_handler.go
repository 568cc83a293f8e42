package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/devalicin1/Inventory-sub005/internal/application/dto"
	"github.com/devalicin1/Inventory-sub005/internal/application/stock"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
)

// StockHandler consultas sobre la proyección de saldos (protegido).
type StockHandler struct {
	uc *stock.QueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.QueryUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// GetBalance godoc
// @Summary      Saldo de una clave de stock
// @Description  Sin location_id se consulta la ubicación por defecto. Una clave sin movimientos devuelve cero.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query     string  true   "producto"
// @Param        location_id  query     string  false  "ubicación"
// @Param        batch_id     query     string  false  "lote"
// @Param        serial_id    query     string  false  "serial"
// @Success      200          {object}  dto.StockBalanceDTO
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/stock/balance [get]
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var q dto.BalanceQuery
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(q); err != nil {
		return writeError(c, err)
	}
	b, err := h.uc.GetBalance(c.UserContext(), companyID, entity.StockKey{
		ProductID:  q.ProductID,
		LocationID: q.LocationID,
		BatchID:    q.BatchID,
		SerialID:   q.SerialID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBalanceDTO(b))
}

// GetProductBalance godoc
// @Summary      Saldo agregado de un producto
// @Description  Suma de todas las claves; el costo se pondera sobre las claves con saldo positivo.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path      string  true  "producto"
// @Success      200        {object}  dto.ProductBalanceDTO
// @Router       /api/stock/products/{productId}/balance [get]
func (h *StockHandler) GetProductBalance(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	pb, err := h.uc.GetProductBalance(c.UserContext(), companyID, c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductBalanceDTO{
		ProductID:       pb.ProductID,
		QuantityOnHand:  pb.QuantityOnHand,
		AverageUnitCost: pb.AverageUnitCost,
		Keys:            pb.Keys,
	})
}

// ListProductBalances godoc
// @Summary      Saldos por clave de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "producto"
// @Success      200        {array}  dto.StockBalanceDTO
// @Router       /api/stock/products/{productId}/balances [get]
func (h *StockHandler) ListProductBalances(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	rows, err := h.uc.ListByProduct(c.UserContext(), companyID, c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockBalanceDTO, 0, len(rows))
	for _, b := range rows {
		out = append(out, toBalanceDTO(b))
	}
	return c.JSON(out)
}
