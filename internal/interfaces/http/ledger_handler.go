package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/devalicin1/Inventory-sub005/internal/application/dto"
	"github.com/devalicin1/Inventory-sub005/internal/application/ledger"
	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
)

// LedgerHandler expone el log de movimientos (protegido).
type LedgerHandler struct {
	uc *ledger.AppendMovementUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.AppendMovementUseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// Append godoc
// @Summary      Registrar movimiento en el log
// @Description  Valida, persiste y despacha el evento al agregador. El tenant y el actor salen del token.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AppendMovementRequest  true  "movimiento"
// @Success      201   {object}  dto.AppendMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [post]
func (h *LedgerHandler) Append(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.AppendMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, err)
	}
	ev, err := h.uc.Append(c.UserContext(), entity.MovementEvent{
		TenantID:     companyID,
		ProductID:    in.ProductID,
		Type:         entity.MovementType(in.Type),
		Quantity:     in.Quantity,
		FromLocation: in.FromLocation,
		ToLocation:   in.ToLocation,
		BatchID:      in.BatchID,
		SerialID:     in.SerialID,
		UnitCost:     in.UnitCost,
		SourceRef:    toSourceRef(in.SourceRef),
		ActorID:      GetUserID(c),
		Reason:       in.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AppendMovementResponse{ID: ev.ID, RecordedAt: ev.RecordedAt})
}

// List godoc
// @Summary      Historial de movimientos de un producto
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        product_id  query     string  true   "producto"
// @Param        limit       query     int     false  "máximo 500 (por defecto 100)"
// @Param        offset      query     int     false  "desplazamiento"
// @Success      200         {object}  dto.MovementListResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	productID := c.Query("product_id")
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(page); err != nil {
		return writeError(c, err)
	}
	if productID == "" {
		return writeError(c, domain.NewValidationError("product_id", "requerido"))
	}
	page.DefaultPage()

	events, err := h.uc.ListByProduct(c.UserContext(), companyID, productID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.MovementEventDTO, 0, len(events))
	for _, ev := range events {
		items = append(items, toMovementDTO(ev))
	}
	return c.JSON(dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Get godoc
// @Summary      Obtener un movimiento por id
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "id del evento"
// @Success      200  {object}  dto.MovementEventDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/movements/{id} [get]
func (h *LedgerHandler) Get(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	ev, err := h.uc.GetByID(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementDTO(ev))
}
