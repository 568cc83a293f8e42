package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/devalicin1/Inventory-sub005/internal/application/dto"
	"github.com/devalicin1/Inventory-sub005/internal/application/posting"
	"github.com/devalicin1/Inventory-sub005/internal/domain"
	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
)

// PostingHandler postea documentos de negocio (OC, producción, sync externo) al ledger.
// Reintentar la misma línea es seguro: devuelve posted=false y los eventos ya registrados.
type PostingHandler struct {
	poster *posting.Poster
}

// NewPostingHandler construye el handler.
func NewPostingHandler(poster *posting.Poster) *PostingHandler {
	return &PostingHandler{poster: poster}
}

// Posted godoc
// @Summary      Consultar si una línea de documento ya fue posteada
// @Tags         posting
// @Security     Bearer
// @Produce      json
// @Param        kind         query     string  true   "purchase_order | production_task | external"
// @Param        document_id  query     string  true   "documento"
// @Param        line         query     int     false  "línea (0 por defecto)"
// @Success      200          {object}  dto.PostedResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/posting/posted [get]
func (h *PostingHandler) Posted(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var q dto.PostedQuery
	if err := c.QueryParser(&q); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(q); err != nil {
		return writeError(c, err)
	}
	ids, err := h.poster.PostedEventIDs(c.UserContext(), companyID, entity.SourceRef{
		Kind:       entity.SourceKind(q.Kind),
		DocumentID: q.DocumentID,
		Line:       q.Line,
	})
	if err != nil {
		return writeError(c, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(dto.PostedResponse{Posted: len(ids) > 0, EventIDs: ids})
}

// ReceiveLine godoc
// @Summary      Recibir una línea de orden de compra
// @Tags         posting
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        poId  path      string                  true  "orden de compra"
// @Param        line  path      int                     true  "línea"
// @Param        body  body      dto.ReceiveLineRequest  true  "recepción"
// @Success      200   {object}  dto.PostingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{poId}/lines/{line}/receive [post]
func (h *PostingHandler) ReceiveLine(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	line, err := c.ParamsInt("line")
	if err != nil || line < 0 {
		return writeError(c, domain.NewValidationError("line", "debe ser un entero no negativo"))
	}
	var in dto.ReceiveLineRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, err)
	}
	res, err := h.poster.ReceivePurchaseOrderLine(c.UserContext(), posting.ReceiveLineInput{
		TenantID:        companyID,
		ActorID:         GetUserID(c),
		PurchaseOrderID: c.Params("poId"),
		Line:            line,
		ProductID:       in.ProductID,
		LocationID:      in.LocationID,
		BatchID:         in.BatchID,
		SerialID:        in.SerialID,
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPostingResponse(res))
}

// CompleteTask godoc
// @Summary      Completar una tarea de producción
// @Description  Postea el producto terminado (línea 0) y el consumo de cada insumo (líneas 1..n).
// @Tags         posting
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        taskId  path      string                   true  "tarea"
// @Param        body    body      dto.CompleteTaskRequest  true  "producción"
// @Success      200     {object}  dto.CompleteTaskResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/production-tasks/{taskId}/complete [post]
func (h *PostingHandler) CompleteTask(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CompleteTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, err)
	}
	components := make([]posting.ComponentInput, 0, len(in.Components))
	for _, comp := range in.Components {
		components = append(components, posting.ComponentInput{
			ProductID:  comp.ProductID,
			LocationID: comp.LocationID,
			BatchID:    comp.BatchID,
			Quantity:   comp.Quantity,
		})
	}
	results, err := h.poster.CompleteProductionTask(c.UserContext(), posting.ProductionTaskInput{
		TenantID:   companyID,
		ActorID:    GetUserID(c),
		TaskID:     c.Params("taskId"),
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		BatchID:    in.BatchID,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		Components: components,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.CompleteTaskResponse{Lines: make([]dto.PostingResponse, 0, len(results))}
	for _, r := range results {
		out.Lines = append(out.Lines, toPostingResponse(r))
	}
	return c.JSON(out)
}

// SyncMovement godoc
// @Summary      Sincronizar un movimiento de un sistema externo
// @Tags         posting
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SyncMovementRequest  true  "movimiento externo"
// @Success      200   {object}  dto.PostingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sync/movements [post]
func (h *PostingHandler) SyncMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.SyncMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, err)
	}
	res, err := h.poster.SyncExternalMovement(c.UserContext(), posting.ExternalMovementInput{
		TenantID:     companyID,
		ActorID:      GetUserID(c),
		System:       in.System,
		ExternalID:   in.ExternalID,
		ProductID:    in.ProductID,
		Type:         entity.MovementType(in.Type),
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		FromLocation: in.FromLocation,
		ToLocation:   in.ToLocation,
		BatchID:      in.BatchID,
		SerialID:     in.SerialID,
		Reason:       in.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPostingResponse(res))
}
