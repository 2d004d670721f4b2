package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/innoquim/erp-backend/internal/application/dto"
	"github.com/innoquim/erp-backend/internal/application/reception"
	"github.com/innoquim/erp-backend/internal/domain/entity"
)

// ReceptionHandler maneja las peticiones HTTP de recepciones de materia prima (protegido).
type ReceptionHandler struct {
	uc *reception.ReceptionUseCase
}

// NewReceptionHandler construye el handler.
func NewReceptionHandler(uc *reception.ReceptionUseCase) *ReceptionHandler {
	return &ReceptionHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar recepción de materia prima
// @Description  Crea la recepción y, en la misma transacción, registra la ENTRADA/COMPRA en el Kardex.
// @Tags         receptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceptionRequest  true  "Datos de la recepción"
// @Success      201   {object}  dto.ReceptionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/receptions [post]
func (h *ReceptionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReceptionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.Receive(c.Context(), reception.ReceptionInput{
		RawMaterialID: in.RawMaterialID,
		SupplierID:    in.SupplierID,
		WarehouseID:   in.WarehouseID,
		Quantity:      in.Quantity,
		UnitCost:      in.UnitCost,
		InvoiceNumber: in.InvoiceNumber,
		Lot:           in.Lot,
		Notes:         in.Notes,
		ReceivedBy:    GetUserID(c),
		ReceivedAt:    in.ReceivedAt,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReceptionResponse(rec))
}

// GetByID godoc
// @Summary      Obtener recepción por ID
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.ReceptionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receptions/{id} [get]
func (h *ReceptionHandler) GetByID(c *fiber.Ctx) error {
	rec, err := h.uc.GetReception(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toReceptionResponse(rec))
}

// List godoc
// @Summary      Listar recepciones
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        raw_material_id  query  string  false  "Filtrar por materia prima"
// @Param        supplier_id      query  string  false  "Filtrar por proveedor"
// @Param        limit            query  int     false  "Límite"  default(50)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ReceptionListResponse
// @Router       /api/receptions [get]
func (h *ReceptionHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c, 50, 200)
	list, err := h.uc.ListReceptions(c.Context(), c.Query("raw_material_id"), c.Query("supplier_id"), limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := dto.ReceptionListResponse{
		Items: make([]dto.ReceptionResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: len(list)},
	}
	for _, r := range list {
		out.Items = append(out.Items, toReceptionResponse(r))
	}
	return c.JSON(out)
}

func toReceptionResponse(r *entity.MaterialReception) dto.ReceptionResponse {
	return dto.ReceptionResponse{
		ID:            r.ID,
		RawMaterialID: r.RawMaterialID,
		SupplierID:    r.SupplierID,
		WarehouseID:   r.WarehouseID,
		Quantity:      r.Quantity,
		UnitCost:      r.UnitCost,
		InvoiceNumber: r.InvoiceNumber,
		Lot:           r.Lot,
		Notes:         r.Notes,
		ReceivedBy:    r.ReceivedBy,
		ReceivedAt:    r.ReceivedAt,
	}
}
