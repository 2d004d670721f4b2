package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/innoquim/erp-backend/internal/application/dto"
	"github.com/innoquim/erp-backend/internal/application/production"
	"github.com/innoquim/erp-backend/internal/domain/entity"
)

// BatchHandler maneja las peticiones HTTP de lotes de producción (protegido).
type BatchHandler struct {
	uc *production.BatchUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc *production.BatchUseCase) *BatchHandler {
	return &BatchHandler{uc: uc}
}

// Create godoc
// @Summary      Crear lote de producción
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Datos del lote"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/production/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	batch, err := h.uc.CreateBatch(c.Context(), production.BatchInput{
		BatchCode:       in.BatchCode,
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		ProductionDate:  in.ProductionDate,
		PlannedQuantity: in.PlannedQuantity,
		UnitID:          in.UnitID,
		ManagerID:       GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBatchResponse(batch, nil))
}

// GetByID godoc
// @Summary      Obtener lote con sus materiales
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	batch, materials, err := h.uc.GetBatch(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toBatchResponse(batch, materials))
}

// List godoc
// @Summary      Listar lotes de producción
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        status      query  string  false  "pending | in_progress | completed | cancelled"
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.BatchListResponse
// @Router       /api/production/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c, 50, 200)
	batches, err := h.uc.ListBatches(c.Context(), c.Query("status"), c.Query("product_id"), limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := dto.BatchListResponse{
		Items: make([]dto.BatchResponse, 0, len(batches)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: len(batches)},
	}
	for _, b := range batches {
		out.Items = append(out.Items, toBatchResponse(b, nil))
	}
	return c.JSON(out)
}

// AddMaterial godoc
// @Summary      Asignar materia prima al lote
// @Description  Congela el costo unitario de la línea al promedio vigente del material (salvo que se envíe unit_cost).
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.AddBatchMaterialRequest  true  "Línea de material"
// @Success      201   {object}  dto.BatchMaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/production/batches/{id}/materials [post]
func (h *BatchHandler) AddMaterial(c *fiber.Ctx) error {
	var in dto.AddBatchMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	line, err := h.uc.AddMaterial(c.Context(), c.Params("id"), production.MaterialLineInput{
		RawMaterialID: in.RawMaterialID,
		UsedQuantity:  in.UsedQuantity,
		UnitID:        in.UnitID,
		UnitCost:      in.UnitCost,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBatchMaterialResponse(line))
}

// RemoveMaterial godoc
// @Summary      Quitar materia prima del lote
// @Tags         production
// @Security     Bearer
// @Param        id       path  string  true  "ID del lote"
// @Param        line_id  path  string  true  "ID de la línea"
// @Success      204  "Sin contenido"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/batches/{id}/materials/{line_id} [delete]
func (h *BatchHandler) RemoveMaterial(c *fiber.Ctx) error {
	if err := h.uc.RemoveMaterial(c.Context(), c.Params("id"), c.Params("line_id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Start godoc
// @Summary      Iniciar lote (pending → in_progress)
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/batches/{id}/start [post]
func (h *BatchHandler) Start(c *fiber.Ctx) error {
	batch, err := h.uc.Start(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toBatchResponse(batch, nil))
}

// Complete godoc
// @Summary      Completar lote de producción
// @Description  Valida stock de todas las líneas, descarga materias primas (SALIDA/PRODUCCION),
//
//	ingresa el producto terminado (ENTRADA/PRODUCCION) y fija su costo unitario,
//	todo en una transacción.
//
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/production/batches/{id}/complete [post]
func (h *BatchHandler) Complete(c *fiber.Ctx) error {
	batch, err := h.uc.Complete(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toBatchResponse(batch, nil))
}

// Cancel godoc
// @Summary      Cancelar lote
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/batches/{id}/cancel [post]
func (h *BatchHandler) Cancel(c *fiber.Ctx) error {
	batch, err := h.uc.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toBatchResponse(batch, nil))
}

func toBatchResponse(b *entity.ProductionBatch, materials []*entity.BatchMaterial) dto.BatchResponse {
	out := dto.BatchResponse{
		ID:                b.ID,
		BatchCode:         b.BatchCode,
		ProductID:         b.ProductID,
		WarehouseID:       b.WarehouseID,
		ProductionDate:    b.ProductionDate,
		PlannedQuantity:   b.PlannedQuantity,
		UnitID:            b.UnitID,
		Status:            b.Status,
		ManagerID:         b.ManagerID,
		MaterialCostTotal: b.MaterialCostTotal,
		UnitCost:          b.UnitCost,
		CompletedAt:       b.CompletedAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
	for _, m := range materials {
		out.Materials = append(out.Materials, toBatchMaterialResponse(m))
	}
	return out
}

func toBatchMaterialResponse(m *entity.BatchMaterial) dto.BatchMaterialResponse {
	return dto.BatchMaterialResponse{
		ID:            m.ID,
		RawMaterialID: m.RawMaterialID,
		UsedQuantity:  m.UsedQuantity,
		UnitID:        m.UnitID,
		UnitCost:      m.UnitCost,
		LineCost:      m.LineCost,
	}
}
