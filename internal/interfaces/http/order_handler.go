package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/innoquim/erp-backend/internal/application/dto"
	"github.com/innoquim/erp-backend/internal/application/orders"
	"github.com/innoquim/erp-backend/internal/domain/entity"
)

// OrderHandler maneja las peticiones HTTP de órdenes de venta (protegido).
type OrderHandler struct {
	uc *orders.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de venta
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Datos de la orden"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.CreateOrder(c.Context(), orders.OrderInput{
		OrderCode:   in.OrderCode,
		ClientID:    in.ClientID,
		WarehouseID: in.WarehouseID,
		OrderDate:   in.OrderDate,
		TaxRate:     in.TaxRate,
		Notes:       in.Notes,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order, nil))
}

// GetByID godoc
// @Summary      Obtener orden con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, items, err := h.uc.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toOrderResponse(order, items))
}

// List godoc
// @Summary      Listar órdenes de venta
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status     query  string  false  "pending | confirmed | in_progress | completed | cancelled"
// @Param        client_id  query  string  false  "Filtrar por cliente"
// @Param        limit      query  int     false  "Límite"  default(50)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c, 50, 200)
	list, err := h.uc.ListOrders(c.Context(), c.Query("status"), c.Query("client_id"), limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := dto.OrderListResponse{
		Items: make([]dto.OrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: len(list)},
	}
	for _, o := range list {
		out.Items = append(out.Items, toOrderResponse(o, nil))
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar línea a la orden
// @Description  Sin unit_price se toma el precio de lista del producto. Recalcula los totales.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.OrderItemRequest  true  "Línea de producto"
// @Success      201   {object}  dto.OrderItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	var in dto.OrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.AddItem(c.Context(), c.Params("id"), orders.ItemInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderItemResponse(item))
}

// UpdateItem godoc
// @Summary      Actualizar línea de la orden
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Param        id       path  string  true  "ID de la orden"
// @Param        item_id  path  string  true  "ID de la línea"
// @Param        body     body  dto.OrderItemRequest  true  "Nuevos valores"
// @Success      204  "Sin contenido"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{item_id} [put]
func (h *OrderHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.OrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.uc.UpdateItem(c.Context(), c.Params("id"), c.Params("item_id"), orders.ItemInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveItem godoc
// @Summary      Quitar línea de la orden
// @Tags         orders
// @Security     Bearer
// @Param        id       path  string  true  "ID de la orden"
// @Param        item_id  path  string  true  "ID de la línea"
// @Success      204  "Sin contenido"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{item_id} [delete]
func (h *OrderHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.uc.RemoveItem(c.Context(), c.Params("id"), c.Params("item_id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Confirm godoc
// @Summary      Confirmar orden (pending → confirmed)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/confirm [post]
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	order, err := h.uc.Confirm(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toOrderResponse(order, nil))
}

// Complete godoc
// @Summary      Completar orden: despacho de inventario
// @Description  Valida stock de todas las líneas y registra una SALIDA/VENTA por línea al costo
//
//	promedio vigente de cada producto, en una transacción.
//
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *fiber.Ctx) error {
	order, err := h.uc.Complete(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toOrderResponse(order, nil))
}

// Cancel godoc
// @Summary      Cancelar orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	order, err := h.uc.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toOrderResponse(order, nil))
}

func toOrderResponse(o *entity.SalesOrder, items []*entity.OrderItem) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:            o.ID,
		OrderCode:     o.OrderCode,
		ClientID:      o.ClientID,
		WarehouseID:   o.WarehouseID,
		OrderDate:     o.OrderDate,
		Status:        o.Status,
		TaxRate:       o.TaxRate,
		ItemsSubtotal: o.ItemsSubtotal,
		TaxAmount:     o.TaxAmount,
		Total:         o.Total,
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, toOrderItemResponse(it))
	}
	return out
}

func toOrderItemResponse(it *entity.OrderItem) dto.OrderItemResponse {
	return dto.OrderItemResponse{
		ID:        it.ID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		UnitPrice: it.UnitPrice,
		Subtotal:  it.Subtotal,
	}
}
