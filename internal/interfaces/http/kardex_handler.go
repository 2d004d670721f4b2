package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/application/dto"
	appkardex "github.com/innoquim/erp-backend/internal/application/kardex"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
)

// KardexHandler maneja las peticiones HTTP del Kardex (protegido).
type KardexHandler struct {
	uc *appkardex.RecordMovementUseCase
}

// NewKardexHandler construye el handler.
func NewKardexHandler(uc *appkardex.RecordMovementUseCase) *KardexHandler {
	return &KardexHandler{uc: uc}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de Kardex
// @Tags         kardex
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "Movimiento ENTRADA/SALIDA"
// @Success      201   {object}  dto.KardexEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/kardex/movements [post]
func (h *KardexHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.uc.RecordMovement(c.Context(), appkardex.MovementInput{
		WarehouseID: in.WarehouseID,
		Item:        kardex.ItemRef{Kind: kardex.ItemKind(in.ItemType), ID: in.ItemID},
		Type:        in.Type,
		Reason:      in.Reason,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		ReferenceID: in.ReferenceID,
		Notes:       in.Notes,
		RecordedBy:  GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEntryResponse(entry))
}

// AdjustRequest body para POST /api/kardex/adjustments.
type AdjustRequest struct {
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	ItemType    string          `json:"item_type" validate:"required,oneof=MATERIA_PRIMA PRODUCTO"`
	ItemID      string          `json:"item_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"` // con signo: positivo entra, negativo sale
	UnitCost    decimal.Decimal `json:"unit_cost,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// Adjust godoc
// @Summary      Ajuste manual de inventario
// @Description  Cantidad positiva genera ENTRADA/AJUSTE; negativa, SALIDA/AJUSTE al costo promedio vigente.
// @Tags         kardex
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  AdjustRequest  true  "Ajuste con cantidad firmada"
// @Success      201   {object}  dto.KardexEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/kardex/adjustments [post]
func (h *KardexHandler) Adjust(c *fiber.Ctx) error {
	var in AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.uc.Adjust(c.Context(), appkardex.AdjustInput{
		WarehouseID: in.WarehouseID,
		Item:        kardex.ItemRef{Kind: kardex.ItemKind(in.ItemType), ID: in.ItemID},
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Notes:       in.Notes,
		RecordedBy:  GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEntryResponse(entry))
}

// GetBalance godoc
// @Summary      Saldo actual de (almacén, ítem)
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true  "Almacén"
// @Param        item_type     query  string  true  "MATERIA_PRIMA | PRODUCTO"
// @Param        item_id       query  string  true  "ID del ítem"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex/balance [get]
func (h *KardexHandler) GetBalance(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	ref := kardex.ItemRef{Kind: kardex.ItemKind(c.Query("item_type")), ID: c.Query("item_id")}
	balance, err := h.uc.CurrentBalance(c.Context(), warehouseID, ref)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.BalanceResponse{
		WarehouseID: warehouseID,
		ItemType:    string(ref.Kind),
		ItemID:      ref.ID,
		Quantity:    balance.Quantity,
		TotalCost:   balance.TotalCost,
		AvgCost:     balance.AvgCost,
	})
}

// History godoc
// @Summary      Historial Kardex de (almacén, ítem)
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "Almacén"
// @Param        item_type     query  string  true   "MATERIA_PRIMA | PRODUCTO"
// @Param        item_id       query  string  true   "ID del ítem"
// @Param        from          query  string  false  "Fecha inicial (RFC3339)"
// @Param        to            query  string  false  "Fecha final (RFC3339)"
// @Param        limit         query  int     false  "Límite"  default(100)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.KardexHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex/history [get]
func (h *KardexHandler) History(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	ref := kardex.ItemRef{Kind: kardex.ItemKind(c.Query("item_type")), ID: c.Query("item_id")}
	limit, offset := pageParams(c, 100, 500)

	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		to = &t
	}

	entries, err := h.uc.History(c.Context(), warehouseID, ref, from, to, limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := dto.KardexHistoryResponse{
		Items: make([]dto.KardexEntryResponse, 0, len(entries)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: len(entries)},
	}
	for _, e := range entries {
		out.Items = append(out.Items, toEntryResponse(e))
	}
	return c.JSON(out)
}

func toEntryResponse(e *entity.KardexEntry) dto.KardexEntryResponse {
	return dto.KardexEntryResponse{
		ID:          e.ID,
		Seq:         e.Seq,
		Fecha:       e.Fecha,
		ItemType:    e.ItemType,
		ItemID:      e.ItemID,
		WarehouseID: e.WarehouseID,

		MovementType: e.MovementType,
		Reason:       e.Reason,
		Quantity:     e.Quantity,
		UnitCost:     e.UnitCost,
		TotalCost:    e.TotalCost,

		BalanceQuantity:  e.BalanceQuantity,
		BalanceTotalCost: e.BalanceTotalCost,
		BalanceAvgCost:   e.BalanceAvgCost,

		ReferenceID: e.ReferenceID,
		Notes:       e.Notes,
		RecordedBy:  e.RecordedBy,
	}
}
