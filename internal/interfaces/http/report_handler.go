package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/innoquim/erp-backend/internal/application/report"
)

// ReportHandler maneja la generación de reportes (protegido).
type ReportHandler struct {
	uc *report.ValuationUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ValuationUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// ValuationJSON godoc
// @Summary      Valorización de inventario de un almacén (JSON)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path  string  true  "ID del almacén"
// @Success      200  {object}  report.Valuation
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/valuation/{warehouse_id} [get]
func (h *ReportHandler) ValuationJSON(c *fiber.Ctx) error {
	valuation, err := h.uc.BuildValuation(c.Context(), c.Params("warehouse_id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(valuation)
}

// ValuationPDF godoc
// @Summary      Valorización de inventario de un almacén (PDF)
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        warehouse_id  path  string  true  "ID del almacén"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/valuation/{warehouse_id}/pdf [get]
func (h *ReportHandler) ValuationPDF(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.GeneratePDF(c.Context(), c.Params("warehouse_id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="valorizacion.pdf"`)
	return c.Send(pdfBytes)
}
