package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/audit"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/auth"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/billing"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/quota"
)

// UsageHandler reporte de cuota, estado de cuenta PDF y rastro de auditoría. Ninguna de
// estas rutas consume cuota.
type UsageHandler struct {
	report    *quota.ReportUseCase
	statement *billing.StatementUseCase
	audit     *audit.UseCase
}

// NewUsageHandler construye el handler.
func NewUsageHandler(report *quota.ReportUseCase, statement *billing.StatementUseCase, auditUC *audit.UseCase) *UsageHandler {
	return &UsageHandler{report: report, statement: statement, audit: auditUC}
}

// Quota godoc
// @Summary      Uso de cuota del mes
// @Description  Solo lectura: consultarlo repetidamente no cambia el uso.
// @Tags         quota
// @Security     ApiKey
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.QuotaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /enterprise/{id}/quota [get]
func (h *UsageHandler) Quota(c *fiber.Ctx, _ auth.AccountContext) error {
	out, err := h.report.Report(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Statement godoc
// @Summary      Estado de uso mensual (PDF)
// @Tags         quota
// @Security     ApiKey
// @Produce      application/pdf
// @Param        id      path   string  true   "ID de la cuenta"
// @Param        period  query  string  false  "Mes YYYY-MM (por defecto el vigente)"
// @Success      200     {file}    file
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /enterprise/{id}/quota/statement [get]
func (h *UsageHandler) Statement(c *fiber.Ctx, _ auth.AccountContext) error {
	pdf, filename, err := h.statement.Download(c.UserContext(), c.Params("id"), c.Query("period"))
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

// APILogs godoc
// @Summary      Rastro de autenticación de la cuenta
// @Tags         audit
// @Security     ApiKey
// @Produce      json
// @Param        id      path   string  true   "ID de la cuenta"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.APILogListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /enterprise/{id}/api-logs [get]
func (h *UsageHandler) APILogs(c *fiber.Ctx, _ auth.AccountContext) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, err)
	}
	out, err := h.audit.List(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
