package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/auth"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/usecase"
)

// EnterpriseHandler administración de cuentas enterprise.
type EnterpriseHandler struct {
	uc  *usecase.EnterpriseUseCase
	log zerolog.Logger
}

// NewEnterpriseHandler construye el handler.
func NewEnterpriseHandler(uc *usecase.EnterpriseUseCase, log zerolog.Logger) *EnterpriseHandler {
	return &EnterpriseHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear cuenta enterprise
// @Description  La API key en claro solo se devuelve en esta respuesta.
// @Tags         enterprise
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEnterpriseRequest  true  "Datos de la cuenta"
// @Success      201   {object}  dto.CreateEnterpriseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /enterprise [post]
func (h *EnterpriseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEnterpriseRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	h.log.Info().Str("account_id", out.Account.ID).Str("tenant_id", out.Account.TenantID).
		Str("plan", out.Account.SubscriptionPlan).Msg("cuenta enterprise creada")
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ValidateKey godoc
// @Summary      Validar API key
// @Description  Autovalidación pública; el resumen de cuenta solo se incluye si la key es válida y está habilitada.
// @Tags         enterprise
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateKeyRequest  true  "Key a validar"
// @Success      200   {object}  dto.ValidateKeyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /enterprise/validate-api-key [post]
func (h *EnterpriseHandler) ValidateKey(c *fiber.Ctx) error {
	var in dto.ValidateKeyRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	meta := requestMeta(c)
	out, err := h.uc.ValidateKey(c.UserContext(), in.APIKey, meta)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar cuentas enterprise
// @Tags         enterprise
// @Security     ApiKey
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.EnterpriseListResponse
// @Failure      401     {object}  dto.ErrorResponse
// @Failure      429     {object}  dto.QuotaExceededResponse
// @Router       /enterprise [get]
func (h *EnterpriseHandler) List(c *fiber.Ctx, _ auth.AccountContext) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener cuenta por ID
// @Tags         enterprise
// @Security     ApiKey
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.EnterpriseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /enterprise/{id} [get]
func (h *EnterpriseHandler) GetByID(c *fiber.Ctx, _ auth.AccountContext) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByUserID godoc
// @Summary      Obtener la cuenta de un usuario
// @Tags         enterprise
// @Security     ApiKey
// @Produce      json
// @Param        userId  path  string  true  "ID del usuario"
// @Success      200     {object}  dto.EnterpriseResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /enterprise/by-user/{userId} [get]
func (h *EnterpriseHandler) GetByUserID(c *fiber.Ctx, _ auth.AccountContext) error {
	out, err := h.uc.GetByUserID(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByTenantID godoc
// @Summary      Obtener cuenta por tenant
// @Tags         enterprise
// @Security     ApiKey
// @Produce      json
// @Param        tenantId  path  string  true  "Tenant ID"
// @Success      200       {object}  dto.EnterpriseResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /enterprise/by-tenant/{tenantId} [get]
func (h *EnterpriseHandler) GetByTenantID(c *fiber.Ctx, _ auth.AccountContext) error {
	out, err := h.uc.GetByTenantID(c.UserContext(), c.Params("tenantId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar cuenta
// @Description  Un cambio de plan sin cuota explícita toma la cuota por defecto del plan nuevo.
// @Tags         enterprise
// @Security     ApiKey
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la cuenta"
// @Param        body  body  dto.UpdateEnterpriseRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.EnterpriseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /enterprise/{id} [patch]
func (h *EnterpriseHandler) Update(c *fiber.Ctx, acct auth.AccountContext) error {
	var in dto.UpdateEnterpriseRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	h.log.Info().Str("account_id", out.ID).Str("actor_tenant_id", acct.TenantID).Msg("cuenta actualizada")
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar cuenta
// @Description  Elimina también sus sucursales, contadores de uso y auditoría.
// @Tags         enterprise
// @Security     ApiKey
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /enterprise/{id} [delete]
func (h *EnterpriseHandler) Delete(c *fiber.Ctx, acct auth.AccountContext) error {
	id := c.Params("id")
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	h.log.Info().Str("account_id", id).Str("actor_tenant_id", acct.TenantID).Msg("cuenta eliminada")
	return c.SendStatus(fiber.StatusNoContent)
}

// RegenerateKey godoc
// @Summary      Rotar API key
// @Description  La key anterior deja de ser válida de inmediato. No consume cuota.
// @Tags         enterprise
// @Security     ApiKey
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.RegenerateKeyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /enterprise/{id}/api-key/regenerate [post]
func (h *EnterpriseHandler) RegenerateKey(c *fiber.Ctx, acct auth.AccountContext) error {
	id := c.Params("id")
	out, err := h.uc.RegenerateKey(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	h.log.Info().Str("account_id", id).Str("key_prefix", out.APIKeyPrefix).
		Str("actor_tenant_id", acct.TenantID).Msg("API key rotada")
	return c.JSON(out)
}

// ToggleKey godoc
// @Summary      Activar o desactivar API key
// @Tags         enterprise
// @Security     ApiKey
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la cuenta"
// @Param        body  body  dto.ToggleKeyRequest  true  "Estado deseado"
// @Success      200   {object}  dto.ToggleKeyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /enterprise/{id}/api-key/toggle [patch]
func (h *EnterpriseHandler) ToggleKey(c *fiber.Ctx, acct auth.AccountContext) error {
	var in dto.ToggleKeyRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ToggleKey(c.UserContext(), c.Params("id"), *in.Enabled)
	if err != nil {
		return respondError(c, err)
	}
	h.log.Info().Str("account_id", out.ID).Bool("enabled", out.APIKeyEnabled).
		Str("actor_tenant_id", acct.TenantID).Msg("estado de API key cambiado")
	return c.JSON(out)
}
