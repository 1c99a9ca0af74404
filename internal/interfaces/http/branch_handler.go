package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/auth"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/usecase"
)

// BranchHandler sucursales de una cuenta enterprise.
type BranchHandler struct {
	uc *usecase.BranchUseCase
}

// NewBranchHandler construye el handler.
func NewBranchHandler(uc *usecase.BranchUseCase) *BranchHandler {
	return &BranchHandler{uc: uc}
}

// Create godoc
// @Summary      Crear sucursal
// @Description  Una sucursal activa cuenta contra el límite del plan.
// @Tags         branches
// @Security     ApiKey
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la cuenta"
// @Param        body  body  dto.CreateBranchRequest  true  "Datos de la sucursal"
// @Success      201   {object}  dto.BranchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /enterprise/{id}/branches [post]
func (h *BranchHandler) Create(c *fiber.Ctx, _ auth.AccountContext) error {
	var in dto.CreateBranchRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	// El ID queda guardado en la sucursal: se copia fuera del buffer del request.
	out, err := h.uc.Create(c.UserContext(), utils.CopyString(c.Params("id")), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar sucursales
// @Tags         branches
// @Security     ApiKey
// @Produce      json
// @Param        id      path   string  true   "ID de la cuenta"
// @Param        active  query  bool    false  "Solo activas"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.BranchListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /enterprise/{id}/branches [get]
func (h *BranchHandler) List(c *fiber.Ctx, _ auth.AccountContext) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ListByOrganization(c.UserContext(), c.Params("id"), c.QueryBool("active", false), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener sucursal
// @Tags         branches
// @Security     ApiKey
// @Produce      json
// @Param        branchId  path  string  true  "ID de la sucursal"
// @Success      200       {object}  dto.BranchResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /enterprise/branches/{branchId} [get]
func (h *BranchHandler) GetByID(c *fiber.Ctx, _ auth.AccountContext) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("branchId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar sucursal
// @Description  Reactivar una sucursal vuelve a verificar el límite del plan.
// @Tags         branches
// @Security     ApiKey
// @Accept       json
// @Produce      json
// @Param        branchId  path  string                   true  "ID de la sucursal"
// @Param        body      body  dto.UpdateBranchRequest  true  "Campos a actualizar"
// @Success      200       {object}  dto.BranchResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Failure      409       {object}  dto.ErrorResponse
// @Router       /enterprise/branches/{branchId} [patch]
func (h *BranchHandler) Update(c *fiber.Ctx, _ auth.AccountContext) error {
	var in dto.UpdateBranchRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("branchId"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar sucursal
// @Tags         branches
// @Security     ApiKey
// @Produce      json
// @Param        branchId  path  string  true  "ID de la sucursal"
// @Success      200       {object}  dto.BranchResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /enterprise/branches/{branchId}/deactivate [post]
func (h *BranchHandler) Deactivate(c *fiber.Ctx, _ auth.AccountContext) error {
	out, err := h.uc.Deactivate(c.UserContext(), c.Params("branchId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar sucursal
// @Tags         branches
// @Security     ApiKey
// @Param        branchId  path  string  true  "ID de la sucursal"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /enterprise/branches/{branchId} [delete]
func (h *BranchHandler) Delete(c *fiber.Ctx, _ auth.AccountContext) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("branchId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
