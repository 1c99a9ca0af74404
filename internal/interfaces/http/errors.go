package http

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/auth"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/billing"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/quota"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// requestError error de entrada ya clasificado (cuerpo ilegible o validación).
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

// bindJSON parsea el cuerpo en dst y valida sus tags.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return &requestError{code: "INVALID_BODY", message: "cuerpo inválido"}
	}
	return validateStruct(dst)
}

// bindQuery parsea la query string en dst y valida sus tags.
func bindQuery(c *fiber.Ctx, dst interface{}) error {
	if err := c.QueryParser(dst); err != nil {
		return &requestError{code: "VALIDATION", message: "parámetros de consulta inválidos"}
	}
	return validateStruct(dst)
}

func validateStruct(dst interface{}) error {
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", jsonField(fe), fe.Tag()))
			}
			return &requestError{code: "VALIDATION", message: "campos inválidos: " + strings.Join(fields, ", ")}
		}
		return &requestError{code: "VALIDATION", message: "entrada inválida"}
	}
	return nil
}

// jsonField nombre del campo tal como viaja en JSON (camelCase).
func jsonField(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func respond(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

// respondError traduce errores de dominio y de aplicación a la respuesta HTTP. Los errores no
// clasificados se registran y responden 500 sin filtrar el detalle.
func respondError(c *fiber.Ctx, err error) error {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return respond(c, fiber.StatusBadRequest, reqErr.code, reqErr.message)
	case errors.Is(err, domain.ErrInvalidInput):
		return respond(c, fiber.StatusBadRequest, "VALIDATION", clientMessage(err))
	case errors.Is(err, domain.ErrBranchLimitReached):
		return respond(c, fiber.StatusBadRequest, "BRANCH_LIMIT_REACHED", domain.ErrBranchLimitReached.Error())
	case errors.Is(err, billing.ErrInvalidSignature):
		return respond(c, fiber.StatusBadRequest, "INVALID_SIGNATURE", "firma de webhook inválida")
	case errors.Is(err, domain.ErrAccountNotFound):
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", "cuenta enterprise no encontrada")
	case errors.Is(err, domain.ErrBranchNotFound):
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", "sucursal no encontrada")
	case errors.Is(err, domain.ErrNotFound):
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado")
	case errors.Is(err, domain.ErrAccountExists):
		return respond(c, fiber.StatusConflict, "ACCOUNT_EXISTS", domain.ErrAccountExists.Error())
	case errors.Is(err, domain.ErrBranchCodeTaken):
		return respond(c, fiber.StatusConflict, "BRANCH_CODE_TAKEN", domain.ErrBranchCodeTaken.Error())
	case errors.Is(err, domain.ErrDuplicate):
		return respond(c, fiber.StatusConflict, "DUPLICATE", domain.ErrDuplicate.Error())
	case errors.Is(err, auth.ErrUnavailable):
		return respond(c, fiber.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "autenticación no disponible, intente más tarde")
	case errors.Is(err, quota.ErrUnavailable):
		return respond(c, fiber.StatusServiceUnavailable, "QUOTA_UNAVAILABLE", "cuota no disponible, intente más tarde")
	case errors.Is(err, billing.ErrProviderDisabled):
		return respond(c, fiber.StatusServiceUnavailable, "BILLING_UNAVAILABLE", "proveedor de facturación no configurado")
	}
	log.Error().Err(err).Str("method", c.Method()).Str("route", c.Route().Path).Msg("error no controlado")
	return respond(c, fiber.StatusInternalServerError, "INTERNAL", "error interno")
}

// clientMessage detalle de una validación sin el prefijo del sentinel.
func clientMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrInvalidInput.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// ErrorHandler handler de errores de la app Fiber: los *fiber.Error (404 de ruta, cuerpo
// demasiado grande, pánico recuperado) conservan su status; el resto pasa por respondError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error de servidor")
			return respond(c, fe.Code, "INTERNAL", "error interno")
		}
		return respond(c, fe.Code, statusCode(fe.Code), fe.Message)
	}
	return respondError(c, err)
}

// statusCode código de error derivado del status HTTP (404 -> NOT_FOUND).
func statusCode(status int) string {
	text := nethttp.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
