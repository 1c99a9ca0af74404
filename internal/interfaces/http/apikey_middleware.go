package http

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/auth"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/quota"
)

// Cabeceras de cuota en rutas medidas.
const (
	HeaderQuotaLimit     = "X-Quota-Limit"
	HeaderQuotaRemaining = "X-Quota-Remaining"
	HeaderQuotaReset     = "X-Quota-Reset"
)

const localAccount = "enterprise_account"

// Admitter decide la admisión de una petición tenant (auth.Gate).
type Admitter interface {
	Admit(ctx context.Context, rawKey string, meta auth.RequestMeta, metered bool) (auth.Admission, error)
}

// TenantHandler handler de una ruta tenant; recibe la cuenta autenticada explícitamente.
type TenantHandler func(c *fiber.Ctx, acct auth.AccountContext) error

// requestMeta copia método, path e IP fuera del buffer de fasthttp: el evento de auditoría
// se persiste en otra goroutine después de que el request termina.
func requestMeta(c *fiber.Ctx) auth.RequestMeta {
	return auth.RequestMeta{
		Method: utils.CopyString(c.Method()),
		Path:   utils.CopyString(c.Path()),
		IP:     utils.CopyString(c.IP()),
	}
}

// TenantMiddleware autentica la API key del header y, si la ruta es medida, consume cuota.
// Solo las peticiones admitidas llegan al handler.
func TenantMiddleware(gate Admitter, header string, metered bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		meta := requestMeta(c)
		adm, err := gate.Admit(c.UserContext(), strings.TrimSpace(c.Get(header)), meta, metered)

		switch adm.Result.Outcome {
		case auth.OutcomeAuthenticated:
		case auth.OutcomeMissingCredential:
			return respond(c, fiber.StatusUnauthorized, "MISSING_API_KEY", "header "+header+" requerido")
		case auth.OutcomeInvalidCredential:
			return respond(c, fiber.StatusUnauthorized, "INVALID_API_KEY", "API key inválida")
		case auth.OutcomeDisabled:
			return respond(c, fiber.StatusForbidden, "API_KEY_DISABLED", "API key deshabilitada")
		default:
			return respond(c, fiber.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "autenticación no disponible, intente más tarde")
		}
		if err != nil {
			return respondError(c, err)
		}

		if metered {
			setQuotaHeaders(c, adm.Decision)
			if !adm.Decision.Allowed {
				return quotaExceeded(c, adm.Decision)
			}
		}
		c.Locals(localAccount, adm.Result.Account)
		return c.Next()
	}
}

func setQuotaHeaders(c *fiber.Ctx, d quota.Decision) {
	if d.Quota == nil {
		c.Set(HeaderQuotaLimit, "unlimited")
		c.Set(HeaderQuotaRemaining, "unlimited")
	} else {
		c.Set(HeaderQuotaLimit, strconv.Itoa(*d.Quota))
		var remaining int64
		if d.Remaining != nil {
			remaining = *d.Remaining
		}
		c.Set(HeaderQuotaRemaining, strconv.FormatInt(remaining, 10))
	}
	c.Set(HeaderQuotaReset, strconv.FormatInt(d.ResetAt().Unix(), 10))
}

func quotaExceeded(c *fiber.Ctx, d quota.Decision) error {
	var limit int
	if d.Quota != nil {
		limit = *d.Quota
	}
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds(d.ResetAt(), time.Now())))
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.QuotaExceededResponse{
		Code:    "QUOTA_EXCEEDED",
		Message: "cuota mensual agotada",
		Used:    d.Used,
		Quota:   limit,
		ResetAt: d.ResetAt(),
	})
}

// retryAfterSeconds segundos hasta resetAt redondeados hacia arriba; mínimo 1.
func retryAfterSeconds(resetAt, now time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// withAccount adapta un TenantHandler a fiber.Handler. Si la ruta no pasó por
// TenantMiddleware no hay cuenta y responde 401.
func withAccount(h TenantHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acct, ok := AccountContextFrom(c)
		if !ok {
			return respond(c, fiber.StatusUnauthorized, "MISSING_API_KEY", "petición sin cuenta autenticada")
		}
		return h(c, acct)
	}
}

// AccountContextFrom cuenta autenticada de la petición (después de TenantMiddleware).
func AccountContextFrom(c *fiber.Ctx) (auth.AccountContext, bool) {
	acct, ok := c.Locals(localAccount).(auth.AccountContext)
	return acct, ok
}

// AccountField valor de un campo de la cuenta autenticada; "" si no hay cuenta.
func AccountField(c *fiber.Ctx, f auth.Field) string {
	acct, ok := AccountContextFrom(c)
	if !ok {
		return ""
	}
	v, _ := acct.Get(f)
	return v
}
