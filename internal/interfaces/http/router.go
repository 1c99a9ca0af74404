package http

import (
	"fmt"
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/audit"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/billing"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/quota"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/usecase"
	"github.com/jhoicas/lavanderia-enterprise-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Gate         Admitter
	APIKeyHeader string
	JWTSecret    string
	JWTIssuer    string

	EnterpriseUC *usecase.EnterpriseUseCase
	BranchUC     *usecase.BranchUseCase
	ReportUC     *quota.ReportUseCase
	StatementUC  *billing.StatementUseCase
	AuditUC      *audit.UseCase
	PlanSyncUC   *billing.PlanSyncUseCase
	Webhook      billing.WebhookParser

	RateLimiter *IPRateLimiter
	Metrics     nethttp.Handler
	Logger      zerolog.Logger
}

// Routes tabla completa de rutas. El orden importa: Fiber toma la primera coincidencia,
// así que los segmentos estáticos van antes que /:id.
func Routes(deps RouterDeps) []Route {
	enterprise := NewEnterpriseHandler(deps.EnterpriseUC, deps.Logger)
	branches := NewBranchHandler(deps.BranchUC)
	usage := NewUsageHandler(deps.ReportUC, deps.StatementUC, deps.AuditUC)
	billingH := NewBillingHandler(deps.PlanSyncUC, deps.Webhook, deps.AuditUC, deps.Logger)

	get, post, patch, del := fiber.MethodGet, fiber.MethodPost, fiber.MethodPatch, fiber.MethodDelete
	return []Route{
		// Públicas
		{Method: get, Path: "/health", Access: Public, Handler: health},
		{Method: get, Path: "/metrics", Access: Public, Handler: metricsHandler(deps.Metrics)},
		{Method: post, Path: "/enterprise", Access: Public, Throttled: true, Handler: enterprise.Create},
		{Method: post, Path: "/enterprise/validate-api-key", Access: Public, Throttled: true, Handler: enterprise.ValidateKey},
		{Method: post, Path: "/billing/stripe/webhook", Access: Public, Handler: billingH.StripeWebhook},

		// Tenant: cuentas
		{Method: get, Path: "/enterprise", Access: Tenant, Metered: true, TenantHandler: enterprise.List},
		{Method: get, Path: "/enterprise/by-user/:userId", Access: Tenant, Metered: true, TenantHandler: enterprise.GetByUserID},
		{Method: get, Path: "/enterprise/by-tenant/:tenantId", Access: Tenant, Metered: true, TenantHandler: enterprise.GetByTenantID},

		// Tenant: sucursales por ID
		{Method: get, Path: "/enterprise/branches/:branchId", Access: Tenant, Metered: true, TenantHandler: branches.GetByID},
		{Method: patch, Path: "/enterprise/branches/:branchId", Access: Tenant, Metered: true, TenantHandler: branches.Update},
		{Method: del, Path: "/enterprise/branches/:branchId", Access: Tenant, Metered: true, TenantHandler: branches.Delete},
		{Method: post, Path: "/enterprise/branches/:branchId/deactivate", Access: Tenant, Metered: true, TenantHandler: branches.Deactivate},

		{Method: get, Path: "/enterprise/:id", Access: Tenant, Metered: true, TenantHandler: enterprise.GetByID},
		{Method: patch, Path: "/enterprise/:id", Access: Tenant, Metered: true, TenantHandler: enterprise.Update},
		{Method: del, Path: "/enterprise/:id", Access: Tenant, Metered: true, TenantHandler: enterprise.Delete},
		{Method: post, Path: "/enterprise/:id/api-key/regenerate", Access: Tenant, TenantHandler: enterprise.RegenerateKey},
		{Method: patch, Path: "/enterprise/:id/api-key/toggle", Access: Tenant, TenantHandler: enterprise.ToggleKey},
		{Method: post, Path: "/enterprise/:id/branches", Access: Tenant, Metered: true, TenantHandler: branches.Create},
		{Method: get, Path: "/enterprise/:id/branches", Access: Tenant, Metered: true, TenantHandler: branches.List},
		{Method: get, Path: "/enterprise/:id/quota", Access: Tenant, TenantHandler: usage.Quota},
		{Method: get, Path: "/enterprise/:id/quota/statement", Access: Tenant, TenantHandler: usage.Statement},
		{Method: get, Path: "/enterprise/:id/api-logs", Access: Tenant, TenantHandler: usage.APILogs},

		// Operador
		{Method: post, Path: "/admin/enterprise/:id/billing/sync", Access: Operator, Handler: billingH.SyncPlan},
		{Method: post, Path: "/admin/audit/purge", Access: Operator, Handler: billingH.PurgeAudit},
	}
}

// Router valida la tabla y registra cada ruta con la cadena de middlewares de su acceso.
func Router(app *fiber.App, deps RouterDeps) error {
	routes := Routes(deps)
	if err := ValidateRoutes(routes); err != nil {
		return fmt.Errorf("tabla de rutas inválida: %w", err)
	}
	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = NewIPRateLimiter(0, 0)
	}

	for _, r := range routes {
		var chain []fiber.Handler
		switch r.Access {
		case Public:
			if r.Throttled {
				chain = append(chain, limiter.Handler())
			}
			chain = append(chain, r.Handler)
		case Tenant:
			chain = append(chain, TenantMiddleware(deps.Gate, deps.APIKeyHeader, r.Metered), withAccount(r.TenantHandler))
		case Operator:
			chain = append(chain, OperatorMiddleware(deps.JWTSecret, deps.JWTIssuer), RequireRole(jwt.RoleOperator), r.Handler)
		}
		app.Add(r.Method, r.Path, chain...)
	}

	app.Use(func(c *fiber.Ctx) error {
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", "ruta no encontrada")
	})
	return nil
}

// health godoc
// @Summary  Health check
// @Tags     ops
// @Success  200
// @Router   /health [get]
func health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func metricsHandler(h nethttp.Handler) fiber.Handler {
	if h == nil {
		return func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) }
	}
	return adaptor.HTTPHandler(h)
}
