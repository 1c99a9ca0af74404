package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/audit"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/billing"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
)

// HeaderStripeSignature cabecera de firma de los webhooks de Stripe.
const HeaderStripeSignature = "Stripe-Signature"

// WebhookAck respuesta a un webhook aceptado.
type WebhookAck struct {
	Received bool   `json:"received"`
	Applied  bool   `json:"applied"`
	Plan     string `json:"plan,omitempty"`
}

// BillingHandler webhook del proveedor de facturación y operaciones de operador.
type BillingHandler struct {
	sync   *billing.PlanSyncUseCase
	parser billing.WebhookParser
	audit  *audit.UseCase
	log    zerolog.Logger
}

// NewBillingHandler construye el handler.
func NewBillingHandler(sync *billing.PlanSyncUseCase, parser billing.WebhookParser, auditUC *audit.UseCase, log zerolog.Logger) *BillingHandler {
	return &BillingHandler{sync: sync, parser: parser, audit: auditUC, log: log}
}

// StripeWebhook godoc
// @Summary      Webhook de suscripciones de Stripe
// @Description  Verifica la firma y aplica el plan de la suscripción. Clientes desconocidos se ignoran con 200.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header  string  true  "Firma del evento"
// @Success      200  {object}  WebhookAck
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /billing/stripe/webhook [post]
func (h *BillingHandler) StripeWebhook(c *fiber.Ctx) error {
	sub, ok, err := h.parser.ParseSubscriptionEvent(c.Body(), c.Get(HeaderStripeSignature))
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.JSON(WebhookAck{Received: true})
	}

	out, err := h.sync.ApplySubscription(c.UserContext(), sub)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrInvalidInput):
		// Stripe reintenta cualquier respuesta no 2xx.
		h.log.Warn().Str("customer_id", sub.CustomerID).Msg("webhook de cliente sin cuenta enterprise")
		return c.JSON(WebhookAck{Received: true})
	case err != nil:
		return respondError(c, err)
	}
	return c.JSON(WebhookAck{Received: true, Applied: out.Changed, Plan: out.Plan})
}

// SyncPlan godoc
// @Summary      Sincronizar plan desde Stripe
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.PlanSyncResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /admin/enterprise/{id}/billing/sync [post]
func (h *BillingHandler) SyncPlan(c *fiber.Ctx) error {
	out, err := h.sync.SyncAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	h.log.Info().Str("account_id", out.AccountID).Str("operator", GetOperatorID(c)).
		Bool("changed", out.Changed).Msg("plan sincronizado por operador")
	return c.JSON(out)
}

// PurgeAudit godoc
// @Summary      Purgar auditoría antigua
// @Description  Elimina las entradas más antiguas que la retención configurada.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PurgeResponse
// @Router       /admin/audit/purge [post]
func (h *BillingHandler) PurgeAudit(c *fiber.Ctx) error {
	out, err := h.audit.Purge(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	h.log.Info().Int64("deleted", out.Deleted).Str("operator", GetOperatorID(c)).Msg("purga de auditoría")
	return c.JSON(out)
}
