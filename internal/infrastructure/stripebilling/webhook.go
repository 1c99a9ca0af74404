package stripebilling

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	appbilling "github.com/jhoicas/lavanderia-enterprise-api/internal/application/billing"
)

var _ appbilling.WebhookParser = (*WebhookVerifier)(nil)

// WebhookVerifier valida la cabecera Stripe-Signature con el secreto del endpoint.
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier construye el verificador.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// ParseSubscriptionEvent verifica la firma y extrae la suscripción de los eventos
// customer.subscription.*. Un evento deleted siempre queda inactivo.
func (v *WebhookVerifier) ParseSubscriptionEvent(payload []byte, signature string) (appbilling.Subscription, bool, error) {
	if v.secret == "" {
		return appbilling.Subscription{}, false, appbilling.ErrProviderDisabled
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return appbilling.Subscription{}, false, fmt.Errorf("%w: %w", appbilling.ErrInvalidSignature, err)
	}

	switch ev.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
	default:
		return appbilling.Subscription{}, false, nil
	}
	if ev.Data == nil {
		return appbilling.Subscription{}, false, fmt.Errorf("stripe: evento %s sin datos", ev.ID)
	}

	var s stripe.Subscription
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return appbilling.Subscription{}, false, fmt.Errorf("stripe: decodificar suscripción: %w", err)
	}
	sub := subscriptionFrom("", &s)
	if ev.Type == stripe.EventTypeCustomerSubscriptionDeleted {
		sub.Active = false
	}
	return sub, true, nil
}
