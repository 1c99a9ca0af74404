// Package stripebilling adapta Stripe a los puertos de billing: consulta de suscripciones y
// verificación de webhooks.
package stripebilling

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	appbilling "github.com/jhoicas/lavanderia-enterprise-api/internal/application/billing"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
)

var _ appbilling.SubscriptionProvider = (*Client)(nil)

// metadataPlanKey clave de metadata con el plan; tiene prioridad sobre el lookup_key del precio.
const metadataPlanKey = "plan"

// Client consulta suscripciones con el cliente de la API de Stripe.
type Client struct {
	api *client.API
}

// NewClient construye el cliente. backends nil usa los de producción.
func NewClient(secretKey string, backends *stripe.Backends) *Client {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Client{api: api}
}

// CurrentSubscription devuelve la primera suscripción vigente del cliente.
func (c *Client) CurrentSubscription(ctx context.Context, customerID string) (appbilling.Subscription, error) {
	params := &stripe.SubscriptionListParams{Customer: stripe.String(customerID)}
	params.Context = ctx
	params.Limit = stripe.Int64(10)

	it := c.api.Subscriptions.List(params)
	for it.Next() {
		s := it.Subscription()
		if isActive(s.Status) {
			return subscriptionFrom(customerID, s), nil
		}
	}
	if err := it.Err(); err != nil {
		return appbilling.Subscription{}, fmt.Errorf("stripe: listar suscripciones: %w", err)
	}
	return appbilling.Subscription{CustomerID: customerID}, nil
}

func isActive(status stripe.SubscriptionStatus) bool {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing, stripe.SubscriptionStatusPastDue:
		return true
	}
	return false
}

// subscriptionFrom traduce la suscripción de Stripe. Un plan no reconocido deja Plan vacío.
func subscriptionFrom(customerID string, s *stripe.Subscription) appbilling.Subscription {
	out := appbilling.Subscription{CustomerID: customerID, Active: isActive(s.Status)}
	if out.CustomerID == "" && s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if plan, ok := planFromSubscription(s); ok {
		out.Plan = plan
	}
	return out
}

// planFromSubscription busca el plan en la metadata de la suscripción y luego en cada precio.
func planFromSubscription(s *stripe.Subscription) (entity.SubscriptionPlan, bool) {
	if p, ok := entity.ParsePlan(s.Metadata[metadataPlanKey]); ok {
		return p, true
	}
	if s.Items == nil {
		return "", false
	}
	for _, item := range s.Items.Data {
		if item == nil || item.Price == nil {
			continue
		}
		if p, ok := entity.ParsePlan(item.Price.Metadata[metadataPlanKey]); ok {
			return p, true
		}
		if p, ok := entity.ParsePlan(item.Price.LookupKey); ok {
			return p, true
		}
	}
	return "", false
}
