// Package billing sincroniza el plan con el proveedor de facturación y genera el estado de
// uso mensual en PDF.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/quota"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	domainquota "github.com/jhoicas/lavanderia-enterprise-api/internal/domain/quota"
)

var (
	// ErrProviderDisabled no hay credenciales del proveedor de facturación configuradas.
	ErrProviderDisabled = errors.New("proveedor de facturación no configurado")
	// ErrInvalidSignature la firma del webhook no corresponde al payload.
	ErrInvalidSignature = errors.New("firma de webhook inválida")
)

// FallbackPlan plan asignado cuando el cliente ya no tiene una suscripción activa.
const FallbackPlan = entity.PlanStartup

// Subscription estado de la suscripción de un cliente en el proveedor.
type Subscription struct {
	CustomerID string
	Plan       entity.SubscriptionPlan
	Active     bool
}

// SubscriptionProvider consulta el proveedor de facturación (Stripe).
type SubscriptionProvider interface {
	// CurrentSubscription devuelve la suscripción vigente del cliente. Sin suscripción activa
	// devuelve Active=false.
	CurrentSubscription(ctx context.Context, customerID string) (Subscription, error)
}

// WebhookParser verifica y decodifica los webhooks del proveedor.
type WebhookParser interface {
	// ParseSubscriptionEvent devuelve ok=false para eventos que no son de suscripción.
	// Una firma inválida devuelve un error que envuelve ErrInvalidSignature.
	ParseSubscriptionEvent(payload []byte, signature string) (sub Subscription, ok bool, err error)
}

// PlanDirectory operaciones del directorio que usa la sincronización (tenant.Directory).
type PlanDirectory interface {
	ResolveByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error)
	ResolveByStripeCustomerID(ctx context.Context, customerID string) (*entity.EnterpriseAccount, error)
	ChangePlan(ctx context.Context, accountID string, plan entity.SubscriptionPlan, quota *int) (*entity.EnterpriseAccount, error)
}

// UsageReader lectura del contador por periodo (quota.Tracker).
type UsageReader interface {
	Location() *time.Location
	UsageForPeriod(ctx context.Context, accountID string, limit *int, period domainquota.Period) (quota.Usage, error)
}

// Statement datos del estado de uso que se imprimen en el PDF.
type Statement struct {
	Account     *entity.EnterpriseAccount
	Usage       quota.Usage
	GeneratedAt time.Time
}

// StatementPDFGenerator genera el PDF del estado de uso.
type StatementPDFGenerator interface {
	GenerateStatementPDF(ctx context.Context, st Statement) ([]byte, error)
}
