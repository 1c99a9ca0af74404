package billing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/usecase"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
)

// PlanSyncUseCase aplica a la cuenta el plan que informa el proveedor de facturación, ya sea
// por webhook o por consulta manual del operador.
type PlanSyncUseCase struct {
	dir      PlanDirectory
	provider SubscriptionProvider
	log      zerolog.Logger
}

// NewPlanSyncUseCase construye el caso de uso. provider puede ser nil si Stripe no está
// configurado; en ese caso solo funciona ApplySubscription.
func NewPlanSyncUseCase(dir PlanDirectory, provider SubscriptionProvider, log zerolog.Logger) *PlanSyncUseCase {
	return &PlanSyncUseCase{dir: dir, provider: provider, log: log}
}

// SyncAccount consulta el proveedor y aplica el plan vigente a la cuenta.
//
// Retorna:
//   - domain.ErrAccountNotFound si la cuenta no existe.
//   - domain.ErrInvalidInput    si la cuenta no está vinculada a un cliente de facturación.
//   - ErrProviderDisabled       si no hay proveedor configurado.
func (uc *PlanSyncUseCase) SyncAccount(ctx context.Context, accountID string) (*dto.PlanSyncResponse, error) {
	acc, err := uc.dir.ResolveByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.StripeCustomerID == "" {
		return nil, fmt.Errorf("%w: la cuenta no tiene stripeCustomerId", domain.ErrInvalidInput)
	}
	if uc.provider == nil {
		return nil, ErrProviderDisabled
	}
	sub, err := uc.provider.CurrentSubscription(ctx, acc.StripeCustomerID)
	if err != nil {
		return nil, fmt.Errorf("billing: consultar suscripción: %w", err)
	}
	return uc.apply(ctx, acc, sub)
}

// ApplySubscription aplica un evento de suscripción recibido por webhook.
// domain.ErrAccountNotFound si ninguna cuenta está vinculada al cliente.
func (uc *PlanSyncUseCase) ApplySubscription(ctx context.Context, sub Subscription) (*dto.PlanSyncResponse, error) {
	if sub.CustomerID == "" {
		return nil, fmt.Errorf("%w: evento sin cliente", domain.ErrInvalidInput)
	}
	acc, err := uc.dir.ResolveByStripeCustomerID(ctx, sub.CustomerID)
	if err != nil {
		return nil, err
	}
	return uc.apply(ctx, acc, sub)
}

func (uc *PlanSyncUseCase) apply(ctx context.Context, acc *entity.EnterpriseAccount, sub Subscription) (*dto.PlanSyncResponse, error) {
	target := sub.Plan
	if !sub.Active || !target.Valid() {
		target = FallbackPlan
	}
	out := &dto.PlanSyncResponse{
		AccountID:    acc.ID,
		PreviousPlan: string(acc.SubscriptionPlan),
		Plan:         string(acc.SubscriptionPlan),
		MonthlyQuota: acc.MonthlyQuota,
	}
	if target == acc.SubscriptionPlan {
		return out, nil
	}

	updated, err := uc.dir.ChangePlan(ctx, acc.ID, target, usecase.QuotaAfterPlanChange(target, acc.MonthlyQuota))
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("account_id", acc.ID).
		Str("from", string(acc.SubscriptionPlan)).
		Str("to", string(target)).
		Msg("plan sincronizado con facturación")

	out.Plan = string(updated.SubscriptionPlan)
	out.MonthlyQuota = updated.MonthlyQuota
	out.Changed = true
	return out, nil
}
