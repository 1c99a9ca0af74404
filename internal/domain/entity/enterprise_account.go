package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnterpriseAccount representa una organización enterprise (tenant) con acceso por API key.
// Una cuenta por usuario; TenantID es inmutable una vez asignado.
type EnterpriseAccount struct {
	ID                 string
	TenantID           string
	UserID             string
	CompanyName        string
	SubscriptionPlan   SubscriptionPlan
	BillingEmail       string
	ContractStart      *time.Time
	ContractEnd        *time.Time
	APIKeyHash         string // SHA-256 de la key; la key en claro nunca se persiste
	APIKeyPrefix       string
	APIKeyEnabled      bool
	MonthlyQuota       *int // nil = ilimitado
	StripeCustomerID   string
	CustomMonthlyPrice *decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MaxBranches límite de sucursales activas según el plan (0 = sin límite).
func (a *EnterpriseAccount) MaxBranches() int {
	return a.SubscriptionPlan.Config().MaxBranches
}

// MonthlyPrice precio vigente: el negociado para CUSTOM, el de lista para el resto.
func (a *EnterpriseAccount) MonthlyPrice() decimal.Decimal {
	if a.SubscriptionPlan == PlanCustom && a.CustomMonthlyPrice != nil {
		return *a.CustomMonthlyPrice
	}
	return a.SubscriptionPlan.Config().MonthlyPrice
}

// HasUnlimitedQuota informa si la cuenta no tiene tope mensual.
func (a *EnterpriseAccount) HasUnlimitedQuota() bool {
	return a.MonthlyQuota == nil
}
