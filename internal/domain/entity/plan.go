package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SubscriptionPlan nivel de suscripción de una cuenta enterprise.
type SubscriptionPlan string

// Planes válidos (deben coincidir con el CHECK de enterprise_accounts.subscription_plan).
const (
	PlanStartup    SubscriptionPlan = "STARTUP"
	PlanGrowth     SubscriptionPlan = "GROWTH"
	PlanEnterprise SubscriptionPlan = "ENTERPRISE"
	PlanCustom     SubscriptionPlan = "CUSTOM"
)

// PlanConfig límites y precio de lista de un plan.
type PlanConfig struct {
	Plan         SubscriptionPlan
	MaxBranches  int  // 0 = sin límite
	MonthlyQuota *int // nil = ilimitado
	MonthlyPrice decimal.Decimal
}

// Plans catálogo fijo. El precio de CUSTOM se negocia por cuenta (CustomMonthlyPrice).
var Plans = map[SubscriptionPlan]PlanConfig{
	PlanStartup: {
		Plan:         PlanStartup,
		MaxBranches:  3,
		MonthlyQuota: intPtr(10_000),
		MonthlyPrice: decimal.RequireFromString("49.00"),
	},
	PlanGrowth: {
		Plan:         PlanGrowth,
		MaxBranches:  10,
		MonthlyQuota: intPtr(100_000),
		MonthlyPrice: decimal.RequireFromString("199.00"),
	},
	PlanEnterprise: {
		Plan:         PlanEnterprise,
		MaxBranches:  50,
		MonthlyQuota: intPtr(1_000_000),
		MonthlyPrice: decimal.RequireFromString("799.00"),
	},
	PlanCustom: {
		Plan:         PlanCustom,
		MaxBranches:  0,
		MonthlyQuota: nil,
		MonthlyPrice: decimal.Zero,
	},
}

// ParsePlan normaliza y valida un nombre de plan.
func ParsePlan(s string) (SubscriptionPlan, bool) {
	p := SubscriptionPlan(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := Plans[p]
	return p, ok
}

// Valid informa si el plan existe en el catálogo.
func (p SubscriptionPlan) Valid() bool {
	_, ok := Plans[p]
	return ok
}

// Config devuelve la configuración del plan (STARTUP si no se reconoce).
func (p SubscriptionPlan) Config() PlanConfig {
	if cfg, ok := Plans[p]; ok {
		return cfg
	}
	return Plans[PlanStartup]
}

// DefaultQuota devuelve una copia de la cuota por defecto del plan.
func (p SubscriptionPlan) DefaultQuota() *int {
	q := p.Config().MonthlyQuota
	if q == nil {
		return nil
	}
	return intPtr(*q)
}

func intPtr(n int) *int { return &n }
