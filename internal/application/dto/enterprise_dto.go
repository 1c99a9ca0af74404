package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEnterpriseRequest entrada para aprovisionar una cuenta enterprise.
// Sin monthlyQuota se usa la cuota por defecto del plan; unlimitedQuota la elimina.
type CreateEnterpriseRequest struct {
	UserID             string           `json:"userId" validate:"required,max=128"`
	CompanyName        string           `json:"companyName" validate:"required,min=1,max=200"`
	SubscriptionPlan   string           `json:"subscriptionPlan" validate:"required,oneof=STARTUP GROWTH ENTERPRISE CUSTOM"`
	BillingEmail       string           `json:"billingEmail" validate:"required,email,max=254"`
	ContractStart      *time.Time       `json:"contractStart"`
	ContractEnd        *time.Time       `json:"contractEnd"`
	MonthlyQuota       *int             `json:"monthlyQuota" validate:"omitempty,min=1"`
	UnlimitedQuota     bool             `json:"unlimitedQuota"`
	CustomMonthlyPrice *decimal.Decimal `json:"customMonthlyPrice"`
}

// UpdateEnterpriseRequest entrada para actualizar una cuenta. tenantId y la key no son editables.
type UpdateEnterpriseRequest struct {
	CompanyName        *string          `json:"companyName" validate:"omitempty,min=1,max=200"`
	SubscriptionPlan   *string          `json:"subscriptionPlan" validate:"omitempty,oneof=STARTUP GROWTH ENTERPRISE CUSTOM"`
	BillingEmail       *string          `json:"billingEmail" validate:"omitempty,email,max=254"`
	ContractStart      *time.Time       `json:"contractStart"`
	ContractEnd        *time.Time       `json:"contractEnd"`
	MonthlyQuota       *int             `json:"monthlyQuota" validate:"omitempty,min=1"`
	UnlimitedQuota     *bool            `json:"unlimitedQuota"`
	StripeCustomerID   *string          `json:"stripeCustomerId" validate:"omitempty,max=255"`
	CustomMonthlyPrice *decimal.Decimal `json:"customMonthlyPrice"`
}

// EnterpriseResponse salida de una cuenta. Nunca incluye la key ni su hash.
type EnterpriseResponse struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenantId"`
	UserID           string          `json:"userId"`
	CompanyName      string          `json:"companyName"`
	SubscriptionPlan string          `json:"subscriptionPlan"`
	BillingEmail     string          `json:"billingEmail"`
	ContractStart    *time.Time      `json:"contractStart,omitempty"`
	ContractEnd      *time.Time      `json:"contractEnd,omitempty"`
	APIKeyPrefix     string          `json:"apiKeyPrefix"`
	APIKeyEnabled    bool            `json:"apiKeyEnabled"`
	MonthlyQuota     *int            `json:"monthlyQuota"`
	MaxBranches      int             `json:"maxBranches"`
	MonthlyPrice     decimal.Decimal `json:"monthlyPrice"`
	StripeCustomerID string          `json:"stripeCustomerId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// CreateEnterpriseResponse la key en claro solo aparece aquí y en RegenerateKeyResponse.
type CreateEnterpriseResponse struct {
	Account EnterpriseResponse `json:"account"`
	APIKey  string             `json:"apiKey"`
}

// EnterpriseListResponse lista paginada de cuentas.
type EnterpriseListResponse struct {
	Items []EnterpriseResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// RegenerateKeyResponse key nueva tras la rotación.
type RegenerateKeyResponse struct {
	APIKey       string    `json:"apiKey"`
	APIKeyPrefix string    `json:"apiKeyPrefix"`
	RotatedAt    time.Time `json:"rotatedAt"`
}

// ToggleKeyRequest cuerpo de PATCH /enterprise/:id/api-key/toggle.
type ToggleKeyRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// ToggleKeyResponse estado de la key tras el toggle.
type ToggleKeyResponse struct {
	ID            string `json:"id"`
	APIKeyPrefix  string `json:"apiKeyPrefix"`
	APIKeyEnabled bool   `json:"apiKeyEnabled"`
}

// ValidateKeyRequest cuerpo de POST /enterprise/validate-api-key.
type ValidateKeyRequest struct {
	APIKey string `json:"apiKey" validate:"required,max=256"`
}

// ValidateKeyResponse resultado de la autovalidación; Account solo si la key es válida y está habilitada.
type ValidateKeyResponse struct {
	Valid   bool            `json:"valid"`
	Reason  string          `json:"reason"`
	Account *AccountSummary `json:"account,omitempty"`
}

// AccountSummary resumen público de la cuenta dueña de una key.
type AccountSummary struct {
	TenantID         string `json:"tenantId"`
	CompanyName      string `json:"companyName"`
	SubscriptionPlan string `json:"subscriptionPlan"`
	MonthlyQuota     *int   `json:"monthlyQuota"`
	APIKeyPrefix     string `json:"apiKeyPrefix"`
}
