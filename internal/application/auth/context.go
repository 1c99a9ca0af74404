package auth

import (
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
)

// AccountContext instantánea inmutable de la cuenta autenticada. Se pasa explícitamente
// a los handlers tenant; nunca se lee de estado mutable del request.
type AccountContext struct {
	AccountID    string
	TenantID     string
	UserID       string
	Plan         entity.SubscriptionPlan
	MonthlyQuota *int
	APIKeyPrefix string
	ResolvedAt   time.Time
}

// NewAccountContext copia los campos relevantes de la cuenta.
func NewAccountContext(acc *entity.EnterpriseAccount, resolvedAt time.Time) AccountContext {
	ac := AccountContext{
		AccountID:    acc.ID,
		TenantID:     acc.TenantID,
		UserID:       acc.UserID,
		Plan:         acc.SubscriptionPlan,
		APIKeyPrefix: acc.APIKeyPrefix,
		ResolvedAt:   resolvedAt,
	}
	if acc.MonthlyQuota != nil {
		q := *acc.MonthlyQuota
		ac.MonthlyQuota = &q
	}
	return ac
}

// Quota copia de la cuota (nil = ilimitada).
func (a AccountContext) Quota() *int {
	if a.MonthlyQuota == nil {
		return nil
	}
	q := *a.MonthlyQuota
	return &q
}

// Field campos de AccountContext accesibles por AccountField.
type Field int

const (
	FieldAccountID Field = iota + 1
	FieldTenantID
	FieldUserID
	FieldPlan
	FieldAPIKeyPrefix
)

// String nombre del campo.
func (f Field) String() string {
	switch f {
	case FieldAccountID:
		return "accountId"
	case FieldTenantID:
		return "tenantId"
	case FieldUserID:
		return "userId"
	case FieldPlan:
		return "plan"
	case FieldAPIKeyPrefix:
		return "apiKeyPrefix"
	}
	return "unknown"
}

// Get valor del campo; ok=false para un Field desconocido.
func (a AccountContext) Get(f Field) (string, bool) {
	switch f {
	case FieldAccountID:
		return a.AccountID, true
	case FieldTenantID:
		return a.TenantID, true
	case FieldUserID:
		return a.UserID, true
	case FieldPlan:
		return string(a.Plan), true
	case FieldAPIKeyPrefix:
		return a.APIKeyPrefix, true
	}
	return "", false
}
