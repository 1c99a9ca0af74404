package repository

import (
	"context"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
)

// EnterpriseAccountRepository define el puerto de persistencia para EnterpriseAccount (DIP).
// Las lecturas de una fila devuelven (nil, nil) si no existe.
// Las mutaciones de key, habilitación y plan son sentencias atómicas únicas; devuelven
// (nil, nil) si la cuenta no existe.
type EnterpriseAccountRepository interface {
	Create(ctx context.Context, account *entity.EnterpriseAccount) error
	GetByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error)
	GetByTenantID(ctx context.Context, tenantID string) (*entity.EnterpriseAccount, error)
	GetByUserID(ctx context.Context, userID string) (*entity.EnterpriseAccount, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*entity.EnterpriseAccount, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*entity.EnterpriseAccount, error)
	// LockByID bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	LockByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error)
	List(ctx context.Context, limit, offset int) ([]*entity.EnterpriseAccount, error)
	Count(ctx context.Context) (int, error)
	// Update persiste los campos editables (no toca tenant_id ni la key).
	Update(ctx context.Context, account *entity.EnterpriseAccount) error
	ReplaceAPIKey(ctx context.Context, id, hash, prefix string, at time.Time) (*entity.EnterpriseAccount, error)
	SetAPIKeyEnabled(ctx context.Context, id string, enabled bool, at time.Time) (*entity.EnterpriseAccount, error)
	UpdatePlan(ctx context.Context, id string, plan entity.SubscriptionPlan, quota *int, at time.Time) (*entity.EnterpriseAccount, error)
	// Delete elimina la cuenta y en cascada sus sucursales, uso y auditoría. false si no existía.
	Delete(ctx context.Context, id string) (bool, error)
}
