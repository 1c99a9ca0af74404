package usecase

import (
	"context"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/auth"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

// BranchTxRunner ejecuta fn en una transacción con repos de cuenta y sucursal atados a ella.
// Garantiza que el conteo de sucursales activas y el insert vean el mismo estado.
type BranchTxRunner interface {
	RunBranch(ctx context.Context, fn func(
		accounts repository.EnterpriseAccountRepository,
		branches repository.BranchRepository,
	) error) error
}

// TenantDirectory operaciones del directorio que usan los casos de uso (tenant.Directory).
type TenantDirectory interface {
	ResolveByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error)
	ResolveByTenantID(ctx context.Context, tenantID string) (*entity.EnterpriseAccount, error)
	ResolveByUserID(ctx context.Context, userID string) (*entity.EnterpriseAccount, error)
	RegenerateKey(ctx context.Context, accountID string) (string, *entity.EnterpriseAccount, error)
	SetEnabled(ctx context.Context, accountID string, enabled bool) (*entity.EnterpriseAccount, error)
	Invalidate(accountID string)
}

// KeyAuthenticator autenticación de una key sin pasar por una ruta tenant (auth.Authenticator).
type KeyAuthenticator interface {
	Authenticate(ctx context.Context, rawKey string, meta auth.RequestMeta) (auth.Result, error)
}
