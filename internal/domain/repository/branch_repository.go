package repository

import (
	"context"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
)

// BranchRepository define el puerto de persistencia para Branch (DIP).
// Create/Update devuelven domain.ErrBranchCodeTaken si el código ya existe en la organización.
type BranchRepository interface {
	Create(ctx context.Context, branch *entity.Branch) error
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	Update(ctx context.Context, branch *entity.Branch) error
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool, limit, offset int) ([]*entity.Branch, error)
	CountByOrganization(ctx context.Context, organizationID string, activeOnly bool) (int, error)
	Delete(ctx context.Context, id string) (bool, error)
}
