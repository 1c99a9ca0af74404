package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

// BranchUseCase casos de uso de sucursales. Las escrituras que pueden activar una sucursal
// corren en RunBranch con la cuenta bloqueada, para que el límite del plan no se supere
// con peticiones concurrentes.
type BranchUseCase struct {
	tx       BranchTxRunner
	branches repository.BranchRepository
	dir      TenantDirectory
	now      func() time.Time
}

// NewBranchUseCase construye el caso de uso.
func NewBranchUseCase(tx BranchTxRunner, branches repository.BranchRepository, dir TenantDirectory) *BranchUseCase {
	return &BranchUseCase{tx: tx, branches: branches, dir: dir, now: time.Now}
}

// Create crea una sucursal en la organización.
// Errores: ErrAccountNotFound, ErrBranchLimitReached, ErrBranchCodeTaken.
func (uc *BranchUseCase) Create(ctx context.Context, organizationID string, in dto.CreateBranchRequest) (*dto.BranchResponse, error) {
	now := uc.now().UTC()
	branch := &entity.Branch{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Name:           strings.TrimSpace(in.Name),
		Code:           normalizeCode(in.Code),
		AddressLine:    in.AddressLine,
		City:           in.City,
		State:          in.State,
		PostalCode:     in.PostalCode,
		Country:        strings.ToUpper(in.Country),
		Phone:          in.Phone,
		IsActive:       in.IsActive == nil || *in.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := uc.tx.RunBranch(ctx, func(accounts repository.EnterpriseAccountRepository, branches repository.BranchRepository) error {
		acc, err := accounts.LockByID(ctx, organizationID)
		if err != nil {
			return err
		}
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		if branch.IsActive {
			if err := checkBranchLimit(ctx, branches, acc); err != nil {
				return err
			}
		}
		return branches.Create(ctx, branch)
	})
	if err != nil {
		return nil, err
	}
	return toBranchResponse(branch), nil
}

// GetByID obtiene una sucursal.
func (uc *BranchUseCase) GetByID(ctx context.Context, id string) (*dto.BranchResponse, error) {
	b, err := uc.branches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrBranchNotFound
	}
	return toBranchResponse(b), nil
}

// ListByOrganization lista las sucursales de una cuenta; ErrAccountNotFound si la cuenta
// no existe (no una lista vacía).
func (uc *BranchUseCase) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool, page dto.PageRequest) (*dto.BranchListResponse, error) {
	page.DefaultPage()
	if _, err := uc.dir.ResolveByID(ctx, organizationID); err != nil {
		return nil, err
	}
	list, err := uc.branches.ListByOrganization(ctx, organizationID, activeOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.branches.CountByOrganization(ctx, organizationID, activeOnly)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BranchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBranchResponse(b))
	}
	return &dto.BranchListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update aplica los campos presentes. Reactivar una sucursal vuelve a verificar el límite.
func (uc *BranchUseCase) Update(ctx context.Context, id string, in dto.UpdateBranchRequest) (*dto.BranchResponse, error) {
	return uc.mutate(ctx, id, func(b *entity.Branch) bool {
		activating := in.IsActive != nil && *in.IsActive && !b.IsActive
		applyBranchUpdate(b, in)
		return activating
	})
}

// Deactivate marca la sucursal como inactiva; se conserva para historial y libera un cupo.
func (uc *BranchUseCase) Deactivate(ctx context.Context, id string) (*dto.BranchResponse, error) {
	return uc.mutate(ctx, id, func(b *entity.Branch) bool {
		b.IsActive = false
		return false
	})
}

// mutate lee y reescribe la sucursal con la cuenta dueña bloqueada. La sucursal se relee tras
// el bloqueo para que dos escrituras concurrentes no se pisen. apply devuelve true si la
// sucursal pasa a estar activa y debe verificarse el límite del plan.
func (uc *BranchUseCase) mutate(ctx context.Context, id string, apply func(*entity.Branch) bool) (*dto.BranchResponse, error) {
	var out *entity.Branch
	err := uc.tx.RunBranch(ctx, func(accounts repository.EnterpriseAccountRepository, branches repository.BranchRepository) error {
		b, err := branches.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrBranchNotFound
		}
		acc, err := accounts.LockByID(ctx, b.OrganizationID)
		if err != nil {
			return err
		}
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		if b, err = branches.GetByID(ctx, id); err != nil {
			return err
		}
		if b == nil {
			return domain.ErrBranchNotFound
		}

		if apply(b) {
			if err := checkBranchLimit(ctx, branches, acc); err != nil {
				return err
			}
		}
		b.UpdatedAt = uc.now().UTC()
		if err := branches.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toBranchResponse(out), nil
}

// Delete elimina la sucursal definitivamente.
func (uc *BranchUseCase) Delete(ctx context.Context, id string) error {
	deleted, err := uc.branches.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrBranchNotFound
	}
	return nil
}

// checkBranchLimit cuenta sucursales activas contra el plan. Debe llamarse con la cuenta bloqueada.
func checkBranchLimit(ctx context.Context, branches repository.BranchRepository, acc *entity.EnterpriseAccount) error {
	limit := acc.MaxBranches()
	if limit <= 0 {
		return nil
	}
	n, err := branches.CountByOrganization(ctx, acc.ID, true)
	if err != nil {
		return err
	}
	if n >= limit {
		return domain.ErrBranchLimitReached
	}
	return nil
}

func applyBranchUpdate(b *entity.Branch, in dto.UpdateBranchRequest) {
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.Code != nil {
		b.Code = normalizeCode(in.Code)
	}
	if in.AddressLine != nil {
		b.AddressLine = *in.AddressLine
	}
	if in.City != nil {
		b.City = *in.City
	}
	if in.State != nil {
		b.State = *in.State
	}
	if in.PostalCode != nil {
		b.PostalCode = *in.PostalCode
	}
	if in.Country != nil {
		b.Country = strings.ToUpper(*in.Country)
	}
	if in.Phone != nil {
		b.Phone = *in.Phone
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
}

// normalizeCode recorta espacios; un código vacío equivale a no tener código.
func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	c := strings.TrimSpace(*code)
	if c == "" {
		return nil
	}
	return &c
}

func toBranchResponse(b *entity.Branch) *dto.BranchResponse {
	if b == nil {
		return nil
	}
	return &dto.BranchResponse{
		ID:             b.ID,
		OrganizationID: b.OrganizationID,
		Name:           b.Name,
		Code:           b.Code,
		AddressLine:    b.AddressLine,
		City:           b.City,
		State:          b.State,
		PostalCode:     b.PostalCode,
		Country:        b.Country,
		Phone:          b.Phone,
		IsActive:       b.IsActive,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
