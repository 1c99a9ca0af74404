package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación en memoria de BranchRepository.
type BranchRepo struct {
	s    *Store
	inTx bool
}

func (r *BranchRepo) codeTaken(b *entity.Branch) bool {
	if b.Code == nil {
		return false
	}
	for _, other := range r.s.branches {
		if other.ID != b.ID && other.OrganizationID == b.OrganizationID &&
			other.Code != nil && *other.Code == *b.Code {
			return true
		}
	}
	return false
}

// Create inserta la sucursal; la organización debe existir.
func (r *BranchRepo) Create(_ context.Context, branch *entity.Branch) error {
	defer r.s.acquire(r.inTx)()
	if _, ok := r.s.accounts[branch.OrganizationID]; !ok {
		return domain.ErrAccountNotFound
	}
	if _, ok := r.s.branches[branch.ID]; ok {
		return domain.ErrDuplicate
	}
	if r.codeTaken(branch) {
		return domain.ErrBranchCodeTaken
	}
	r.s.branches[branch.ID] = copyBranch(branch)
	return nil
}

// GetByID obtiene una sucursal por ID.
func (r *BranchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	defer r.s.acquire(r.inTx)()
	return copyBranch(r.s.branches[id]), nil
}

// Update reemplaza los campos editables de la sucursal.
func (r *BranchRepo) Update(_ context.Context, branch *entity.Branch) error {
	defer r.s.acquire(r.inTx)()
	cur, ok := r.s.branches[branch.ID]
	if !ok {
		return domain.ErrBranchNotFound
	}
	if r.codeTaken(branch) {
		return domain.ErrBranchCodeTaken
	}
	next := copyBranch(branch)
	next.OrganizationID = cur.OrganizationID
	next.CreatedAt = cur.CreatedAt
	r.s.branches[branch.ID] = next
	return nil
}

func (r *BranchRepo) byOrganization(organizationID string, activeOnly bool) []*entity.Branch {
	var out []*entity.Branch
	for _, b := range r.s.branches {
		if b.OrganizationID != organizationID || (activeOnly && !b.IsActive) {
			continue
		}
		out = append(out, copyBranch(b))
	}
	return out
}

// ListByOrganization lista sucursales por fecha de creación ascendente.
func (r *BranchRepo) ListByOrganization(_ context.Context, organizationID string, activeOnly bool, limit, offset int) ([]*entity.Branch, error) {
	defer r.s.acquire(r.inTx)()
	list := r.byOrganization(organizationID, activeOnly)
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return paginate(list, limit, offset), nil
}

// CountByOrganization cuenta sucursales de la organización.
func (r *BranchRepo) CountByOrganization(_ context.Context, organizationID string, activeOnly bool) (int, error) {
	defer r.s.acquire(r.inTx)()
	return len(r.byOrganization(organizationID, activeOnly)), nil
}

// Delete elimina la sucursal; false si no existía.
func (r *BranchRepo) Delete(_ context.Context, id string) (bool, error) {
	defer r.s.acquire(r.inTx)()
	if _, ok := r.s.branches[id]; !ok {
		return false, nil
	}
	delete(r.s.branches, id)
	return true, nil
}
