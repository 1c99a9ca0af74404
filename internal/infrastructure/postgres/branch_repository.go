package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

const branchColumns = `id, organization_id, name, code, address_line, city, state, postal_code,
	country, phone, is_active, created_at, updated_at`

// BranchRepo implementación del puerto BranchRepository sobre PostgreSQL.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

func scanBranch(row pgx.Row) (*entity.Branch, error) {
	var b entity.Branch
	err := row.Scan(&b.ID, &b.OrganizationID, &b.Name, &b.Code, &b.AddressLine, &b.City,
		&b.State, &b.PostalCode, &b.Country, &b.Phone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func mapBranchWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err) && constraintName(err) == constraintBranchCode:
		return domain.ErrBranchCodeTaken
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case isForeignKeyViolation(err) && constraintName(err) == constraintBranchAccountFK:
		return domain.ErrAccountNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create inserta una sucursal.
func (r *BranchRepo) Create(ctx context.Context, b *entity.Branch) error {
	query := `INSERT INTO branches (` + branchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.OrganizationID, b.Name, b.Code, b.AddressLine, b.City, b.State,
		b.PostalCode, b.Country, b.Phone, b.IsActive, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return mapBranchWriteError("insert branch", err)
	}
	return nil
}

// GetByID obtiene una sucursal por ID.
func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	if !isUUID(id) {
		return nil, nil
	}
	b, err := scanBranch(r.q.QueryRow(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return b, nil
}

// Update actualiza los campos editables.
func (r *BranchRepo) Update(ctx context.Context, b *entity.Branch) error {
	if !isUUID(b.ID) {
		return domain.ErrBranchNotFound
	}
	query := `
		UPDATE branches SET name = $2, code = $3, address_line = $4, city = $5, state = $6,
			postal_code = $7, country = $8, phone = $9, is_active = $10, updated_at = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		b.ID, b.Name, b.Code, b.AddressLine, b.City, b.State,
		b.PostalCode, b.Country, b.Phone, b.IsActive, b.UpdatedAt,
	)
	if err != nil {
		return mapBranchWriteError("update branch", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBranchNotFound
	}
	return nil
}

// ListByOrganization lista sucursales de la organización por antigüedad.
func (r *BranchRepo) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool, limit, offset int) ([]*entity.Branch, error) {
	if !isUUID(organizationID) {
		return nil, nil
	}
	query := `SELECT ` + branchColumns + ` FROM branches
		WHERE organization_id = $1 AND ($2 = FALSE OR is_active)
		ORDER BY created_at, id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, organizationID, activeOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var list []*entity.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// CountByOrganization cuenta sucursales; con activeOnly solo las activas (límite del plan).
func (r *BranchRepo) CountByOrganization(ctx context.Context, organizationID string, activeOnly bool) (int, error) {
	if !isUUID(organizationID) {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM branches WHERE organization_id = $1 AND ($2 = FALSE OR is_active)`,
		organizationID, activeOnly,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count branches: %w", err)
	}
	return n, nil
}

// Delete elimina una sucursal por ID.
func (r *BranchRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete branch: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}
