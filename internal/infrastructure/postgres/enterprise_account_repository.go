package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

// Asegura que EnterpriseAccountRepo implementa repository.EnterpriseAccountRepository.
var _ repository.EnterpriseAccountRepository = (*EnterpriseAccountRepo)(nil)

const accountColumns = `id, tenant_id, user_id, company_name, subscription_plan, billing_email,
	contract_start, contract_end, api_key_hash, api_key_prefix, api_key_enabled,
	monthly_quota, stripe_customer_id, custom_monthly_price, created_at, updated_at`

// EnterpriseAccountRepo implementación del puerto sobre PostgreSQL.
type EnterpriseAccountRepo struct {
	q Querier
}

// NewEnterpriseAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEnterpriseAccountRepository(q Querier) *EnterpriseAccountRepo {
	return &EnterpriseAccountRepo{q: q}
}

func scanAccount(row pgx.Row) (*entity.EnterpriseAccount, error) {
	var (
		a        entity.EnterpriseAccount
		plan     string
		quota    *int32
		customer *string
		price    decimal.NullDecimal
	)
	err := row.Scan(
		&a.ID, &a.TenantID, &a.UserID, &a.CompanyName, &plan, &a.BillingEmail,
		&a.ContractStart, &a.ContractEnd, &a.APIKeyHash, &a.APIKeyPrefix, &a.APIKeyEnabled,
		&quota, &customer, &price, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.SubscriptionPlan = entity.SubscriptionPlan(plan)
	if quota != nil {
		q := int(*quota)
		a.MonthlyQuota = &q
	}
	if customer != nil {
		a.StripeCustomerID = *customer
	}
	if price.Valid {
		p := price.Decimal
		a.CustomMonthlyPrice = &p
	}
	return &a, nil
}

// isUUID informa si s es un UUID; los IDs mal formados se tratan como inexistentes.
func isUUID(s string) bool {
	return uuid.Validate(s) == nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *EnterpriseAccountRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.EnterpriseAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM enterprise_accounts WHERE ` + where
	a, err := scanAccount(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func mapAccountWriteError(op string, err error) error {
	if isUniqueViolation(err) {
		if constraintName(err) == constraintAccountUser {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create persiste una nueva cuenta.
func (r *EnterpriseAccountRepo) Create(ctx context.Context, a *entity.EnterpriseAccount) error {
	query := `
		INSERT INTO enterprise_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.TenantID, a.UserID, a.CompanyName, string(a.SubscriptionPlan), a.BillingEmail,
		a.ContractStart, a.ContractEnd, a.APIKeyHash, a.APIKeyPrefix, a.APIKeyEnabled,
		a.MonthlyQuota, nullString(a.StripeCustomerID), a.CustomMonthlyPrice, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return mapAccountWriteError("insert enterprise account", err)
	}
	return nil
}

// GetByID obtiene una cuenta por ID.
func (r *EnterpriseAccountRepo) GetByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get enterprise account", "id = $1", id)
}

// GetByTenantID obtiene una cuenta por tenant_id.
func (r *EnterpriseAccountRepo) GetByTenantID(ctx context.Context, tenantID string) (*entity.EnterpriseAccount, error) {
	return r.getOne(ctx, "get enterprise account by tenant", "tenant_id = $1", tenantID)
}

// GetByUserID obtiene la cuenta del usuario.
func (r *EnterpriseAccountRepo) GetByUserID(ctx context.Context, userID string) (*entity.EnterpriseAccount, error) {
	return r.getOne(ctx, "get enterprise account by user", "user_id = $1", userID)
}

// GetByAPIKeyHash busca por el índice único del hash; es la consulta de cada petición autenticada.
func (r *EnterpriseAccountRepo) GetByAPIKeyHash(ctx context.Context, hash string) (*entity.EnterpriseAccount, error) {
	return r.getOne(ctx, "get enterprise account by api key", "api_key_hash = $1", hash)
}

// GetByStripeCustomerID obtiene la cuenta vinculada al cliente de Stripe.
func (r *EnterpriseAccountRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*entity.EnterpriseAccount, error) {
	if customerID == "" {
		return nil, nil
	}
	return r.getOne(ctx, "get enterprise account by stripe customer", "stripe_customer_id = $1", customerID)
}

// LockByID bloquea la fila de la cuenta hasta el fin de la transacción.
func (r *EnterpriseAccountRepo) LockByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "lock enterprise account", "id = $1 FOR UPDATE", id)
}

// List devuelve cuentas con paginación.
func (r *EnterpriseAccountRepo) List(ctx context.Context, limit, offset int) ([]*entity.EnterpriseAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM enterprise_accounts
		ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list enterprise accounts: %w", err)
	}
	defer rows.Close()

	var list []*entity.EnterpriseAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enterprise account: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Count total de cuentas.
func (r *EnterpriseAccountRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM enterprise_accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count enterprise accounts: %w", err)
	}
	return n, nil
}

// Update persiste los campos editables.
func (r *EnterpriseAccountRepo) Update(ctx context.Context, a *entity.EnterpriseAccount) error {
	if !isUUID(a.ID) {
		return domain.ErrAccountNotFound
	}
	query := `
		UPDATE enterprise_accounts SET
			company_name = $2, subscription_plan = $3, billing_email = $4,
			contract_start = $5, contract_end = $6, monthly_quota = $7,
			stripe_customer_id = $8, custom_monthly_price = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		a.ID, a.CompanyName, string(a.SubscriptionPlan), a.BillingEmail,
		a.ContractStart, a.ContractEnd, a.MonthlyQuota,
		nullString(a.StripeCustomerID), a.CustomMonthlyPrice, a.UpdatedAt,
	)
	if err != nil {
		return mapAccountWriteError("update enterprise account", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ReplaceAPIKey sustituye hash y prefijo en una sola sentencia.
func (r *EnterpriseAccountRepo) ReplaceAPIKey(ctx context.Context, id, hash, prefix string, at time.Time) (*entity.EnterpriseAccount, error) {
	query := `
		UPDATE enterprise_accounts SET api_key_hash = $2, api_key_prefix = $3, updated_at = $4
		WHERE id = $1 RETURNING ` + accountColumns
	return r.mutate(ctx, "replace api key", query, id, hash, prefix, at)
}

// SetAPIKeyEnabled cambia solo la bandera de habilitación.
func (r *EnterpriseAccountRepo) SetAPIKeyEnabled(ctx context.Context, id string, enabled bool, at time.Time) (*entity.EnterpriseAccount, error) {
	query := `
		UPDATE enterprise_accounts SET api_key_enabled = $2, updated_at = $3
		WHERE id = $1 RETURNING ` + accountColumns
	return r.mutate(ctx, "set api key enabled", query, id, enabled, at)
}

// UpdatePlan cambia plan y cuota.
func (r *EnterpriseAccountRepo) UpdatePlan(ctx context.Context, id string, plan entity.SubscriptionPlan, quota *int, at time.Time) (*entity.EnterpriseAccount, error) {
	query := `
		UPDATE enterprise_accounts SET subscription_plan = $2, monthly_quota = $3, updated_at = $4
		WHERE id = $1 RETURNING ` + accountColumns
	return r.mutate(ctx, "update plan", query, id, string(plan), quota, at)
}

func (r *EnterpriseAccountRepo) mutate(ctx context.Context, op, query, id string, args ...any) (*entity.EnterpriseAccount, error) {
	if !isUUID(id) {
		return nil, nil
	}
	args = append([]any{id}, args...)
	a, err := scanAccount(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapAccountWriteError(op, err)
	}
	return a, nil
}

// Delete elimina la cuenta; las FK ON DELETE CASCADE arrastran sucursales, uso y auditoría.
func (r *EnterpriseAccountRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM enterprise_accounts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete enterprise account: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}
