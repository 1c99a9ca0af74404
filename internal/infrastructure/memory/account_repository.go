package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

var _ repository.EnterpriseAccountRepository = (*AccountRepo)(nil)

// AccountRepo implementación en memoria de EnterpriseAccountRepository.
type AccountRepo struct {
	s    *Store
	inTx bool
}

// Create persiste una nueva cuenta respetando las restricciones únicas.
func (r *AccountRepo) Create(_ context.Context, account *entity.EnterpriseAccount) error {
	defer r.s.acquire(r.inTx)()
	for _, a := range r.s.accounts {
		switch {
		case a.UserID == account.UserID:
			return domain.ErrAccountExists
		case a.ID == account.ID, a.TenantID == account.TenantID, a.APIKeyHash == account.APIKeyHash:
			return domain.ErrDuplicate
		}
	}
	r.s.accounts[account.ID] = copyAccount(account)
	return nil
}

// GetByID obtiene una cuenta por ID.
func (r *AccountRepo) GetByID(_ context.Context, id string) (*entity.EnterpriseAccount, error) {
	defer r.s.acquire(r.inTx)()
	return copyAccount(r.s.accounts[id]), nil
}

// LockByID en memoria equivale a GetByID: el lock lo aporta RunBranch.
func (r *AccountRepo) LockByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error) {
	return r.GetByID(ctx, id)
}

// GetByTenantID obtiene una cuenta por tenant_id.
func (r *AccountRepo) GetByTenantID(_ context.Context, tenantID string) (*entity.EnterpriseAccount, error) {
	return r.find(func(a *entity.EnterpriseAccount) bool { return a.TenantID == tenantID }), nil
}

// GetByUserID obtiene la cuenta del usuario.
func (r *AccountRepo) GetByUserID(_ context.Context, userID string) (*entity.EnterpriseAccount, error) {
	return r.find(func(a *entity.EnterpriseAccount) bool { return a.UserID == userID }), nil
}

// GetByAPIKeyHash obtiene la cuenta dueña de la key.
func (r *AccountRepo) GetByAPIKeyHash(_ context.Context, hash string) (*entity.EnterpriseAccount, error) {
	return r.find(func(a *entity.EnterpriseAccount) bool { return a.APIKeyHash == hash }), nil
}

// GetByStripeCustomerID obtiene la cuenta vinculada al cliente de Stripe.
func (r *AccountRepo) GetByStripeCustomerID(_ context.Context, customerID string) (*entity.EnterpriseAccount, error) {
	if customerID == "" {
		return nil, nil
	}
	return r.find(func(a *entity.EnterpriseAccount) bool { return a.StripeCustomerID == customerID }), nil
}

func (r *AccountRepo) find(match func(*entity.EnterpriseAccount) bool) *entity.EnterpriseAccount {
	defer r.s.acquire(r.inTx)()
	for _, a := range r.s.accounts {
		if match(a) {
			return copyAccount(a)
		}
	}
	return nil
}

// List devuelve cuentas ordenadas por fecha de creación descendente.
func (r *AccountRepo) List(_ context.Context, limit, offset int) ([]*entity.EnterpriseAccount, error) {
	defer r.s.acquire(r.inTx)()
	all := make([]*entity.EnterpriseAccount, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		all = append(all, copyAccount(a))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return paginate(all, limit, offset), nil
}

// Count total de cuentas.
func (r *AccountRepo) Count(_ context.Context) (int, error) {
	defer r.s.acquire(r.inTx)()
	return len(r.s.accounts), nil
}

// Update persiste los campos editables.
func (r *AccountRepo) Update(_ context.Context, account *entity.EnterpriseAccount) error {
	defer r.s.acquire(r.inTx)()
	cur, ok := r.s.accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	next := copyAccount(cur)
	next.CompanyName = account.CompanyName
	next.SubscriptionPlan = account.SubscriptionPlan
	next.BillingEmail = account.BillingEmail
	next.ContractStart = account.ContractStart
	next.ContractEnd = account.ContractEnd
	next.MonthlyQuota = account.MonthlyQuota
	next.StripeCustomerID = account.StripeCustomerID
	next.CustomMonthlyPrice = account.CustomMonthlyPrice
	next.UpdatedAt = account.UpdatedAt
	r.s.accounts[account.ID] = copyAccount(next)
	return nil
}

// ReplaceAPIKey sustituye hash y prefijo de una sola vez.
func (r *AccountRepo) ReplaceAPIKey(_ context.Context, id, hash, prefix string, at time.Time) (*entity.EnterpriseAccount, error) {
	defer r.s.acquire(r.inTx)()
	for _, a := range r.s.accounts {
		if a.ID != id && a.APIKeyHash == hash {
			return nil, fmt.Errorf("replace api key: %w", domain.ErrDuplicate)
		}
	}
	return r.mutate(id, func(a *entity.EnterpriseAccount) {
		a.APIKeyHash = hash
		a.APIKeyPrefix = prefix
		a.UpdatedAt = at
	}), nil
}

// SetAPIKeyEnabled cambia solo la bandera de habilitación.
func (r *AccountRepo) SetAPIKeyEnabled(_ context.Context, id string, enabled bool, at time.Time) (*entity.EnterpriseAccount, error) {
	defer r.s.acquire(r.inTx)()
	return r.mutate(id, func(a *entity.EnterpriseAccount) {
		a.APIKeyEnabled = enabled
		a.UpdatedAt = at
	}), nil
}

// UpdatePlan cambia plan y cuota.
func (r *AccountRepo) UpdatePlan(_ context.Context, id string, plan entity.SubscriptionPlan, quota *int, at time.Time) (*entity.EnterpriseAccount, error) {
	defer r.s.acquire(r.inTx)()
	return r.mutate(id, func(a *entity.EnterpriseAccount) {
		a.SubscriptionPlan = plan
		a.MonthlyQuota = quota
		a.UpdatedAt = at
	}), nil
}

// mutate aplica fn sobre la cuenta; el caller ya tiene el lock.
func (r *AccountRepo) mutate(id string, fn func(*entity.EnterpriseAccount)) *entity.EnterpriseAccount {
	cur, ok := r.s.accounts[id]
	if !ok {
		return nil
	}
	next := copyAccount(cur)
	fn(next)
	r.s.accounts[id] = next
	return copyAccount(next)
}

// Delete elimina la cuenta con sus sucursales, contadores y auditoría.
func (r *AccountRepo) Delete(_ context.Context, id string) (bool, error) {
	defer r.s.acquire(r.inTx)()
	if _, ok := r.s.accounts[id]; !ok {
		return false, nil
	}
	delete(r.s.accounts, id)
	for bid, b := range r.s.branches {
		if b.OrganizationID == id {
			delete(r.s.branches, bid)
		}
	}
	for k := range r.s.usage {
		if k.accountID == id {
			delete(r.s.usage, k)
		}
	}
	kept := r.s.logs[:0]
	for _, l := range r.s.logs {
		if l.AccountID == nil || *l.AccountID != id {
			kept = append(kept, l)
		}
	}
	r.s.logs = kept
	return true, nil
}
