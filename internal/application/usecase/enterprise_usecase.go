package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/auth"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
	"github.com/jhoicas/lavanderia-enterprise-api/pkg/apikey"
)

const createAttempts = 3

// EnterpriseUseCase casos de uso de administración de cuentas enterprise.
type EnterpriseUseCase struct {
	tx   BranchTxRunner
	repo repository.EnterpriseAccountRepository
	dir  TenantDirectory
	auth KeyAuthenticator
	now  func() time.Time
}

// NewEnterpriseUseCase construye el caso de uso.
func NewEnterpriseUseCase(tx BranchTxRunner, repo repository.EnterpriseAccountRepository, dir TenantDirectory, authn KeyAuthenticator) *EnterpriseUseCase {
	return &EnterpriseUseCase{tx: tx, repo: repo, dir: dir, auth: authn, now: time.Now}
}

// Create aprovisiona una cuenta. Devuelve domain.ErrAccountExists si el usuario ya tiene una.
// La key en claro solo se devuelve aquí.
func (uc *EnterpriseUseCase) Create(ctx context.Context, in dto.CreateEnterpriseRequest) (*dto.CreateEnterpriseResponse, error) {
	plan, ok := entity.ParsePlan(in.SubscriptionPlan)
	if !ok {
		return nil, fmt.Errorf("%w: plan desconocido", domain.ErrInvalidInput)
	}
	if err := validateContract(in.ContractStart, in.ContractEnd); err != nil {
		return nil, err
	}
	if in.UnlimitedQuota && in.MonthlyQuota != nil {
		return nil, fmt.Errorf("%w: monthlyQuota y unlimitedQuota son excluyentes", domain.ErrInvalidInput)
	}
	if err := validateCustomPrice(plan, in.CustomMonthlyPrice != nil, in.CustomMonthlyPrice); err != nil {
		return nil, err
	}

	userID := strings.TrimSpace(in.UserID)
	existing, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAccountExists
	}

	quota := plan.DefaultQuota()
	switch {
	case in.UnlimitedQuota:
		quota = nil
	case in.MonthlyQuota != nil:
		q := *in.MonthlyQuota
		quota = &q
	}

	now := uc.now().UTC()
	for attempt := 1; ; attempt++ {
		key, err := apikey.Generate()
		if err != nil {
			return nil, err
		}
		account := &entity.EnterpriseAccount{
			ID:                 uuid.New().String(),
			TenantID:           newTenantID(),
			UserID:             userID,
			CompanyName:        strings.TrimSpace(in.CompanyName),
			SubscriptionPlan:   plan,
			BillingEmail:       strings.TrimSpace(in.BillingEmail),
			ContractStart:      in.ContractStart,
			ContractEnd:        in.ContractEnd,
			APIKeyHash:         key.Hash,
			APIKeyPrefix:       key.Prefix,
			APIKeyEnabled:      true,
			MonthlyQuota:       quota,
			CustomMonthlyPrice: in.CustomMonthlyPrice,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		err = uc.repo.Create(ctx, account)
		// Colisión de tenant_id o hash: se reintenta con valores nuevos.
		if errors.Is(err, domain.ErrDuplicate) && attempt < createAttempts {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &dto.CreateEnterpriseResponse{Account: *toEnterpriseResponse(account), APIKey: key.Raw}, nil
	}
}

// GetByID obtiene una cuenta por ID.
func (uc *EnterpriseUseCase) GetByID(ctx context.Context, id string) (*dto.EnterpriseResponse, error) {
	acc, err := uc.dir.ResolveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEnterpriseResponse(acc), nil
}

// GetByUserID obtiene la cuenta de un usuario.
func (uc *EnterpriseUseCase) GetByUserID(ctx context.Context, userID string) (*dto.EnterpriseResponse, error) {
	acc, err := uc.dir.ResolveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toEnterpriseResponse(acc), nil
}

// GetByTenantID obtiene una cuenta por tenant_id.
func (uc *EnterpriseUseCase) GetByTenantID(ctx context.Context, tenantID string) (*dto.EnterpriseResponse, error) {
	acc, err := uc.dir.ResolveByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return toEnterpriseResponse(acc), nil
}

// List lista cuentas con paginación y total.
func (uc *EnterpriseUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.EnterpriseListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EnterpriseResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *toEnterpriseResponse(a))
	}
	return &dto.EnterpriseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update aplica los campos presentes. Un cambio de plan sin cuota explícita toma la cuota por
// defecto del plan nuevo (CUSTOM conserva la actual). Lectura y escritura corren con la fila
// bloqueada para no pisar un cambio de plan concurrente (webhook o sync).
func (uc *EnterpriseUseCase) Update(ctx context.Context, id string, in dto.UpdateEnterpriseRequest) (*dto.EnterpriseResponse, error) {
	if in.UnlimitedQuota != nil && *in.UnlimitedQuota && in.MonthlyQuota != nil {
		return nil, fmt.Errorf("%w: monthlyQuota y unlimitedQuota son excluyentes", domain.ErrInvalidInput)
	}
	var out *entity.EnterpriseAccount
	err := uc.tx.RunBranch(ctx, func(accounts repository.EnterpriseAccountRepository, _ repository.BranchRepository) error {
		acc, err := accounts.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		if err := applyEnterpriseUpdate(acc, in); err != nil {
			return err
		}
		acc.UpdatedAt = uc.now().UTC()
		if err := accounts.Update(ctx, acc); err != nil {
			return err
		}
		out = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.dir.Invalidate(out.ID)
	return toEnterpriseResponse(out), nil
}

func applyEnterpriseUpdate(acc *entity.EnterpriseAccount, in dto.UpdateEnterpriseRequest) error {
	if in.CompanyName != nil {
		acc.CompanyName = strings.TrimSpace(*in.CompanyName)
	}
	if in.BillingEmail != nil {
		acc.BillingEmail = strings.TrimSpace(*in.BillingEmail)
	}
	if in.ContractStart != nil {
		acc.ContractStart = in.ContractStart
	}
	if in.ContractEnd != nil {
		acc.ContractEnd = in.ContractEnd
	}
	if in.StripeCustomerID != nil {
		acc.StripeCustomerID = strings.TrimSpace(*in.StripeCustomerID)
	}
	if in.SubscriptionPlan != nil {
		plan, ok := entity.ParsePlan(*in.SubscriptionPlan)
		if !ok {
			return fmt.Errorf("%w: plan desconocido", domain.ErrInvalidInput)
		}
		if plan != acc.SubscriptionPlan {
			acc.MonthlyQuota = QuotaAfterPlanChange(plan, acc.MonthlyQuota)
			if plan != entity.PlanCustom {
				acc.CustomMonthlyPrice = nil
			}
			acc.SubscriptionPlan = plan
		}
	}
	switch {
	case in.UnlimitedQuota != nil && *in.UnlimitedQuota:
		acc.MonthlyQuota = nil
	case in.MonthlyQuota != nil:
		q := *in.MonthlyQuota
		acc.MonthlyQuota = &q
	}
	if in.CustomMonthlyPrice != nil {
		acc.CustomMonthlyPrice = in.CustomMonthlyPrice
	}
	if err := validateCustomPrice(acc.SubscriptionPlan, in.CustomMonthlyPrice != nil, acc.CustomMonthlyPrice); err != nil {
		return err
	}
	return validateContract(acc.ContractStart, acc.ContractEnd)
}

// Delete elimina la cuenta con sus sucursales, uso y auditoría.
func (uc *EnterpriseUseCase) Delete(ctx context.Context, id string) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrAccountNotFound
	}
	uc.dir.Invalidate(id)
	return nil
}

// RegenerateKey rota la key; la anterior queda inválida de inmediato.
func (uc *EnterpriseUseCase) RegenerateKey(ctx context.Context, id string) (*dto.RegenerateKeyResponse, error) {
	raw, acc, err := uc.dir.RegenerateKey(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.RegenerateKeyResponse{APIKey: raw, APIKeyPrefix: acc.APIKeyPrefix, RotatedAt: acc.UpdatedAt}, nil
}

// ToggleKey activa o desactiva la key sin rotarla.
func (uc *EnterpriseUseCase) ToggleKey(ctx context.Context, id string, enabled bool) (*dto.ToggleKeyResponse, error) {
	acc, err := uc.dir.SetEnabled(ctx, id, enabled)
	if err != nil {
		return nil, err
	}
	return &dto.ToggleKeyResponse{ID: acc.ID, APIKeyPrefix: acc.APIKeyPrefix, APIKeyEnabled: acc.APIKeyEnabled}, nil
}

// ValidateKey autovalidación pública de una key. El resumen de cuenta solo se incluye si la
// key es válida y está habilitada. Devuelve error solo si el directorio no está disponible.
func (uc *EnterpriseUseCase) ValidateKey(ctx context.Context, rawKey string, meta auth.RequestMeta) (*dto.ValidateKeyResponse, error) {
	res, err := uc.auth.Authenticate(ctx, strings.TrimSpace(rawKey), meta)
	if err != nil {
		return nil, err
	}
	out := &dto.ValidateKeyResponse{Valid: res.Authenticated(), Reason: string(res.Outcome)}
	if !out.Valid {
		return out, nil
	}
	acc, err := uc.dir.ResolveByID(ctx, res.Account.AccountID)
	if err != nil {
		return nil, err
	}
	out.Account = &dto.AccountSummary{
		TenantID:         acc.TenantID,
		CompanyName:      acc.CompanyName,
		SubscriptionPlan: string(acc.SubscriptionPlan),
		MonthlyQuota:     acc.MonthlyQuota,
		APIKeyPrefix:     acc.APIKeyPrefix,
	}
	return out, nil
}

// QuotaAfterPlanChange cuota tras cambiar a plan: la por defecto del plan, salvo CUSTOM que
// conserva la actual.
func QuotaAfterPlanChange(plan entity.SubscriptionPlan, current *int) *int {
	if plan == entity.PlanCustom {
		return current
	}
	return plan.DefaultQuota()
}

func newTenantID() string {
	return "tnt_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

func validateContract(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("%w: contractEnd anterior a contractStart", domain.ErrInvalidInput)
	}
	return nil
}

func toEnterpriseResponse(a *entity.EnterpriseAccount) *dto.EnterpriseResponse {
	if a == nil {
		return nil
	}
	return &dto.EnterpriseResponse{
		ID:               a.ID,
		TenantID:         a.TenantID,
		UserID:           a.UserID,
		CompanyName:      a.CompanyName,
		SubscriptionPlan: string(a.SubscriptionPlan),
		BillingEmail:     a.BillingEmail,
		ContractStart:    a.ContractStart,
		ContractEnd:      a.ContractEnd,
		APIKeyPrefix:     a.APIKeyPrefix,
		APIKeyEnabled:    a.APIKeyEnabled,
		MonthlyQuota:     a.MonthlyQuota,
		MaxBranches:      a.MaxBranches(),
		MonthlyPrice:     a.MonthlyPrice(),
		StripeCustomerID: a.StripeCustomerID,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
