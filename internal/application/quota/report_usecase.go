package quota

import (
	"context"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
)

// AccountFinder búsqueda de cuenta por ID (tenant.Directory).
type AccountFinder interface {
	ResolveByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error)
}

// ReportUseCase reporte de uso vs cuota. Solo lee: llamarlo repetidamente no cambia used.
type ReportUseCase struct {
	accounts AccountFinder
	tracker  *Tracker
	now      func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(accounts AccountFinder, tracker *Tracker) *ReportUseCase {
	return &ReportUseCase{accounts: accounts, tracker: tracker, now: time.Now}
}

// Report devuelve el uso del periodo vigente; domain.ErrAccountNotFound si la cuenta no existe.
func (uc *ReportUseCase) Report(ctx context.Context, accountID string) (*dto.QuotaResponse, error) {
	acc, err := uc.accounts.ResolveByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	usage, err := uc.tracker.GetUsage(ctx, acc.ID, acc.MonthlyQuota, uc.now())
	if err != nil {
		return nil, err
	}
	return ToQuotaResponse(acc, usage), nil
}

// ToQuotaResponse arma la respuesta a partir del uso calculado.
func ToQuotaResponse(acc *entity.EnterpriseAccount, u Usage) *dto.QuotaResponse {
	return &dto.QuotaResponse{
		AccountID:   acc.ID,
		TenantID:    acc.TenantID,
		Used:        u.Used,
		Quota:       u.Quota,
		Remaining:   u.Remaining,
		Unlimited:   u.Quota == nil,
		PeriodStart: u.Period.Start,
		PeriodEnd:   u.Period.End,
		ResetAt:     u.Period.End,
	}
}
