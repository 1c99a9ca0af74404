package audit

import (
	"context"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/dto"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

// AccountFinder búsqueda de cuenta por ID (tenant.Directory).
type AccountFinder interface {
	ResolveByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error)
}

// UseCase listado del rastro y purga por retención.
type UseCase struct {
	accounts  AccountFinder
	repo      repository.APILogRepository
	retention time.Duration
	now       func() time.Time
}

// NewUseCase construye el caso de uso. retention <= 0 deshabilita la purga.
func NewUseCase(accounts AccountFinder, repo repository.APILogRepository, retention time.Duration) *UseCase {
	return &UseCase{accounts: accounts, repo: repo, retention: retention, now: time.Now}
}

// List rastro de la cuenta, más reciente primero. domain.ErrAccountNotFound si no existe.
func (uc *UseCase) List(ctx context.Context, accountID string, page dto.PageRequest) (*dto.APILogListResponse, error) {
	page.DefaultPage()
	if _, err := uc.accounts.ResolveByID(ctx, accountID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByAccount(ctx, accountID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.APILogResponse, 0, len(list))
	for _, l := range list {
		items = append(items, dto.APILogResponse{
			ID:        l.ID,
			KeyPrefix: l.KeyPrefix,
			Outcome:   l.Outcome,
			Method:    l.Method,
			Path:      l.Path,
			IP:        l.IP,
			CreatedAt: l.CreatedAt,
		})
	}
	return &dto.APILogListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Purge elimina las entradas más antiguas que la retención configurada.
func (uc *UseCase) Purge(ctx context.Context) (*dto.PurgeResponse, error) {
	if uc.retention <= 0 {
		return &dto.PurgeResponse{}, nil
	}
	cutoff := uc.now().UTC().Add(-uc.retention)
	n, err := uc.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	return &dto.PurgeResponse{Deleted: n, Cutoff: cutoff}, nil
}
