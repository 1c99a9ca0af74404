package memory

import (
	"context"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

var _ repository.UsageRepository = (*UsageRepo)(nil)

// UsageRepo contador mensual en memoria. El mutex del store hace atómico el
// incremento condicional, igual que el UPSERT condicional en PostgreSQL.
type UsageRepo struct {
	s *Store
}

// IncrementIfBelow incrementa el contador si no alcanza limit.
func (r *UsageRepo) IncrementIfBelow(ctx context.Context, accountID string, periodStart time.Time, limit *int) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	defer r.s.acquire(false)()
	if _, ok := r.s.accounts[accountID]; !ok {
		return 0, false, domain.ErrAccountNotFound
	}
	key := periodKey(accountID, periodStart)
	cur := r.s.usage[key]
	if limit != nil && cur >= int64(*limit) {
		return cur, false, nil
	}
	cur++
	r.s.usage[key] = cur
	return cur, true, nil
}

// Get devuelve el contador del periodo.
func (r *UsageRepo) Get(_ context.Context, accountID string, periodStart time.Time) (int64, error) {
	defer r.s.acquire(false)()
	return r.s.usage[periodKey(accountID, periodStart)], nil
}
