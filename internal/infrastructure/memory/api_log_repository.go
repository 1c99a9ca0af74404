package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

var _ repository.APILogRepository = (*APILogRepo)(nil)

// APILogRepo rastro de auditoría en memoria.
type APILogRepo struct {
	s *Store
}

// Insert agrega una entrada. Si la cuenta ya fue eliminada la entrada se descarta.
func (r *APILogRepo) Insert(_ context.Context, entry *entity.APILog) error {
	defer r.s.acquire(false)()
	c := *entry
	if c.AccountID != nil {
		if _, ok := r.s.accounts[*c.AccountID]; !ok {
			return nil
		}
		id := *c.AccountID
		c.AccountID = &id
	}
	r.s.logs = append(r.s.logs, &c)
	return nil
}

func (r *APILogRepo) byAccount(accountID string) []*entity.APILog {
	var out []*entity.APILog
	for _, l := range r.s.logs {
		if l.AccountID != nil && *l.AccountID == accountID {
			c := *l
			out = append(out, &c)
		}
	}
	return out
}

// ListByAccount entradas de la cuenta, más recientes primero.
func (r *APILogRepo) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*entity.APILog, error) {
	defer r.s.acquire(false)()
	list := r.byAccount(accountID)
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// CountByAccount total de entradas de la cuenta.
func (r *APILogRepo) CountByAccount(_ context.Context, accountID string) (int, error) {
	defer r.s.acquire(false)()
	return len(r.byAccount(accountID)), nil
}

// DeleteBefore purga entradas anteriores a cutoff.
func (r *APILogRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	defer r.s.acquire(false)()
	kept := r.s.logs[:0]
	var removed int64
	for _, l := range r.s.logs {
		if l.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	r.s.logs = kept
	return removed, nil
}
