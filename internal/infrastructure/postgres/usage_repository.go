package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

var _ repository.UsageRepository = (*UsageRepo)(nil)

// UsageRepo contador mensual sobre la tabla api_usage.
type UsageRepo struct {
	q Querier
}

// NewUsageRepository construye el adaptador.
func NewUsageRepository(q Querier) *UsageRepo {
	return &UsageRepo{q: q}
}

// incrementQuery UPSERT condicional: la fila se crea con 1 o se incrementa solo si sigue
// por debajo del límite. Sin fila devuelta el límite ya estaba alcanzado.
const incrementQuery = `
	INSERT INTO api_usage (account_id, period_start, request_count, updated_at)
	VALUES ($1, $2, 1, now())
	ON CONFLICT (account_id, period_start) DO UPDATE
		SET request_count = api_usage.request_count + 1, updated_at = now()
		WHERE $3::int IS NULL OR api_usage.request_count < $3::int
	RETURNING request_count`

// IncrementIfBelow incrementa atómicamente el contador del periodo.
func (r *UsageRepo) IncrementIfBelow(ctx context.Context, accountID string, periodStart time.Time, limit *int) (int64, bool, error) {
	if limit != nil && *limit <= 0 {
		n, err := r.Get(ctx, accountID, periodStart)
		return n, false, err
	}
	var count int64
	err := r.q.QueryRow(ctx, incrementQuery, accountID, periodStart, limit).Scan(&count)
	if err == nil {
		return count, true, nil
	}
	if isForeignKeyViolation(err) && constraintName(err) == constraintUsageAccountFK {
		return 0, false, domain.ErrAccountNotFound
	}
	if !isNoRows(err) {
		return 0, false, fmt.Errorf("increment usage: %w", err)
	}
	count, err = r.Get(ctx, accountID, periodStart)
	if err != nil {
		return 0, false, err
	}
	return count, false, nil
}

// Get devuelve el contador del periodo (0 si no hubo peticiones).
func (r *UsageRepo) Get(ctx context.Context, accountID string, periodStart time.Time) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx,
		`SELECT request_count FROM api_usage WHERE account_id = $1 AND period_start = $2`,
		accountID, periodStart,
	).Scan(&count)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get usage: %w", err)
	}
	return count, nil
}
