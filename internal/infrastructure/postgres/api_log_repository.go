package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

var _ repository.APILogRepository = (*APILogRepo)(nil)

// APILogRepo rastro de auditoría sobre la tabla api_logs.
type APILogRepo struct {
	q Querier
}

// NewAPILogRepository construye el adaptador.
func NewAPILogRepository(q Querier) *APILogRepo {
	return &APILogRepo{q: q}
}

// Insert agrega una entrada. Si la cuenta fue eliminada mientras la entrada estaba en cola,
// la entrada se descarta.
func (r *APILogRepo) Insert(ctx context.Context, e *entity.APILog) error {
	query := `
		INSERT INTO api_logs (id, account_id, key_prefix, outcome, method, path, ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, e.ID, e.AccountID, e.KeyPrefix, e.Outcome, e.Method, e.Path, e.IP, e.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) && constraintName(err) == constraintAPILogAccountFK {
			return nil
		}
		return fmt.Errorf("insert api log: %w", err)
	}
	return nil
}

// ListByAccount entradas de la cuenta, más recientes primero.
func (r *APILogRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*entity.APILog, error) {
	query := `
		SELECT id, account_id, key_prefix, outcome, method, path, ip, created_at
		FROM api_logs WHERE account_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list api logs: %w", err)
	}
	defer rows.Close()

	var list []*entity.APILog
	for rows.Next() {
		var l entity.APILog
		if err := rows.Scan(&l.ID, &l.AccountID, &l.KeyPrefix, &l.Outcome, &l.Method, &l.Path, &l.IP, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api log: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// CountByAccount total de entradas de la cuenta.
func (r *APILogRepo) CountByAccount(ctx context.Context, accountID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM api_logs WHERE account_id = $1`, accountID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count api logs: %w", err)
	}
	return n, nil
}

// DeleteBefore purga las entradas anteriores a cutoff.
func (r *APILogRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM api_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge api logs: %w", err)
	}
	return cmd.RowsAffected(), nil
}
