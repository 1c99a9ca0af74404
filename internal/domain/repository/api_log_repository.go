package repository

import (
	"context"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
)

// APILogRepository define el puerto del rastro de auditoría.
type APILogRepository interface {
	Insert(ctx context.Context, entry *entity.APILog) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*entity.APILog, error)
	CountByAccount(ctx context.Context, accountID string) (int, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
