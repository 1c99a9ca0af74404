package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/usecase"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

// Ensure TxRunner implements usecase.BranchTxRunner.
var _ usecase.BranchTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBranch inicia una transacción, ejecuta fn con repos de cuenta y sucursal atados a la tx
// y hace Commit o Rollback. fn debe bloquear la cuenta con LockByID antes de contar sucursales.
func (r *TxRunner) RunBranch(ctx context.Context, fn func(
	accounts repository.EnterpriseAccountRepository,
	branches repository.BranchRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewEnterpriseAccountRepository(tx), NewBranchRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
