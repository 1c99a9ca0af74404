package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	domainquota "github.com/jhoicas/lavanderia-enterprise-api/internal/domain/quota"
)

// AccountFinder búsqueda de cuenta por ID (tenant.Directory).
type AccountFinder interface {
	ResolveByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error)
}

// StatementUseCase genera el estado de uso mensual de una cuenta en PDF. Solo lee el contador.
type StatementUseCase struct {
	accounts  AccountFinder
	usage     UsageReader
	generator StatementPDFGenerator
	now       func() time.Time
}

// NewStatementUseCase construye el caso de uso.
func NewStatementUseCase(accounts AccountFinder, usage UsageReader, generator StatementPDFGenerator) *StatementUseCase {
	return &StatementUseCase{accounts: accounts, usage: usage, generator: generator, now: time.Now}
}

// Download genera el PDF del periodo "YYYY-MM" (vacío = mes en curso).
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrAccountNotFound si la cuenta no existe.
//   - domain.ErrInvalidInput    si el periodo no tiene formato YYYY-MM o es futuro.
func (uc *StatementUseCase) Download(ctx context.Context, accountID, period string) (pdfBytes []byte, filename string, err error) {
	acc, err := uc.accounts.ResolveByID(ctx, accountID)
	if err != nil {
		return nil, "", err
	}

	now := uc.now().UTC()
	loc := uc.usage.Location()
	p := domainquota.PeriodFor(now, loc)
	if period = strings.TrimSpace(period); period != "" {
		p, err = domainquota.ParseMonth(period, loc)
		if err != nil {
			return nil, "", fmt.Errorf("%w: period debe tener formato YYYY-MM", domain.ErrInvalidInput)
		}
		if p.Start.After(now) {
			return nil, "", fmt.Errorf("%w: el periodo aún no comienza", domain.ErrInvalidInput)
		}
	}

	usage, err := uc.usage.UsageForPeriod(ctx, acc.ID, acc.MonthlyQuota, p)
	if err != nil {
		return nil, "", fmt.Errorf("statement: obtener uso: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateStatementPDF(ctx, Statement{Account: acc, Usage: usage, GeneratedAt: now})
	if err != nil {
		return nil, "", fmt.Errorf("statement: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("estado_uso_%s_%s.pdf", acc.TenantID, p.Start.Format("2006-01"))
	return pdfBytes, filename, nil
}
