// Package memory implementa los puertos de persistencia en memoria.
// Lo usan los tests y el driver STORAGE_DRIVER=memory para demos locales; replica las
// restricciones únicas y el borrado en cascada del esquema PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

type usageKey struct {
	accountID   string
	periodStart int64
}

// Store estado compartido por todos los repositorios en memoria. Un único mutex
// serializa todas las operaciones, incluidas las transacciones de RunBranch.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*entity.EnterpriseAccount
	branches map[string]*entity.Branch
	usage    map[usageKey]int64
	logs     []*entity.APILog
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*entity.EnterpriseAccount),
		branches: make(map[string]*entity.Branch),
		usage:    make(map[usageKey]int64),
	}
}

// Accounts devuelve el repositorio de cuentas.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// Branches devuelve el repositorio de sucursales.
func (s *Store) Branches() *BranchRepo { return &BranchRepo{s: s} }

// Usage devuelve el repositorio de contadores de uso.
func (s *Store) Usage() *UsageRepo { return &UsageRepo{s: s} }

// APILogs devuelve el repositorio de auditoría.
func (s *Store) APILogs() *APILogRepo { return &APILogRepo{s: s} }

// TxRunner devuelve el ejecutor de transacciones de sucursales.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// acquire toma el mutex salvo que el repositorio ya opere dentro de RunBranch.
func (s *Store) acquire(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// TxRunner serializa la función completa bajo el mutex del store.
type TxRunner struct {
	s *Store
}

// RunBranch ejecuta fn con repositorios que ya operan bajo el lock del store.
func (r *TxRunner) RunBranch(ctx context.Context, fn func(
	accounts repository.EnterpriseAccountRepository,
	branches repository.BranchRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(&AccountRepo{s: r.s, inTx: true}, &BranchRepo{s: r.s, inTx: true})
}

func copyAccount(a *entity.EnterpriseAccount) *entity.EnterpriseAccount {
	if a == nil {
		return nil
	}
	c := *a
	if a.ContractStart != nil {
		t := *a.ContractStart
		c.ContractStart = &t
	}
	if a.ContractEnd != nil {
		t := *a.ContractEnd
		c.ContractEnd = &t
	}
	if a.MonthlyQuota != nil {
		q := *a.MonthlyQuota
		c.MonthlyQuota = &q
	}
	if a.CustomMonthlyPrice != nil {
		p := *a.CustomMonthlyPrice
		c.CustomMonthlyPrice = &p
	}
	return &c
}

func copyBranch(b *entity.Branch) *entity.Branch {
	if b == nil {
		return nil
	}
	c := *b
	if b.Code != nil {
		code := *b.Code
		c.Code = &code
	}
	return &c
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func periodKey(accountID string, periodStart time.Time) usageKey {
	return usageKey{accountID: accountID, periodStart: periodStart.UnixNano()}
}
