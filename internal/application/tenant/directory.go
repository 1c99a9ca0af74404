// Package tenant resuelve API keys y IDs alternos a cuentas enterprise.
package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
	"github.com/jhoicas/lavanderia-enterprise-api/pkg/apikey"
)

// Directory directorio de tenants sobre el repositorio de cuentas, con caché opcional
// indexada por hash de key.
type Directory struct {
	repo  repository.EnterpriseAccountRepository
	cache *expirable.LRU[string, *entity.EnterpriseAccount]
	now   func() time.Time
}

// Option configura el Directory.
type Option func(*Directory)

// WithCache habilita la caché de lecturas por hash. ttl <= 0 la deja deshabilitada.
func WithCache(size int, ttl time.Duration) Option {
	return func(d *Directory) {
		if ttl <= 0 {
			return
		}
		if size <= 0 {
			size = 1024
		}
		d.cache = expirable.NewLRU[string, *entity.EnterpriseAccount](size, nil, ttl)
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// NewDirectory construye el directorio.
func NewDirectory(repo repository.EnterpriseAccountRepository, opts ...Option) *Directory {
	d := &Directory{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resolve devuelve la cuenta dueña de la key presentada o domain.ErrAccountNotFound.
func (d *Directory) Resolve(ctx context.Context, rawKey string) (*entity.EnterpriseAccount, error) {
	if rawKey == "" {
		return nil, domain.ErrAccountNotFound
	}
	hash := apikey.Hash(rawKey)
	if d.cache != nil {
		if acc, ok := d.cache.Get(hash); ok {
			return snapshot(acc), nil
		}
	}
	acc, err := d.repo.GetByAPIKeyHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("resolve api key: %w", err)
	}
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	if d.cache != nil {
		d.cache.Add(hash, snapshot(acc))
	}
	return acc, nil
}

// ResolveByID búsqueda puntual por ID interno.
func (d *Directory) ResolveByID(ctx context.Context, id string) (*entity.EnterpriseAccount, error) {
	return found(d.repo.GetByID(ctx, id))
}

// ResolveByTenantID búsqueda puntual por tenant_id.
func (d *Directory) ResolveByTenantID(ctx context.Context, tenantID string) (*entity.EnterpriseAccount, error) {
	return found(d.repo.GetByTenantID(ctx, tenantID))
}

// ResolveByUserID búsqueda puntual por usuario dueño.
func (d *Directory) ResolveByUserID(ctx context.Context, userID string) (*entity.EnterpriseAccount, error) {
	return found(d.repo.GetByUserID(ctx, userID))
}

// ResolveByStripeCustomerID cuenta vinculada a un cliente del proveedor de facturación.
func (d *Directory) ResolveByStripeCustomerID(ctx context.Context, customerID string) (*entity.EnterpriseAccount, error) {
	return found(d.repo.GetByStripeCustomerID(ctx, customerID))
}

// RegenerateKey reemplaza la key de la cuenta. La key anterior deja de ser válida en cuanto
// termina la sentencia; la nueva se devuelve en claro una única vez.
func (d *Directory) RegenerateKey(ctx context.Context, accountID string) (string, *entity.EnterpriseAccount, error) {
	key, err := apikey.Generate()
	if err != nil {
		return "", nil, err
	}
	acc, err := d.repo.ReplaceAPIKey(ctx, accountID, key.Hash, key.Prefix, d.now().UTC())
	if err != nil {
		return "", nil, err
	}
	if acc == nil {
		return "", nil, domain.ErrAccountNotFound
	}
	d.Invalidate(accountID)
	return key.Raw, acc, nil
}

// SetEnabled activa o desactiva la key sin tocar su valor.
func (d *Directory) SetEnabled(ctx context.Context, accountID string, enabled bool) (*entity.EnterpriseAccount, error) {
	acc, err := d.repo.SetAPIKeyEnabled(ctx, accountID, enabled, d.now().UTC())
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	d.Invalidate(accountID)
	return acc, nil
}

// ChangePlan fija plan y cuota en una sola sentencia.
func (d *Directory) ChangePlan(ctx context.Context, accountID string, plan entity.SubscriptionPlan, quota *int) (*entity.EnterpriseAccount, error) {
	acc, err := d.repo.UpdatePlan(ctx, accountID, plan, quota, d.now().UTC())
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	d.Invalidate(accountID)
	return acc, nil
}

// Invalidate expulsa de la caché todas las entradas de la cuenta.
func (d *Directory) Invalidate(accountID string) {
	if d.cache == nil {
		return
	}
	for _, hash := range d.cache.Keys() {
		if acc, ok := d.cache.Peek(hash); ok && acc.ID == accountID {
			d.cache.Remove(hash)
		}
	}
}

func found(acc *entity.EnterpriseAccount, err error) (*entity.EnterpriseAccount, error) {
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}
	return acc, nil
}

// snapshot copia la cuenta para que la caché no comparta punteros con los callers.
func snapshot(a *entity.EnterpriseAccount) *entity.EnterpriseAccount {
	c := *a
	if a.MonthlyQuota != nil {
		q := *a.MonthlyQuota
		c.MonthlyQuota = &q
	}
	return &c
}
