// Package auth autentica peticiones por API key y decide su admisión (auth + cuota).
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/entity"
	"github.com/jhoicas/lavanderia-enterprise-api/pkg/apikey"
)

// Outcome resultado terminal de la autenticación.
type Outcome string

const (
	OutcomeAuthenticated     Outcome = entity.AuditOutcomeAuthenticated
	OutcomeMissingCredential Outcome = entity.AuditOutcomeMissingCredential
	OutcomeInvalidCredential Outcome = entity.AuditOutcomeInvalidCredential
	OutcomeDisabled          Outcome = entity.AuditOutcomeDisabled
	OutcomeUnavailable       Outcome = entity.AuditOutcomeUnavailable
)

// ErrUnavailable el directorio no respondió; la petición se rechaza (fail-closed).
var ErrUnavailable = errors.New("directorio de tenants no disponible")

// Resolver resuelve una key a su cuenta (tenant.Directory).
type Resolver interface {
	Resolve(ctx context.Context, rawKey string) (*entity.EnterpriseAccount, error)
}

// RequestMeta datos del request que viajan al evento de auditoría.
type RequestMeta struct {
	Method string
	Path   string
	IP     string
}

// Result resultado de Authenticate. Account solo es válido con OutcomeAuthenticated.
type Result struct {
	Outcome Outcome
	Account AccountContext
}

// Authenticated informa si la petición quedó autenticada.
func (r Result) Authenticated() bool { return r.Outcome == OutcomeAuthenticated }

// Authenticator máquina de estados por petición: sin credencial, resolviendo, y uno de los
// estados terminales. No guarda estado entre peticiones.
type Authenticator struct {
	dir       Resolver
	sink      AuditSink
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
	onOutcome func(Outcome)
}

// Option configura el Authenticator.
type Option func(*Authenticator)

// WithAuditSink destino de los eventos de auditoría.
func WithAuditSink(sink AuditSink) Option {
	return func(a *Authenticator) {
		if sink != nil {
			a.sink = sink
		}
	}
}

// WithLookupTimeout límite de la consulta al directorio.
func WithLookupTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// WithLogger logger del componente.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Authenticator) { a.log = log }
}

// WithOutcomeHook recibe cada resultado (métricas).
func WithOutcomeHook(fn func(Outcome)) Option {
	return func(a *Authenticator) { a.onOutcome = fn }
}

// NewAuthenticator construye el autenticador.
func NewAuthenticator(dir Resolver, opts ...Option) *Authenticator {
	a := &Authenticator{
		dir:     dir,
		sink:    nopSink{},
		timeout: 2 * time.Second,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate resuelve la key presentada. El error es no nil solo con OutcomeUnavailable.
func (a *Authenticator) Authenticate(ctx context.Context, rawKey string, meta RequestMeta) (Result, error) {
	at := a.now().UTC()
	if rawKey == "" {
		a.finish(at, "", OutcomeMissingCredential, "", meta)
		return Result{Outcome: OutcomeMissingCredential}, nil
	}
	prefix := apikey.Prefix(rawKey)

	lookupCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	acc, err := a.dir.Resolve(lookupCtx, rawKey)

	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		a.finish(at, prefix, OutcomeInvalidCredential, "", meta)
		return Result{Outcome: OutcomeInvalidCredential}, nil
	case err != nil:
		a.finish(at, prefix, OutcomeUnavailable, "", meta)
		a.log.Error().Err(err).Str("key_prefix", prefix).Msg("resolución de API key falló")
		return Result{Outcome: OutcomeUnavailable}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	case !acc.APIKeyEnabled:
		a.finish(at, prefix, OutcomeDisabled, acc.ID, meta)
		return Result{Outcome: OutcomeDisabled}, nil
	}

	a.finish(at, prefix, OutcomeAuthenticated, acc.ID, meta)
	return Result{Outcome: OutcomeAuthenticated, Account: NewAccountContext(acc, at)}, nil
}

// finish emite la auditoría y la métrica. Un sink que entra en pánico se registra y se ignora.
func (a *Authenticator) finish(at time.Time, prefix string, outcome Outcome, accountID string, meta RequestMeta) {
	if a.onOutcome != nil {
		a.onOutcome(outcome)
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Msg("audit sink en pánico")
		}
	}()
	a.sink.Emit(AuditEvent{
		At:        at,
		KeyPrefix: prefix,
		Outcome:   outcome,
		AccountID: accountID,
		Method:    meta.Method,
		Path:      meta.Path,
		IP:        meta.IP,
	})
}
