package auth

import (
	"context"
	"time"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/quota"
)

// QuotaChecker check-and-increment de la cuota (quota.Tracker).
type QuotaChecker interface {
	CheckAndIncrement(ctx context.Context, accountID string, limit *int, at time.Time) (quota.Decision, error)
}

// Admission decisión completa antes de invocar al handler.
// Decision solo se llena en rutas medidas de peticiones autenticadas.
type Admission struct {
	Result   Result
	Metered  bool
	Decision quota.Decision
}

// Admitted informa si el handler puede ejecutarse.
func (a Admission) Admitted() bool {
	if !a.Result.Authenticated() {
		return false
	}
	return !a.Metered || a.Decision.Allowed
}

// Gate ejecuta autenticación y cuota como una sola unidad. Ambas corren sobre un contexto
// que ignora la cancelación del cliente, acotadas por sus propios timeouts, de modo que
// una desconexión no deja un incremento a medias.
type Gate struct {
	auth         *Authenticator
	quota        QuotaChecker
	quotaTimeout time.Duration
}

// NewGate construye el gate.
func NewGate(a *Authenticator, q QuotaChecker, quotaTimeout time.Duration) *Gate {
	if quotaTimeout <= 0 {
		quotaTimeout = 2 * time.Second
	}
	return &Gate{auth: a, quota: q, quotaTimeout: quotaTimeout}
}

// Admit autentica y, si metered, consume una unidad de cuota. La petición se asigna al
// periodo que contiene el instante de resolución. Un error significa rechazo por
// indisponibilidad (auth.ErrUnavailable o quota.ErrUnavailable).
func (g *Gate) Admit(ctx context.Context, rawKey string, meta RequestMeta, metered bool) (Admission, error) {
	base := context.WithoutCancel(ctx)

	res, err := g.auth.Authenticate(base, rawKey, meta)
	adm := Admission{Result: res, Metered: metered}
	if err != nil || !res.Authenticated() || !metered {
		return adm, err
	}

	qctx, cancel := context.WithTimeout(base, g.quotaTimeout)
	defer cancel()
	adm.Decision, err = g.quota.CheckAndIncrement(qctx, res.Account.AccountID, res.Account.Quota(), res.Account.ResolvedAt)
	return adm, err
}
