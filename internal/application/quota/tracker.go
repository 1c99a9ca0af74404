// Package quota aplica y reporta la cuota mensual de peticiones por cuenta.
package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	domainquota "github.com/jhoicas/lavanderia-enterprise-api/internal/domain/quota"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
)

// ErrUnavailable el contador no pudo consultarse o actualizarse; la petición se rechaza.
var ErrUnavailable = errors.New("contador de cuota no disponible")

// Decisiones registradas en métricas.
const (
	DecisionAllowed     = "allowed"
	DecisionExceeded    = "exceeded"
	DecisionUnavailable = "unavailable"
	DecisionUnlimited   = "unlimited"
)

// Decision resultado de CheckAndIncrement.
type Decision struct {
	Allowed   bool
	Used      int64
	Quota     *int
	Remaining *int64
	Period    domainquota.Period
}

// ResetAt instante en que el contador vuelve a cero.
func (d Decision) ResetAt() time.Time { return d.Period.End }

// Usage uso del periodo vigente.
type Usage struct {
	Used      int64
	Quota     *int
	Remaining *int64
	Period    domainquota.Period
}

// Tracker contador mensual con check-and-increment atómico delegado al repositorio.
type Tracker struct {
	usage        repository.UsageRepository
	loc          *time.Location
	log          zerolog.Logger
	asyncTimeout time.Duration
	onDecision   func(decision string)
	pending      sync.WaitGroup
}

// TrackerOption configura el Tracker.
type TrackerOption func(*Tracker)

// WithLocation zona horaria de los periodos (UTC por defecto).
func WithLocation(loc *time.Location) TrackerOption {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithLogger logger para los incrementos en segundo plano.
func WithLogger(log zerolog.Logger) TrackerOption {
	return func(t *Tracker) { t.log = log }
}

// WithAsyncTimeout límite de los incrementos informativos de cuentas ilimitadas.
func WithAsyncTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.asyncTimeout = d
		}
	}
}

// WithDecisionHook recibe cada decisión (métricas).
func WithDecisionHook(fn func(decision string)) TrackerOption {
	return func(t *Tracker) { t.onDecision = fn }
}

// NewTracker construye el tracker.
func NewTracker(usage repository.UsageRepository, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		usage:        usage,
		loc:          time.UTC,
		log:          zerolog.Nop(),
		asyncTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Location zona horaria de los periodos.
func (t *Tracker) Location() *time.Location { return t.loc }

// CheckAndIncrement registra una petición hecha en at. Con cuota finita el incremento es
// condicional y atómico: nunca supera la cuota. Con cuota ilimitada siempre permite y el
// incremento corre en segundo plano solo para reportes. Un error devuelto envuelve
// ErrUnavailable y la petición debe rechazarse.
func (t *Tracker) CheckAndIncrement(ctx context.Context, accountID string, limit *int, at time.Time) (Decision, error) {
	period := domainquota.PeriodFor(at, t.loc)

	if limit == nil {
		t.record(DecisionUnlimited)
		t.incrementAsync(accountID, period)
		return Decision{Allowed: true, Period: period}, nil
	}

	count, incremented, err := t.usage.IncrementIfBelow(ctx, accountID, period.Start, limit)
	if err != nil {
		t.record(DecisionUnavailable)
		return Decision{Quota: limit, Period: period}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	d := Decision{
		Allowed:   incremented,
		Used:      count,
		Quota:     limit,
		Remaining: domainquota.Remaining(count, limit),
		Period:    period,
	}
	if incremented {
		t.record(DecisionAllowed)
	} else {
		t.record(DecisionExceeded)
	}
	return d, nil
}

func (t *Tracker) incrementAsync(accountID string, period domainquota.Period) {
	t.pending.Add(1)
	go func() {
		defer t.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.asyncTimeout)
		defer cancel()
		if _, _, err := t.usage.IncrementIfBelow(ctx, accountID, period.Start, nil); err != nil {
			t.log.Warn().Err(err).Str("account_id", accountID).Msg("incremento de uso ilimitado falló")
		}
	}()
}

// Wait espera los incrementos en segundo plano pendientes (shutdown y tests).
func (t *Tracker) Wait() { t.pending.Wait() }

// GetUsage devuelve el uso del periodo que contiene at. No incrementa.
func (t *Tracker) GetUsage(ctx context.Context, accountID string, limit *int, at time.Time) (Usage, error) {
	period := domainquota.PeriodFor(at, t.loc)
	return t.UsageForPeriod(ctx, accountID, limit, period)
}

// UsageForPeriod uso de un periodo arbitrario (estado de cuenta de meses anteriores).
func (t *Tracker) UsageForPeriod(ctx context.Context, accountID string, limit *int, period domainquota.Period) (Usage, error) {
	used, err := t.usage.Get(ctx, accountID, period.Start)
	if err != nil {
		return Usage{}, fmt.Errorf("get usage: %w", err)
	}
	return Usage{
		Used:      used,
		Quota:     limit,
		Remaining: domainquota.Remaining(used, limit),
		Period:    period,
	}, nil
}

func (t *Tracker) record(decision string) {
	if t.onDecision != nil {
		t.onDecision(decision)
	}
}
