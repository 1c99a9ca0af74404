// Package metrics expone los contadores Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "enterprise"

// Metrics colectores registrados en un registry propio (un registry por instancia de app).
type Metrics struct {
	Registry *prometheus.Registry

	authAttempts   *prometheus.CounterVec
	quotaDecisions *prometheus.CounterVec
	auditDropped   prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New crea y registra los colectores.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Intentos de autenticación por API key según resultado.",
		}, []string{"outcome"}),
		quotaDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_decisions_total",
			Help:      "Decisiones del contador de cuota mensual.",
		}, []string{"decision"}),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_dropped_total",
			Help:      "Eventos de auditoría descartados por cola llena o cerrada.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duración de las peticiones HTTP.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms a ~2.5s
		}, []string{"method", "route"}),
	}
	m.Registry.MustRegister(
		m.authAttempts,
		m.quotaDecisions,
		m.auditDropped,
		m.httpRequests,
		m.httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// AuthOutcome cuenta un intento de autenticación.
func (m *Metrics) AuthOutcome(outcome string) {
	m.authAttempts.WithLabelValues(outcome).Inc()
}

// QuotaDecision cuenta una decisión de cuota.
func (m *Metrics) QuotaDecision(decision string) {
	m.quotaDecisions.WithLabelValues(decision).Inc()
}

// AuditDropped cuenta un evento de auditoría descartado.
func (m *Metrics) AuditDropped() {
	m.auditDropped.Inc()
}

// ObserveHTTP registra una petición. route es el patrón de la ruta, nunca el path concreto.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
