package auth

import "time"

// AuditEvent evento emitido en cada intento de autenticación.
type AuditEvent struct {
	At        time.Time
	KeyPrefix string
	Outcome   Outcome
	AccountID string // vacío si la key no corresponde a ninguna cuenta
	Method    string
	Path      string
	IP        string
}

// AuditSink recibe los eventos. Emit no debe bloquear ni devolver error al request.
type AuditSink interface {
	Emit(AuditEvent)
}

// AuditSinkFunc adapta una función a AuditSink.
type AuditSinkFunc func(AuditEvent)

// Emit implementa AuditSink.
func (f AuditSinkFunc) Emit(e AuditEvent) { f(e) }

type nopSink struct{}

func (nopSink) Emit(AuditEvent) {}
