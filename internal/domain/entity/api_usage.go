package entity

import "time"

// ApiUsageRecord contador de peticiones de una cuenta en un periodo (mes calendario).
// Se crea perezosamente con la primera petición del periodo y nunca se decrementa.
type ApiUsageRecord struct {
	AccountID    string
	PeriodStart  time.Time
	RequestCount int64
	UpdatedAt    time.Time
}

// Resultados registrados en el rastro de auditoría.
const (
	AuditOutcomeAuthenticated     = "authenticated"
	AuditOutcomeMissingCredential = "missing_credential"
	AuditOutcomeInvalidCredential = "invalid_credential"
	AuditOutcomeDisabled          = "disabled"
	AuditOutcomeUnavailable       = "unavailable"
)

// APILog entrada del rastro de auditoría de autenticación.
// AccountID es nil cuando la key presentada no corresponde a ninguna cuenta.
type APILog struct {
	ID        string
	AccountID *string
	KeyPrefix string
	Outcome   string
	Method    string
	Path      string
	IP        string
	CreatedAt time.Time
}
