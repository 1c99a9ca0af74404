package dto

import "time"

// QuotaResponse reporte de uso del periodo vigente. Quota y Remaining son nil si es ilimitada.
type QuotaResponse struct {
	AccountID   string    `json:"accountId"`
	TenantID    string    `json:"tenantId"`
	Used        int64     `json:"used"`
	Quota       *int      `json:"quota"`
	Remaining   *int64    `json:"remaining"`
	Unlimited   bool      `json:"unlimited"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	ResetAt     time.Time `json:"resetAt"`
}
