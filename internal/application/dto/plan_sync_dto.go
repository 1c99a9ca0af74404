package dto

// PlanSyncResponse resultado de sincronizar el plan con el proveedor de facturación.
type PlanSyncResponse struct {
	AccountID    string `json:"accountId"`
	PreviousPlan string `json:"previousPlan"`
	Plan         string `json:"plan"`
	MonthlyQuota *int   `json:"monthlyQuota"`
	Changed      bool   `json:"changed"`
}
