package dto

import "time"

// APILogResponse entrada del rastro de auditoría.
type APILogResponse struct {
	ID        string    `json:"id"`
	KeyPrefix string    `json:"keyPrefix"`
	Outcome   string    `json:"outcome"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
}

// APILogListResponse lista paginada del rastro.
type APILogListResponse struct {
	Items []APILogResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// PurgeResponse resultado de la purga de retención.
type PurgeResponse struct {
	Deleted int64     `json:"deleted"`
	Cutoff  time.Time `json:"cutoff"`
}
