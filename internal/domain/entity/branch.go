package entity

import "time"

// Branch representa una sucursal (planta o punto de recepción) de una organización enterprise.
// Code es único dentro de la organización, no globalmente.
type Branch struct {
	ID             string
	OrganizationID string
	Name           string
	Code           *string
	AddressLine    string
	City           string
	State          string
	PostalCode     string
	Country        string
	Phone          string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
