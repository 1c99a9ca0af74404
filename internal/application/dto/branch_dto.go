package dto

import "time"

// CreateBranchRequest entrada para crear una sucursal.
type CreateBranchRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Code        *string `json:"code" validate:"omitempty,min=1,max=32"`
	AddressLine string  `json:"addressLine" validate:"max=255"`
	City        string  `json:"city" validate:"max=120"`
	State       string  `json:"state" validate:"max=120"`
	PostalCode  string  `json:"postalCode" validate:"max=20"`
	Country     string  `json:"country" validate:"max=2"`
	Phone       string  `json:"phone" validate:"max=32"`
	IsActive    *bool   `json:"isActive"`
}

// UpdateBranchRequest entrada para actualizar una sucursal (campos opcionales).
type UpdateBranchRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Code        *string `json:"code" validate:"omitempty,min=1,max=32"`
	AddressLine *string `json:"addressLine" validate:"omitempty,max=255"`
	City        *string `json:"city" validate:"omitempty,max=120"`
	State       *string `json:"state" validate:"omitempty,max=120"`
	PostalCode  *string `json:"postalCode" validate:"omitempty,max=20"`
	Country     *string `json:"country" validate:"omitempty,max=2"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	IsActive    *bool   `json:"isActive"`
}

// BranchResponse salida de una sucursal.
type BranchResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	Code           *string   `json:"code"`
	AddressLine    string    `json:"addressLine"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	PostalCode     string    `json:"postalCode"`
	Country        string    `json:"country"`
	Phone          string    `json:"phone"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// BranchListResponse lista paginada de sucursales.
type BranchListResponse struct {
	Items []BranchResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
