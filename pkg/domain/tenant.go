package domain

import "time"

// TenantStatus represents the lifecycle state of a tenant.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusDeleted   TenantStatus = "deleted"
)

// Tenant is the identity record of one customer organization. It is written
// once into the tenant's own store at provisioning time; only Status changes
// afterwards. The ID is an opaque routing key and is never reused, so renaming
// DisplayName cannot break routing.
type Tenant struct {
	ID          string
	Code        string // three-letter routing hint derived from DisplayName at provisioning
	DisplayName string
	OwnerName   string
	CreatedAt   time.Time
	Status      TenantStatus
}

// TenantStats holds the per-tenant aggregate counts exposed to the web layer.
type TenantStats struct {
	Employees int `json:"employees"`
	Customers int `json:"customers"`
	Vehicles  int `json:"vehicles"`
	Trips     int `json:"trips"`
}
