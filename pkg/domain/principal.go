package domain

import "time"

// Role is the role of a principal within its tenant.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleEmployee Role = "employee"
)

// PrincipalStatus represents the lifecycle state of a principal.
type PrincipalStatus string

const (
	PrincipalStatusActive   PrincipalStatus = "active"
	PrincipalStatusDisabled PrincipalStatus = "disabled"
)

// Principal is an authenticatable identity inside one tenant's store. The ID
// is structured (role tag, tenant code, sequence) and unique within the store;
// Seq is allocated from a durable counter and never reused.
type Principal struct {
	ID          string
	DisplayName string
	Email       string
	Phone       string
	SecretHash  string
	Role        Role
	Seq         int
	CreatedAt   time.Time
	Status      PrincipalStatus
}

// EmployeeData is the input for enrolling a new employee principal.
type EmployeeData struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	License string `json:"license,omitempty"`
	Address string `json:"address,omitempty"`
	Secret  string `json:"secret"`
}
