package models

import "time"

// ProviderRole represents the available roles for the RBAC system.
type ProviderRole string

const (
	RoleOwner      ProviderRole = "OWNER"
	RoleDispatcher ProviderRole = "DISPATCHER"
	RoleProvider   ProviderRole = "PROVIDER"
)

// Provider represents a schedulable individual belonging to a business.
// Providers are soft-deactivated, never hard-deleted.
type Provider struct {
	ID                 string       `db:"id" json:"id"`
	BusinessID         string       `db:"business_id" json:"business_id"`
	Role               ProviderRole `db:"role" json:"role"`
	Active             bool         `db:"active" json:"active"`
	VerificationStatus string       `db:"verification_status" json:"verification_status"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
