package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is the identity-backed record for a caller, one per Identity.
type Account struct {
	Identity        Identity   `json:"identity"`
	FullName        string     `json:"full_name"`
	Nickname        string     `json:"nickname"`
	Email           string     `json:"email"`
	ActiveCompanyID *uuid.UUID `json:"active_company_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Company is a tenant owned conceptually by whoever holds its Owner
// Membership.
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Location  string    `json:"location"`
	Bio       string    `json:"bio"`
	KvkNumber string    `json:"kvk_number"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

// Capability is the 1:1 flag row created atomically with its Company.
type Capability struct {
	CompanyID       uuid.UUID `json:"company_id"`
	CanInstall      bool      `json:"can_install"`
	HasCNC          bool      `json:"has_cnc"`
	HasLargeFormat  bool      `json:"has_large_format"`
	HasBucketTruck  bool      `json:"has_bucket_truck"`
}
