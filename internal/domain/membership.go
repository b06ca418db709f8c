package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a tagged variant, not a naive ordinal — comparisons for
// management decisions go through the explicit predicates below rather
// than an overloaded <.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleMember    Role = "member"
	RoleField     Role = "field"
	RoleInstaller Role = "installer"
	RolePending   Role = "pending"
)

// managementRank orders roles only for the "can X manage Y" comparisons in
// update_user_role / remove_colleague. Not a general total order.
var managementRank = map[Role]int{
	RoleOwner:     4,
	RoleAdmin:     3,
	RoleMember:    2,
	RoleField:     2,
	RoleInstaller: 1,
	RolePending:   1,
}

func (r Role) IsOwner() bool { return r == RoleOwner }
func (r Role) CanManage() bool { return r == RoleOwner || r == RoleAdmin }
func (r Role) IsActiveMember() bool { return r != RolePending }
func (r Role) IsInternal() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleField:
		return true
	default:
		return false
	}
}

// AtOrAbove reports whether r outranks or equals other for management
// purposes (e.g. an Admin may not modify another Admin or Owner).
func (r Role) AtOrAbove(other Role) bool {
	return managementRank[r] >= managementRank[other]
}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleField, RoleInstaller, RolePending:
		return true
	default:
		return false
	}
}

// Membership is the (account × company) relation.
type Membership struct {
	ID        uuid.UUID `json:"id"`
	Identity  Identity  `json:"identity"`
	CompanyID uuid.UUID `json:"company_id"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// InviteCode lets an account join a company. Deleted once exhausted.
type InviteCode struct {
	Code          string    `json:"code"`
	CompanyID     uuid.UUID `json:"company_id"`
	CreatedBy     Identity  `json:"created_by"`
	MaxUses       int       `json:"max_uses"`
	UsesRemaining int       `json:"uses_remaining"`
	CreatedAt     time.Time `json:"created_at"`
}
