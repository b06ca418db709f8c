package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProjectMemberStatus string

const (
	ProjectMemberInvited  ProjectMemberStatus = "invited"
	ProjectMemberAccepted ProjectMemberStatus = "accepted"
	ProjectMemberDeclined ProjectMemberStatus = "declined"
	ProjectMemberKicked   ProjectMemberStatus = "kicked"
	ProjectMemberLeft     ProjectMemberStatus = "left"
)

// Project is a multi-company collaboration owned by one company.
type Project struct {
	ID             uuid.UUID `json:"id"`
	OwnerCompanyID uuid.UUID `json:"owner_company_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProjectMember is the (project × company) relation.
type ProjectMember struct {
	ID        uuid.UUID           `json:"id"`
	ProjectID uuid.UUID           `json:"project_id"`
	CompanyID uuid.UUID           `json:"company_id"`
	Status    ProjectMemberStatus `json:"status"`
	InvitedAt time.Time           `json:"invited_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ProjectChat is a message on a Project; only Accepted members may send.
type ProjectChat struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Sender    Identity  `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
