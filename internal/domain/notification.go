package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifyMemberJoined        NotificationType = "member_joined"
	NotifyRoleUpdated         NotificationType = "role_updated"
	NotifyOwnershipTransferred NotificationType = "ownership_transferred"
	NotifyRemoved             NotificationType = "removed"
	NotifyConnectionRequested NotificationType = "connection_requested"
	NotifyConnectionAccepted  NotificationType = "connection_accepted"
	NotifyChatMessage         NotificationType = "chat_message"
	NotifyProjectInvite       NotificationType = "project_invite"
	NotifyProjectAccepted     NotificationType = "project_accepted"
	NotifyProjectDeclined     NotificationType = "project_declined"
	NotifyProjectKicked       NotificationType = "project_kicked"
	NotifyProjectLeft         NotificationType = "project_left"
	NotifyProjectChat         NotificationType = "project_chat"
)

// Notification is fanned out to one recipient identity, scoped to one
// company.
type Notification struct {
	ID                uuid.UUID        `json:"id"`
	RecipientIdentity Identity         `json:"recipient_identity"`
	CompanyID         uuid.UUID        `json:"company_id"`
	Type              NotificationType `json:"notification_type"`
	Title             string           `json:"title"`
	Body              string           `json:"body"`
	IsRead            bool             `json:"is_read"`
	CreatedAt         time.Time        `json:"created_at"`
}
