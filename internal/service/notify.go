package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
	"github.com/naperu/collabmesh/internal/ws"
)

// notifier is the internal notification API used by every other module.
// It is invoked synchronously inside the same transaction as the
// triggering write, per spec §9, so a subscriber never observes the
// effect without the notification or vice versa.
type notifier struct {
	repos *repository.Repositories
	hub   *ws.Hub
}

func (n *notifier) emitToIdentity(ctx context.Context, recipient domain.Identity, companyID uuid.UUID, typ domain.NotificationType, title, body string) error {
	note := &domain.Notification{
		RecipientIdentity: recipient,
		CompanyID:         companyID,
		Type:              typ,
		Title:             title,
		Body:              body,
	}
	if err := n.repos.Notification.Create(ctx, note); err != nil {
		return err
	}
	if n.hub != nil {
		n.hub.BroadcastToCompany(companyID, ws.EventNotification, note)
	}
	return nil
}

// emitToManagers expands "all managers of company X" from Membership rows
// at emission time, per spec §4.7.
func (n *notifier) emitToManagers(ctx context.Context, companyID uuid.UUID, typ domain.NotificationType, title, body string) error {
	managers, err := n.repos.Membership.ListManagers(ctx, companyID)
	if err != nil {
		return err
	}
	for _, m := range managers {
		if err := n.emitToIdentity(ctx, m.Identity, companyID, typ, title, body); err != nil {
			return err
		}
	}
	return nil
}

// emitToManagersExcept is emitToManagers but skips one identity (the actor).
func (n *notifier) emitToManagersExcept(ctx context.Context, companyID uuid.UUID, except domain.Identity, typ domain.NotificationType, title, body string) error {
	managers, err := n.repos.Membership.ListManagers(ctx, companyID)
	if err != nil {
		return err
	}
	for _, m := range managers {
		if m.Identity == except {
			continue
		}
		if err := n.emitToIdentity(ctx, m.Identity, companyID, typ, title, body); err != nil {
			return err
		}
	}
	return nil
}

func bodyf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
