package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
)

type NotificationService struct{ deps *deps }

// MarkNotificationRead implements spec §4.6 mark_notification_read.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, caller domain.Identity, notificationID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		note, err := tx.Notification.GetByID(ctx, notificationID)
		if err != nil {
			return err
		}
		if note == nil || note.RecipientIdentity != caller {
			return domain.ErrNotificationNotFound
		}
		return tx.Notification.MarkRead(ctx, notificationID)
	})
}

// MarkAllNotificationsRead implements spec §4.6 mark_all_notifications_read
// for the given company_id, not necessarily the caller's active company.
func (s *NotificationService) MarkAllNotificationsRead(ctx context.Context, caller domain.Identity, companyID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		if err := requireMembership(ctx, tx, caller, companyID); err != nil {
			return err
		}
		return tx.Notification.MarkAllRead(ctx, caller, companyID)
	})
}

// ClearNotifications implements spec §4.6 clear_notifications: deletes
// every read notification for the given company_id, not necessarily the
// caller's active company.
func (s *NotificationService) ClearNotifications(ctx context.Context, caller domain.Identity, companyID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		if err := requireMembership(ctx, tx, caller, companyID); err != nil {
			return err
		}
		return tx.Notification.ClearRead(ctx, caller, companyID)
	})
}

// requireMembership confirms caller holds any non-Pending membership in
// companyID, for operations scoped to a company other than the caller's
// active one.
func requireMembership(ctx context.Context, tx *repository.Repositories, caller domain.Identity, companyID uuid.UUID) error {
	membership, err := tx.Membership.Get(ctx, caller, companyID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Role == domain.RolePending {
		return domain.ErrNotPermitted
	}
	return nil
}

// ListNotifications is a read-only query, supplemented beyond the spec's
// mutating operations to back the notification-list endpoint. It returns the
// caller's notifications for the active company only.
func (s *NotificationService) ListNotifications(ctx context.Context, caller domain.Identity) ([]*domain.Notification, error) {
	ac, err := resolveAuthContext(ctx, s.deps.repos, caller)
	if err != nil {
		return nil, err
	}
	if !ac.HasActiveCompany() {
		return nil, nil
	}
	return s.deps.repos.Notification.ListForRecipient(ctx, caller, *ac.ActiveCompany)
}

// CountUnreadNotifications backs the supplemented unread-count endpoint.
func (s *NotificationService) CountUnreadNotifications(ctx context.Context, caller domain.Identity) (int, error) {
	ac, err := resolveAuthContext(ctx, s.deps.repos, caller)
	if err != nil {
		return 0, err
	}
	if !ac.HasActiveCompany() {
		return 0, nil
	}
	return s.deps.repos.Notification.CountUnread(ctx, caller, *ac.ActiveCompany)
}
