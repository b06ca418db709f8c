package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/naperu/collabmesh/internal/domain"
)

type NotificationRepository struct{ db dbtx }

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO notifications (recipient_identity, company_id, notification_type, title, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_read, created_at
	`, n.RecipientIdentity[:], n.CompanyID, n.Type, n.Title, n.Body).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	n := &domain.Notification{}
	var recipient []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, recipient_identity, company_id, notification_type, title, body, is_read, created_at
		FROM notifications WHERE id = $1
	`, id).Scan(&n.ID, &recipient, &n.CompanyID, &n.Type, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	copy(n.RecipientIdentity[:], recipient)
	return n, nil
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, id domain.Identity, companyID uuid.UUID) ([]*domain.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, recipient_identity, company_id, notification_type, title, body, is_read, created_at
		FROM notifications WHERE recipient_identity = $1 AND company_id = $2 ORDER BY created_at DESC
	`, id[:], companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		var recipient []byte
		if err := rows.Scan(&n.ID, &recipient, &n.CompanyID, &n.Type, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		copy(n.RecipientIdentity[:], recipient)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, id domain.Identity, companyID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE recipient_identity = $1 AND company_id = $2 AND is_read = FALSE
	`, id[:], companyID).Scan(&count)
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	return err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, id domain.Identity, companyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE recipient_identity = $1 AND company_id = $2
	`, id[:], companyID)
	return err
}

func (r *NotificationRepository) ClearRead(ctx context.Context, id domain.Identity, companyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM notifications WHERE recipient_identity = $1 AND company_id = $2 AND is_read = TRUE
	`, id[:], companyID)
	return err
}

func (r *NotificationRepository) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE company_id = $1`, companyID)
	return err
}
