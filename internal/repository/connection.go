package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/naperu/collabmesh/internal/domain"
)

type ConnectionRepository struct{ db dbtx }

func scanConnection(row pgx.Row) (*domain.Connection, error) {
	c := &domain.Connection{}
	var requestedBy []byte
	err := row.Scan(&c.ID, &c.CompanyA, &c.CompanyB, &c.Status, &requestedBy, &c.RequestedByCompany,
		&c.InitialMessage, &c.BlockingCompanyID, &c.CreatedAt, &c.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	copy(c.RequestedBy[:], requestedBy)
	return c, nil
}

func (r *ConnectionRepository) GetByPair(ctx context.Context, a, b uuid.UUID) (*domain.Connection, error) {
	lo, hi := domain.CanonicalPair(a, b)
	row := r.db.QueryRow(ctx, `
		SELECT id, company_a, company_b, status, requested_by, requested_by_company, initial_message, blocking_company_id, created_at, updated_at
		FROM connections WHERE company_a = $1 AND company_b = $2
	`, lo, hi)
	return scanConnection(row)
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, company_a, company_b, status, requested_by, requested_by_company, initial_message, blocking_company_id, created_at, updated_at
		FROM connections WHERE id = $1
	`, id)
	return scanConnection(row)
}

func (r *ConnectionRepository) Create(ctx context.Context, c *domain.Connection) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO connections (company_a, company_b, status, requested_by, requested_by_company, initial_message, blocking_company_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, c.CompanyA, c.CompanyB, c.Status, c.RequestedBy[:], c.RequestedByCompany, c.InitialMessage, c.BlockingCompanyID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ConnectionStatus, blockingCompany *uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE connections SET status = $2, blocking_company_id = $3, updated_at = NOW() WHERE id = $1
	`, id, status, blockingCompany)
	return err
}

func (r *ConnectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM connections WHERE id = $1`, id)
	return err
}

func (r *ConnectionRepository) DeleteAllForCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM connections WHERE company_a = $1 OR company_b = $1`, companyID)
	return err
}

// ListByCompany returns every connection row a company is a party to,
// regardless of status, for the connections-list endpoint.
func (r *ConnectionRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Connection, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, company_a, company_b, status, requested_by, requested_by_company, initial_message, blocking_company_id, created_at, updated_at
		FROM connections WHERE company_a = $1 OR company_b = $1 ORDER BY updated_at DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ConnectionRepository) ListIDsForCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM connections WHERE company_a = $1 OR company_b = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type ConnectionChatRepository struct{ db dbtx }

func (r *ConnectionChatRepository) Create(ctx context.Context, m *domain.ConnectionChat) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO connection_chats (connection_id, sender, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, m.ConnectionID, m.Sender[:], m.Text).Scan(&m.ID, &m.CreatedAt)
}

func (r *ConnectionChatRepository) ListByConnection(ctx context.Context, connectionID uuid.UUID) ([]*domain.ConnectionChat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, connection_id, sender, text, created_at
		FROM connection_chats WHERE connection_id = $1 ORDER BY created_at
	`, connectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ConnectionChat
	for rows.Next() {
		m := &domain.ConnectionChat{}
		var sender []byte
		if err := rows.Scan(&m.ID, &m.ConnectionID, &sender, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		copy(m.Sender[:], sender)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ConnectionChatRepository) DeleteByConnection(ctx context.Context, connectionID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM connection_chats WHERE connection_id = $1`, connectionID)
	return err
}
