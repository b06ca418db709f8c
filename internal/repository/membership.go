package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/naperu/collabmesh/internal/domain"
)

type MembershipRepository struct{ db dbtx }

func scanMembership(row pgx.Row) (*domain.Membership, error) {
	m := &domain.Membership{}
	var identity []byte
	err := row.Scan(&m.ID, &identity, &m.CompanyID, &m.Role, &m.JoinedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	copy(m.Identity[:], identity)
	return m, nil
}

func (r *MembershipRepository) Get(ctx context.Context, id domain.Identity, companyID uuid.UUID) (*domain.Membership, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, identity, company_id, role, joined_at
		FROM memberships WHERE identity = $1 AND company_id = $2
	`, id[:], companyID)
	return scanMembership(row)
}

func (r *MembershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Membership, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, identity, company_id, role, joined_at
		FROM memberships WHERE id = $1
	`, id)
	return scanMembership(row)
}

func (r *MembershipRepository) GetOwner(ctx context.Context, companyID uuid.UUID) (*domain.Membership, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, identity, company_id, role, joined_at
		FROM memberships WHERE company_id = $1 AND role = 'owner'
	`, companyID)
	return scanMembership(row)
}

func (r *MembershipRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, identity, company_id, role, joined_at
		FROM memberships WHERE company_id = $1 ORDER BY joined_at
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListManagers returns memberships with role in {owner, admin} for fan-out.
func (r *MembershipRepository) ListManagers(ctx context.Context, companyID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, identity, company_id, role, joined_at
		FROM memberships WHERE company_id = $1 AND role IN ('owner', 'admin')
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListByIdentity returns every company membership an identity holds,
// across all companies, for the account's company-switcher view.
func (r *MembershipRepository) ListByIdentity(ctx context.Context, id domain.Identity) ([]*domain.Membership, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, identity, company_id, role, joined_at
		FROM memberships WHERE identity = $1 ORDER BY joined_at
	`, id[:])
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AnyNonPendingFor returns the smallest-id non-Pending membership for an
// identity, used to re-pick active_company_id when one is removed.
func (r *MembershipRepository) AnyNonPendingFor(ctx context.Context, id domain.Identity) (*domain.Membership, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, identity, company_id, role, joined_at
		FROM memberships WHERE identity = $1 AND role != 'pending' ORDER BY id LIMIT 1
	`, id[:])
	return scanMembership(row)
}

func (r *MembershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO memberships (identity, company_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`, m.Identity[:], m.CompanyID, m.Role).Scan(&m.ID, &m.JoinedAt)
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	_, err := r.db.Exec(ctx, `UPDATE memberships SET role = $2 WHERE id = $1`, id, role)
	return err
}

func (r *MembershipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	return err
}

type InviteCodeRepository struct{ db dbtx }

func scanInviteCode(row pgx.Row) (*domain.InviteCode, error) {
	ic := &domain.InviteCode{}
	var createdBy []byte
	err := row.Scan(&ic.Code, &ic.CompanyID, &createdBy, &ic.MaxUses, &ic.UsesRemaining, &ic.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	copy(ic.CreatedBy[:], createdBy)
	return ic, nil
}

func (r *InviteCodeRepository) Get(ctx context.Context, code string) (*domain.InviteCode, error) {
	row := r.db.QueryRow(ctx, `
		SELECT code, company_id, created_by, max_uses, uses_remaining, created_at
		FROM invite_codes WHERE code = $1
	`, code)
	return scanInviteCode(row)
}

// Exists checks whether an invite code is already taken, for rejection
// sampling by the InviteCodeGen oracle.
func (r *InviteCodeRepository) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invite_codes WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *InviteCodeRepository) Create(ctx context.Context, ic *domain.InviteCode) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO invite_codes (code, company_id, created_by, max_uses, uses_remaining)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, ic.Code, ic.CompanyID, ic.CreatedBy[:], ic.MaxUses, ic.UsesRemaining).Scan(&ic.CreatedAt)
}

func (r *InviteCodeRepository) DecrementUse(ctx context.Context, code string) (int, error) {
	var remaining int
	err := r.db.QueryRow(ctx, `
		UPDATE invite_codes SET uses_remaining = uses_remaining - 1 WHERE code = $1
		RETURNING uses_remaining
	`, code).Scan(&remaining)
	return remaining, err
}

func (r *InviteCodeRepository) Delete(ctx context.Context, code string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM invite_codes WHERE code = $1`, code)
	return err
}

func (r *InviteCodeRepository) DeleteAllForCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM invite_codes WHERE company_id = $1`, companyID)
	return err
}
