package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/naperu/collabmesh/internal/domain"
)

type AccountRepository struct{ db dbtx }

func (r *AccountRepository) GetByIdentity(ctx context.Context, id domain.Identity) (*domain.Account, error) {
	a := &domain.Account{}
	var identity []byte
	var active *uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT identity, full_name, nickname, email, active_company_id, created_at
		FROM accounts WHERE identity = $1
	`, id[:]).Scan(&identity, &a.FullName, &a.Nickname, &a.Email, &active, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	copy(a.Identity[:], identity)
	a.ActiveCompanyID = active
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (identity, full_name, nickname, email, active_company_id)
		VALUES ($1, $2, $3, $4, $5)
	`, a.Identity[:], a.FullName, a.Nickname, a.Email, a.ActiveCompanyID)
	return err
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id domain.Identity, nickname, email string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts SET nickname = $2, email = $3 WHERE identity = $1
	`, id[:], nickname, email)
	return err
}

func (r *AccountRepository) SetActiveCompany(ctx context.Context, id domain.Identity, companyID *uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts SET active_company_id = $2 WHERE identity = $1
	`, id[:], companyID)
	return err
}

// ClearActiveCompanyFor nulls active_company_id for every account currently
// pointed at companyID — used by the company cascade.
func (r *AccountRepository) ClearActiveCompanyFor(ctx context.Context, companyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts SET active_company_id = NULL WHERE active_company_id = $1
	`, companyID)
	return err
}

type CompanyRepository struct{ db dbtx }

func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	c := &domain.Company{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, location, bio, kvk_number, is_public, created_at
		FROM companies WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Location, &c.Bio, &c.KvkNumber, &c.IsPublic, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *CompanyRepository) GetBySlug(ctx context.Context, slug string) (*domain.Company, error) {
	c := &domain.Company{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, location, bio, kvk_number, is_public, created_at
		FROM companies WHERE slug = $1
	`, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Location, &c.Bio, &c.KvkNumber, &c.IsPublic, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO companies (name, slug, location, bio, kvk_number, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, c.Name, c.Slug, c.Location, c.Bio, c.KvkNumber, c.IsPublic).Scan(&c.ID, &c.CreatedAt)
}

func (r *CompanyRepository) Update(ctx context.Context, c *domain.Company) error {
	_, err := r.db.Exec(ctx, `
		UPDATE companies SET name = $2, slug = $3, location = $4, bio = $5, kvk_number = $6, is_public = $7
		WHERE id = $1
	`, c.ID, c.Name, c.Slug, c.Location, c.Bio, c.KvkNumber, c.IsPublic)
	return err
}

func (r *CompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	return err
}

func (r *CompanyRepository) ListPublic(ctx context.Context) ([]*domain.Company, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug, location, bio, kvk_number, is_public, created_at
		FROM companies WHERE is_public = TRUE ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Company
	for rows.Next() {
		c := &domain.Company{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Location, &c.Bio, &c.KvkNumber, &c.IsPublic, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type CapabilityRepository struct{ db dbtx }

func (r *CapabilityRepository) GetByCompanyID(ctx context.Context, companyID uuid.UUID) (*domain.Capability, error) {
	cap := &domain.Capability{}
	err := r.db.QueryRow(ctx, `
		SELECT company_id, can_install, has_cnc, has_large_format, has_bucket_truck
		FROM capabilities WHERE company_id = $1
	`, companyID).Scan(&cap.CompanyID, &cap.CanInstall, &cap.HasCNC, &cap.HasLargeFormat, &cap.HasBucketTruck)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return cap, err
}

func (r *CapabilityRepository) Create(ctx context.Context, companyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `INSERT INTO capabilities (company_id) VALUES ($1)`, companyID)
	return err
}

func (r *CapabilityRepository) Update(ctx context.Context, cap *domain.Capability) error {
	_, err := r.db.Exec(ctx, `
		UPDATE capabilities SET can_install = $2, has_cnc = $3, has_large_format = $4, has_bucket_truck = $5
		WHERE company_id = $1
	`, cap.CompanyID, cap.CanInstall, cap.HasCNC, cap.HasLargeFormat, cap.HasBucketTruck)
	return err
}

func (r *CapabilityRepository) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM capabilities WHERE company_id = $1`, companyID)
	return err
}
