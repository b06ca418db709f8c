package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/naperu/collabmesh/internal/domain"
)

type ProjectRepository struct{ db dbtx }

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	p := &domain.Project{}
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_company_id, name, description, created_at
		FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.OwnerCompanyID, &p.Name, &p.Description, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO projects (owner_company_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.OwnerCompanyID, p.Name, p.Description).Scan(&p.ID, &p.CreatedAt)
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

// DeleteAllForCompany deletes every project owned by companyID, removing the
// projects' chats and member rows first, and returns the deleted project ids.
func (r *ProjectRepository) DeleteAllForCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := r.db.Exec(ctx, `DELETE FROM project_chats WHERE project_id IN (SELECT id FROM projects WHERE owner_company_id = $1)`, companyID); err != nil {
		return nil, err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM project_members WHERE project_id IN (SELECT id FROM projects WHERE owner_company_id = $1)`, companyID); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `DELETE FROM projects WHERE owner_company_id = $1 RETURNING id`, companyID)
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

type ProjectMemberRepository struct{ db dbtx }

func scanProjectMember(row pgx.Row) (*domain.ProjectMember, error) {
	pm := &domain.ProjectMember{}
	err := row.Scan(&pm.ID, &pm.ProjectID, &pm.CompanyID, &pm.Status, &pm.InvitedAt, &pm.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return pm, err
}

func (r *ProjectMemberRepository) Get(ctx context.Context, projectID, companyID uuid.UUID) (*domain.ProjectMember, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, project_id, company_id, status, invited_at, updated_at
		FROM project_members WHERE project_id = $1 AND company_id = $2
	`, projectID, companyID)
	return scanProjectMember(row)
}

func (r *ProjectMemberRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMember, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, company_id, status, invited_at, updated_at
		FROM project_members WHERE project_id = $1
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProjectMember
	for rows.Next() {
		pm, err := scanProjectMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

func (r *ProjectMemberRepository) ListAcceptedByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMember, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, company_id, status, invited_at, updated_at
		FROM project_members WHERE project_id = $1 AND status = 'accepted'
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProjectMember
	for rows.Next() {
		pm, err := scanProjectMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

// ListByCompany returns every project-membership row for a company, across
// every project, for the "my projects" listing endpoint.
func (r *ProjectMemberRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.ProjectMember, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, company_id, status, invited_at, updated_at
		FROM project_members WHERE company_id = $1 ORDER BY invited_at DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProjectMember
	for rows.Next() {
		pm, err := scanProjectMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

func (r *ProjectMemberRepository) Create(ctx context.Context, pm *domain.ProjectMember) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO project_members (project_id, company_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, invited_at, updated_at
	`, pm.ProjectID, pm.CompanyID, pm.Status).Scan(&pm.ID, &pm.InvitedAt, &pm.UpdatedAt)
}

func (r *ProjectMemberRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectMemberStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE project_members SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	return err
}

func (r *ProjectMemberRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM project_members WHERE project_id = $1`, projectID)
	return err
}

func (r *ProjectMemberRepository) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM project_members WHERE company_id = $1`, companyID)
	return err
}

type ProjectChatRepository struct{ db dbtx }

func (r *ProjectChatRepository) Create(ctx context.Context, m *domain.ProjectChat) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO project_chats (project_id, sender, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, m.ProjectID, m.Sender[:], m.Text).Scan(&m.ID, &m.CreatedAt)
}

func (r *ProjectChatRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectChat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, sender, text, created_at
		FROM project_chats WHERE project_id = $1 ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProjectChat
	for rows.Next() {
		m := &domain.ProjectChat{}
		var sender []byte
		if err := rows.Scan(&m.ID, &m.ProjectID, &sender, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		copy(m.Sender[:], sender)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ProjectChatRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM project_chats WHERE project_id = $1`, projectID)
	return err
}
