package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
)

type ProjectService struct{ deps *deps }

// ListProjects is a supplemented read listing every project-membership row
// (any status) for the caller's active company.
func (s *ProjectService) ListProjects(ctx context.Context, caller domain.Identity) ([]*domain.ProjectMember, error) {
	ac, err := resolveAuthContext(ctx, s.deps.repos, caller)
	if err != nil {
		return nil, err
	}
	if !ac.HasActiveCompany() {
		return nil, nil
	}
	return s.deps.repos.ProjectMember.ListByCompany(ctx, *ac.ActiveCompany)
}

// GetProject is a supplemented read backing the project-detail view.
func (s *ProjectService) GetProject(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	return s.deps.repos.Project.GetByID(ctx, projectID)
}

// ListProjectMembers is a supplemented read backing the project-detail view.
func (s *ProjectService) ListProjectMembers(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMember, error) {
	return s.deps.repos.ProjectMember.ListByProject(ctx, projectID)
}

// ListChat is a supplemented read backing the project chat thread view.
func (s *ProjectService) ListChat(ctx context.Context, caller domain.Identity, projectID uuid.UUID) ([]*domain.ProjectChat, error) {
	ac, err := resolveAuthContext(ctx, s.deps.repos, caller)
	if err != nil {
		return nil, err
	}
	if !ac.HasActiveCompany() {
		return nil, domain.ErrNotAProjectMember
	}
	if _, _, err := loadProjectMembership(ctx, s.deps.repos, projectID, *ac.ActiveCompany); err != nil {
		return nil, err
	}
	return s.deps.repos.ProjectChat.ListByProject(ctx, projectID)
}

// CreateProject implements spec §4.5 create_project. The creating company
// is auto-enrolled as an Accepted member, mirroring how the teacher's
// resource-owner pattern always seeds the creator as a participant.
func (s *ProjectService) CreateProject(ctx context.Context, caller domain.Identity, name, description string) (*domain.Project, error) {
	name, err := domain.ValidateLen("project name", name, 1, 80)
	if err != nil {
		return nil, err
	}
	description, err = domain.ValidateLen("description", description, 0, 500)
	if err != nil {
		return nil, err
	}

	var out *domain.Project
	err = repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		project := &domain.Project{OwnerCompanyID: *ac.ActiveCompany, Name: name, Description: description}
		if err := tx.Project.Create(ctx, project); err != nil {
			return err
		}
		member := &domain.ProjectMember{ProjectID: project.ID, CompanyID: *ac.ActiveCompany, Status: domain.ProjectMemberAccepted}
		if err := tx.ProjectMember.Create(ctx, member); err != nil {
			return err
		}
		out = project
		return nil
	})
	return out, err
}

// InviteToProject implements spec §4.5 invite_to_project. The owner
// company may only invite a company it shares an Accepted Connection with.
func (s *ProjectService) InviteToProject(ctx context.Context, caller domain.Identity, projectID uuid.UUID, target uuid.UUID) (*domain.ProjectMember, error) {
	var out *domain.ProjectMember
	err := repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		project, err := tx.Project.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.ErrProjectNotFound
		}
		if project.OwnerCompanyID != *ac.ActiveCompany {
			return domain.ErrOnlyOwnerCanInvite
		}
		if target == project.OwnerCompanyID {
			return domain.ErrCannotInviteOwnCompany
		}

		conn, err := tx.Connection.GetByPair(ctx, project.OwnerCompanyID, target)
		if err != nil {
			return err
		}
		if conn == nil || conn.Status != domain.ConnectionAccepted {
			return domain.ErrNoAcceptedConnection
		}

		existing, err := tx.ProjectMember.Get(ctx, projectID, target)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == domain.ProjectMemberInvited {
			return domain.ErrAlreadyInvited
		}
		if existing != nil && existing.Status == domain.ProjectMemberAccepted {
			return domain.ErrAlreadyMember
		}

		var member *domain.ProjectMember
		if existing != nil {
			if err := tx.ProjectMember.UpdateStatus(ctx, existing.ID, domain.ProjectMemberInvited); err != nil {
				return err
			}
			member = existing
			member.Status = domain.ProjectMemberInvited
		} else {
			member = &domain.ProjectMember{ProjectID: projectID, CompanyID: target, Status: domain.ProjectMemberInvited}
			if err := tx.ProjectMember.Create(ctx, member); err != nil {
				return err
			}
		}

		if err := s.deps.notifier(tx).emitToManagers(ctx, target,
			domain.NotifyProjectInvite, "Project invite",
			bodyf("%s invited your company to project %q", ac.Account.FullName, project.Name)); err != nil {
			return err
		}
		out = member
		return nil
	})
	return out, err
}

// AcceptProjectInvite implements spec §4.5 accept_project_invite.
func (s *ProjectService) AcceptProjectInvite(ctx context.Context, caller domain.Identity, projectID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		project, member, err := loadProjectMembership(ctx, tx, projectID, *ac.ActiveCompany)
		if err != nil {
			return err
		}
		if member.Status != domain.ProjectMemberInvited {
			return domain.ErrNoPendingInvite
		}

		if err := tx.ProjectMember.UpdateStatus(ctx, member.ID, domain.ProjectMemberAccepted); err != nil {
			return err
		}
		return s.deps.notifier(tx).emitToManagers(ctx, project.OwnerCompanyID,
			domain.NotifyProjectAccepted, "Project invite accepted",
			bodyf("%s accepted the invite to %q", ac.Account.FullName, project.Name))
	})
}

// DeclineProjectInvite implements spec §4.5 decline_project_invite.
func (s *ProjectService) DeclineProjectInvite(ctx context.Context, caller domain.Identity, projectID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		project, member, err := loadProjectMembership(ctx, tx, projectID, *ac.ActiveCompany)
		if err != nil {
			return err
		}
		if member.Status != domain.ProjectMemberInvited {
			return domain.ErrNoPendingInvite
		}

		if err := tx.ProjectMember.UpdateStatus(ctx, member.ID, domain.ProjectMemberDeclined); err != nil {
			return err
		}
		return s.deps.notifier(tx).emitToManagers(ctx, project.OwnerCompanyID,
			domain.NotifyProjectDeclined, "Project invite declined",
			bodyf("%s declined the invite to %q", ac.Account.FullName, project.Name))
	})
}

// KickFromProject implements spec §4.5 kick_from_project: only the
// project's owner company may remove another member.
func (s *ProjectService) KickFromProject(ctx context.Context, caller domain.Identity, projectID uuid.UUID, target uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		project, err := tx.Project.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.ErrProjectNotFound
		}
		if project.OwnerCompanyID != *ac.ActiveCompany {
			return domain.ErrNotPermitted
		}
		if target == project.OwnerCompanyID {
			return domain.ErrCannotKickSelf
		}

		member, err := tx.ProjectMember.Get(ctx, projectID, target)
		if err != nil {
			return err
		}
		if member == nil || member.Status != domain.ProjectMemberAccepted {
			return domain.ErrNotAProjectMember
		}

		if err := tx.ProjectMember.UpdateStatus(ctx, member.ID, domain.ProjectMemberKicked); err != nil {
			return err
		}
		return s.deps.notifier(tx).emitToManagers(ctx, target,
			domain.NotifyProjectKicked, "Removed from project",
			bodyf("your company was removed from project %q", project.Name))
	})
}

// LeaveProject implements spec §4.5 leave_project: the owner company
// cannot leave its own project — it must delete_project instead.
func (s *ProjectService) LeaveProject(ctx context.Context, caller domain.Identity, projectID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		project, member, err := loadProjectMembership(ctx, tx, projectID, *ac.ActiveCompany)
		if err != nil {
			return err
		}
		if project.OwnerCompanyID == *ac.ActiveCompany {
			return domain.ErrNotPermitted
		}
		if member.Status != domain.ProjectMemberAccepted {
			return domain.ErrNotAProjectMember
		}

		if err := tx.ProjectMember.UpdateStatus(ctx, member.ID, domain.ProjectMemberLeft); err != nil {
			return err
		}
		return s.deps.notifier(tx).emitToManagers(ctx, project.OwnerCompanyID,
			domain.NotifyProjectLeft, "Company left project",
			bodyf("%s's company left project %q", ac.Account.FullName, project.Name))
	})
}

// DeleteProject implements spec §4.5 delete_project: only the owner
// company may delete, cascading members and chat history.
func (s *ProjectService) DeleteProject(ctx context.Context, caller domain.Identity, projectID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		project, err := tx.Project.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.ErrProjectNotFound
		}
		if project.OwnerCompanyID != *ac.ActiveCompany {
			return domain.ErrNotPermitted
		}
		return s.deps.cascade(tx).onProjectDelete(ctx, projectID)
	})
}

// SendProjectChat implements spec §4.5 send_project_chat: only Accepted
// members may post.
func (s *ProjectService) SendProjectChat(ctx context.Context, caller domain.Identity, projectID uuid.UUID, text string) (*domain.ProjectChat, error) {
	text, err := domain.ValidateLen("text", text, 1, 500)
	if err != nil {
		return nil, err
	}

	var out *domain.ProjectChat
	err = repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.IsActiveMember() {
			return domain.ErrNotPermitted
		}

		_, member, err := loadProjectMembership(ctx, tx, projectID, *ac.ActiveCompany)
		if err != nil {
			return err
		}
		if member.Status != domain.ProjectMemberAccepted {
			return domain.ErrNotAProjectMember
		}

		msg := &domain.ProjectChat{ProjectID: projectID, Sender: ac.Identity, Text: text}
		if err := tx.ProjectChat.Create(ctx, msg); err != nil {
			return err
		}

		peers, err := tx.ProjectMember.ListAcceptedByProject(ctx, projectID)
		if err != nil {
			return err
		}
		for _, peer := range peers {
			if peer.CompanyID == *ac.ActiveCompany {
				continue
			}
			if err := s.deps.notifier(tx).emitToManagers(ctx, peer.CompanyID,
				domain.NotifyProjectChat, "New project message",
				bodyf("%s: %s", ac.Account.FullName, text)); err != nil {
				return err
			}
		}
		out = msg
		return nil
	})
	return out, err
}

func loadProjectMembership(ctx context.Context, tx *repository.Repositories, projectID, companyID uuid.UUID) (*domain.Project, *domain.ProjectMember, error) {
	project, err := tx.Project.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, domain.ErrProjectNotFound
	}
	member, err := tx.ProjectMember.Get(ctx, projectID, companyID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		return nil, nil, domain.ErrNotAProjectMember
	}
	return project, member, nil
}
