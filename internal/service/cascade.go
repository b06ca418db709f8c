package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/naperu/collabmesh/internal/repository"
)

// cascade is the single declarative dispatcher for parent-row deletions,
// per spec §9: "implement cascade as a single declarative table... do not
// scatter deletion logic across per-operation handlers." Every entry point
// below runs inside the caller's transaction and deletes strictly in
// dependency order before the parent row itself is removed.
type cascade struct {
	repos *repository.Repositories
}

// onCompanyDelete removes every row the spec's §4.9 table lists for a
// deleted Company, then the Company row itself.
func (c *cascade) onCompanyDelete(ctx context.Context, companyID uuid.UUID) error {
	projectIDs, err := c.repos.Project.DeleteAllForCompany(ctx, companyID)
	if err != nil {
		return err
	}
	for _, pid := range projectIDs {
		if err := c.onProjectDelete(ctx, pid); err != nil {
			return err
		}
	}
	if err := c.repos.ProjectMember.DeleteByCompany(ctx, companyID); err != nil {
		return err
	}

	connIDs, err := c.repos.Connection.ListIDsForCompany(ctx, companyID)
	if err != nil {
		return err
	}
	for _, cid := range connIDs {
		if err := c.repos.ConnChat.DeleteByConnection(ctx, cid); err != nil {
			return err
		}
	}
	if err := c.repos.Connection.DeleteAllForCompany(ctx, companyID); err != nil {
		return err
	}

	if err := c.repos.Notification.DeleteByCompany(ctx, companyID); err != nil {
		return err
	}

	memberships, err := c.repos.Membership.ListByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if err := c.repos.Membership.Delete(ctx, m.ID); err != nil {
			return err
		}
	}

	if err := c.repos.InviteCode.DeleteAllForCompany(ctx, companyID); err != nil {
		return err
	}

	if err := c.repos.Capability.DeleteByCompany(ctx, companyID); err != nil {
		return err
	}

	if err := c.repos.Account.ClearActiveCompanyFor(ctx, companyID); err != nil {
		return err
	}

	return c.repos.Company.Delete(ctx, companyID)
}

// onConnectionDelete removes ConnectionChat rows for a deleted Connection.
// Does not touch Projects, per spec §4.9.
func (c *cascade) onConnectionDelete(ctx context.Context, connectionID uuid.UUID) error {
	if err := c.repos.ConnChat.DeleteByConnection(ctx, connectionID); err != nil {
		return err
	}
	return c.repos.Connection.Delete(ctx, connectionID)
}

// onProjectDelete removes ProjectMember and ProjectChat rows for a project,
// then the project itself.
func (c *cascade) onProjectDelete(ctx context.Context, projectID uuid.UUID) error {
	if err := c.repos.ProjectChat.DeleteByProject(ctx, projectID); err != nil {
		return err
	}
	if err := c.repos.ProjectMember.DeleteByProject(ctx, projectID); err != nil {
		return err
	}
	return c.repos.Project.Delete(ctx, projectID)
}
