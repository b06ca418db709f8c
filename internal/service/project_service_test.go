package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/naperu/collabmesh/internal/domain"
)

// Scenario 6: full project lifecycle.
func TestProjectLifecycleScenario(t *testing.T) {
	svc, repos := newTestServices(t)
	ctx := context.Background()

	a, companyA := createCompanyHelper(t, svc, "proj-a", "Proj A", "proj-a-co")
	b, companyB := createCompanyHelper(t, svc, "proj-b", "Proj B", "proj-b-co")

	conn, err := svc.Connection.RequestConnection(ctx, a, companyB.ID, "let's work together")
	require.NoError(t, err)
	require.NoError(t, svc.Connection.AcceptConnection(ctx, b, conn.ID))

	project, err := svc.Project.CreateProject(ctx, a, "Canal House", "Renovation project")
	require.NoError(t, err)

	// invariant 4: owner's ProjectMember(Accepted) exists immediately.
	ownerMember, err := repos.ProjectMember.Get(ctx, project.ID, companyA.ID)
	require.NoError(t, err)
	require.NotNil(t, ownerMember)
	require.Equal(t, domain.ProjectMemberAccepted, ownerMember.Status)

	_, err = svc.Project.InviteToProject(ctx, a, project.ID, companyB.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Project.AcceptProjectInvite(ctx, b, project.ID))

	_, err = svc.Project.SendProjectChat(ctx, a, project.ID, "hello")
	require.NoError(t, err)

	chat, err := svc.Project.ListChat(ctx, b, project.ID)
	require.NoError(t, err)
	require.Len(t, chat, 1)
	require.Equal(t, "hello", chat[0].Text)

	require.NoError(t, svc.Project.KickFromProject(ctx, a, project.ID, companyB.ID))
	bMember, err := repos.ProjectMember.Get(ctx, project.ID, companyB.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectMemberKicked, bMember.Status)

	reinvited, err := svc.Project.InviteToProject(ctx, a, project.ID, companyB.ID)
	require.NoError(t, err)
	require.Equal(t, bMember.ID, reinvited.ID, "re-invite must reuse the existing row")
	require.Equal(t, domain.ProjectMemberInvited, reinvited.Status)

	require.NoError(t, svc.Project.DeclineProjectInvite(ctx, b, project.ID))
	declined, err := repos.ProjectMember.Get(ctx, project.ID, companyB.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectMemberDeclined, declined.Status)

	require.NoError(t, svc.Project.DeleteProject(ctx, a, project.ID))

	members, err := repos.ProjectMember.ListByCompany(ctx, companyA.ID)
	require.NoError(t, err)
	for _, m := range members {
		require.NotEqual(t, project.ID, m.ProjectID, "project cascade must remove all ProjectMember rows")
	}
	remainingChat, err := repos.ProjectChat.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Empty(t, remainingChat, "project cascade must remove all ProjectChat rows")

	gone, err := repos.Project.GetByID(ctx, project.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

// Invariant 5 / no-orphans: send_project_chat requires an Accepted
// ProjectMember row at commit time.
func TestSendProjectChatRequiresAcceptedMembership(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	a, _ := createCompanyHelper(t, svc, "chatreq-a", "Chat Req A", "chatreq-a-co")
	b, companyB := createCompanyHelper(t, svc, "chatreq-b", "Chat Req B", "chatreq-b-co")

	project, err := svc.Project.CreateProject(ctx, a, "Solo Project", "no collaborators yet")
	require.NoError(t, err)

	_, err = svc.Project.SendProjectChat(ctx, b, project.ID, "can I post here?")
	require.Error(t, err, "a company with no ProjectMember row must not be able to chat")

	conn, err := svc.Connection.RequestConnection(ctx, a, companyB.ID, "join my project")
	require.NoError(t, err)
	require.NoError(t, svc.Connection.AcceptConnection(ctx, b, conn.ID))
	_, err = svc.Project.InviteToProject(ctx, a, project.ID, companyB.ID)
	require.NoError(t, err)

	// Still Invited, not yet Accepted: chat must still be rejected.
	_, err = svc.Project.SendProjectChat(ctx, b, project.ID, "can I post now?")
	require.Error(t, err)

	require.NoError(t, svc.Project.AcceptProjectInvite(ctx, b, project.ID))
	_, err = svc.Project.SendProjectChat(ctx, b, project.ID, "now I can")
	require.NoError(t, err)
}
