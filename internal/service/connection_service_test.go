package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/naperu/collabmesh/internal/domain"
)

func createCompanyHelper(t *testing.T, svc *Services, label, name, slug string) (domain.Identity, *domain.Company) {
	t.Helper()
	ctx := context.Background()
	owner := identityFor(label)
	_, err := svc.Account.CreateAccount(ctx, owner, name, name, label+"@x.test")
	require.NoError(t, err)
	company, err := svc.Account.CreateCompany(ctx, owner, name, slug, "Rotterdam, NL")
	require.NoError(t, err)
	return owner, company
}

// Scenario 4 / Ghost invisibility round-trip.
func TestGhostingHidesBlock(t *testing.T) {
	svc, repos := newTestServices(t)
	ctx := context.Background()

	a, companyA := createCompanyHelper(t, svc, "ghost-a", "Company A", "ghost-a-co")
	b, companyB := createCompanyHelper(t, svc, "ghost-b", "Company B", "ghost-b-co")

	require.NoError(t, svc.Connection.BlockCompany(ctx, b, companyA.ID))

	conn, err := svc.Connection.RequestConnection(ctx, a, companyB.ID, "hi")
	require.NoError(t, err)
	require.Nil(t, conn, "ghosted request must return no row")

	lo, hi := domain.CanonicalPair(companyA.ID, companyB.ID)
	stored, err := repos.Connection.GetByPair(ctx, lo, hi)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, domain.ConnectionBlocked, stored.Status)
	require.NotNil(t, stored.BlockingCompanyID)
	require.Equal(t, companyB.ID, *stored.BlockingCompanyID)

	// invariant 3: blocking_company_id is one of the two parties.
	require.True(t, stored.BlockingCompanyID != nil && (*stored.BlockingCompanyID == stored.CompanyA || *stored.BlockingCompanyID == stored.CompanyB))

	aConns, err := svc.Connection.ListConnections(ctx, a)
	require.NoError(t, err)
	for _, c := range aConns {
		require.NotEqual(t, domain.ConnectionPending, c.Status, "A must never see a Pending row from the ghosted request")
	}
}

// Connection symmetry round-trip.
func TestConnectionSymmetryAfterAccept(t *testing.T) {
	svc, repos := newTestServices(t)
	ctx := context.Background()

	a, companyA := createCompanyHelper(t, svc, "sym-a", "Sym A", "sym-a-co")
	b, companyB := createCompanyHelper(t, svc, "sym-b", "Sym B", "sym-b-co")

	conn, err := svc.Connection.RequestConnection(ctx, a, companyB.ID, "let's connect")
	require.NoError(t, err)
	require.NotNil(t, conn)

	// invariant 2: canonical ordering.
	require.True(t, conn.CompanyA.String() < conn.CompanyB.String())

	require.NoError(t, svc.Connection.AcceptConnection(ctx, b, conn.ID))

	aView, err := repos.Connection.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ConnectionAccepted, aView.Status)

	_ = companyA
}

// Scenario 5: chat survives the Pending -> Accepted transition.
func TestConnectionChatPreservedAcrossAccept(t *testing.T) {
	svc, repos := newTestServices(t)
	ctx := context.Background()

	a, _ := createCompanyHelper(t, svc, "chat-a", "Chat A", "chat-a-co")
	b, companyB := createCompanyHelper(t, svc, "chat-b", "Chat B", "chat-b-co")

	conn, err := svc.Connection.RequestConnection(ctx, a, companyB.ID, "hi")
	require.NoError(t, err)

	_, err = svc.Connection.SendConnectionChat(ctx, a, conn.ID, "first")
	require.NoError(t, err)
	_, err = svc.Connection.SendConnectionChat(ctx, a, conn.ID, "second")
	require.NoError(t, err)

	msgs, err := repos.ConnChat.ListByConnection(ctx, conn.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	require.NoError(t, svc.Connection.AcceptConnection(ctx, b, conn.ID))

	msgs, err = repos.ConnChat.ListByConnection(ctx, conn.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	_, err = svc.Connection.SendConnectionChat(ctx, a, conn.ID, "third")
	require.NoError(t, err)

	msgs, err = repos.ConnChat.ListByConnection(ctx, conn.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
}

// Invariant 10: notification ownership — only the recipient may mark/clear.
func TestNotificationOwnershipEnforced(t *testing.T) {
	svc, repos := newTestServices(t)
	ctx := context.Background()

	a, companyA := createCompanyHelper(t, svc, "notif-a", "Notif A", "notif-a-co")
	_, companyB := createCompanyHelper(t, svc, "notif-b", "Notif B", "notif-b-co")

	_, err := svc.Connection.RequestConnection(ctx, a, companyB.ID, "hi")
	require.NoError(t, err)

	notes, err := repos.Notification.ListForRecipient(ctx, identityFor("notif-b"), companyB.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	err = svc.Notification.MarkNotificationRead(ctx, a, notes[0].ID)
	require.Error(t, err, "company A must not be able to mark company B's notification read")

	_ = companyA
}
