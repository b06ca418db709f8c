package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/naperu/collabmesh/internal/domain"
)

// Scenario 2: Join flow.
func TestJoinCompanyScenario(t *testing.T) {
	svc, repos := newTestServices(t)
	ctx := context.Background()
	alice := identityFor("join-alice")
	bob := identityFor("join-bob")

	_, err := svc.Account.CreateAccount(ctx, alice, "Alice", "Alice", "alice@a.test")
	require.NoError(t, err)
	_, err = svc.Account.CreateAccount(ctx, bob, "Bob", "Bob", "bob@b.test")
	require.NoError(t, err)

	company, err := svc.Account.CreateCompany(ctx, alice, "Alpha Signs", "alpha-signs", "Amsterdam, NL")
	require.NoError(t, err)

	invite, err := svc.Membership.GenerateInviteCode(ctx, alice, 5)
	require.NoError(t, err)

	membership, err := svc.Membership.JoinCompany(ctx, bob, invite.Code)
	require.NoError(t, err)
	require.Equal(t, domain.RolePending, membership.Role)
	require.Equal(t, company.ID, membership.CompanyID)

	reloaded, err := repos.InviteCode.Get(ctx, invite.Code)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	require.Equal(t, 4, reloaded.UsesRemaining)

	notes, err := repos.Notification.ListForRecipient(ctx, alice, company.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, domain.NotifyMemberJoined, notes[0].Type)
}

// Invite lifecycle round-trip: n uses consume and delete the code exactly
// on the nth successful join.
func TestInviteCodeLifecycleExhaustion(t *testing.T) {
	svc, repos := newTestServices(t)
	ctx := context.Background()
	owner := identityFor("lifecycle-owner")

	_, err := svc.Account.CreateAccount(ctx, owner, "Owner", "Owner", "owner@a.test")
	require.NoError(t, err)
	_, err = svc.Account.CreateCompany(ctx, owner, "Gamma Co", "gamma-co", "Breda, NL")
	require.NoError(t, err)

	invite, err := svc.Membership.GenerateInviteCode(ctx, owner, 2)
	require.NoError(t, err)

	for i, label := range []string{"lifecycle-j1", "lifecycle-j2"} {
		joiner := identityFor(label)
		_, err := svc.Account.CreateAccount(ctx, joiner, "Joiner", "Joiner", label+"@x.test")
		require.NoError(t, err)
		_, err = svc.Membership.JoinCompany(ctx, joiner, invite.Code)
		require.NoError(t, err)

		reloaded, err := repos.InviteCode.Get(ctx, invite.Code)
		require.NoError(t, err)
		if i == 0 {
			require.NotNil(t, reloaded)
			require.Equal(t, 1, reloaded.UsesRemaining)
		} else {
			require.Nil(t, reloaded, "code must be deleted on its final use")
		}
	}
}

// Scenario 3: Ownership transfer, and its involution round-trip property.
func TestOwnershipTransferScenario(t *testing.T) {
	svc, repos := newTestServices(t)
	ctx := context.Background()
	alice := identityFor("transfer-alice")
	carol := identityFor("transfer-carol")

	_, err := svc.Account.CreateAccount(ctx, alice, "Alice", "Alice", "alice@a.test")
	require.NoError(t, err)
	_, err = svc.Account.CreateAccount(ctx, carol, "Carol", "Carol", "carol@a.test")
	require.NoError(t, err)

	company, err := svc.Account.CreateCompany(ctx, alice, "Delta Co", "delta-co", "Tilburg, NL")
	require.NoError(t, err)

	invite, err := svc.Membership.GenerateInviteCode(ctx, alice, 1)
	require.NoError(t, err)
	carolMembership, err := svc.Membership.JoinCompany(ctx, carol, invite.Code)
	require.NoError(t, err)

	require.NoError(t, svc.Membership.UpdateUserRole(ctx, alice, carolMembership.ID, domain.RoleAdmin))
	require.NoError(t, svc.Membership.TransferOwnership(ctx, alice, carolMembership.ID))

	aliceMembership, err := repos.Membership.Get(ctx, alice, company.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, aliceMembership.Role)

	carolMembership, err = repos.Membership.Get(ctx, carol, company.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, carolMembership.Role)

	notes, err := repos.Notification.ListForRecipient(ctx, alice, company.ID)
	require.NoError(t, err)
	found := false
	for _, n := range notes {
		if n.Type == domain.NotifyOwnershipTransferred {
			found = true
		}
	}
	require.True(t, found, "alice must receive an OwnershipTransferred notification")

	// invariant 1: exactly one Owner membership still exists.
	all, err := repos.Membership.ListByCompany(ctx, company.ID)
	require.NoError(t, err)
	owners := 0
	for _, m := range all {
		if m.Role == domain.RoleOwner {
			owners++
		}
	}
	require.Equal(t, 1, owners)

	// Involution: transferring back restores the original role pair. Carol
	// joined as Pending, so her active company was never set; she switches
	// to it before acting as Owner.
	require.NoError(t, svc.Account.SwitchActiveCompany(ctx, carol, company.ID))
	require.NoError(t, svc.Membership.TransferOwnership(ctx, carol, aliceMembership.ID))

	aliceMembership, err = repos.Membership.Get(ctx, alice, company.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, aliceMembership.Role)

	carolMembership, err = repos.Membership.Get(ctx, carol, company.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, carolMembership.Role)
}
