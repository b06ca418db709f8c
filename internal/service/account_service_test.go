package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/naperu/collabmesh/internal/domain"
)

// Scenario 1: Signup -> Company -> Invite.
func TestSignupCompanyInviteScenario(t *testing.T) {
	svc, repos := newTestServices(t)
	ctx := context.Background()
	alice := identityFor("alice")

	acc, err := svc.Account.CreateAccount(ctx, alice, "Alice", "Alice", "alice@a.test")
	require.NoError(t, err)
	require.Equal(t, "Alice", acc.FullName)

	company, err := svc.Account.CreateCompany(ctx, alice, "Alpha Signs", "alpha-signs", "Amsterdam, NL")
	require.NoError(t, err)
	require.Equal(t, "alpha-signs", company.Slug)

	refreshed, err := repos.Account.GetByIdentity(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, refreshed.ActiveCompanyID)
	require.Equal(t, company.ID, *refreshed.ActiveCompanyID)

	membership, err := repos.Membership.Get(ctx, alice, company.ID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	require.True(t, membership.Role.IsOwner())

	cap, err := repos.Capability.GetByCompanyID(ctx, company.ID)
	require.NoError(t, err)
	require.False(t, cap.CanInstall)
	require.False(t, cap.HasCNC)
	require.False(t, cap.HasLargeFormat)
	require.False(t, cap.HasBucketTruck)

	invite, err := svc.Membership.GenerateInviteCode(ctx, alice, 5)
	require.NoError(t, err)
	require.Equal(t, 5, invite.UsesRemaining)
	require.Equal(t, company.ID, invite.CompanyID)
}

// Invariant 7: slug uniqueness.
func TestCreateCompanyRejectsDuplicateSlug(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	alice := identityFor("slug-alice")
	bob := identityFor("slug-bob")

	_, err := svc.Account.CreateAccount(ctx, alice, "Alice", "Alice", "alice@a.test")
	require.NoError(t, err)
	_, err = svc.Account.CreateAccount(ctx, bob, "Bob", "Bob", "bob@b.test")
	require.NoError(t, err)

	_, err = svc.Account.CreateCompany(ctx, alice, "Alpha Signs", "alpha-signs", "Amsterdam, NL")
	require.NoError(t, err)

	_, err = svc.Account.CreateCompany(ctx, bob, "Alpha Signs Two", "alpha-signs", "Utrecht, NL")
	require.Equal(t, domain.ErrSlugTaken, err)
}

// Invariant 6: active_company_id is null or points at a non-Pending
// membership. Switching onto a Pending membership must fail.
func TestSwitchActiveCompanyRejectsPendingMembership(t *testing.T) {
	svc, repos := newTestServices(t)
	ctx := context.Background()
	owner := identityFor("switch-owner")
	joiner := identityFor("switch-joiner")

	_, err := svc.Account.CreateAccount(ctx, owner, "Owner", "Owner", "owner@a.test")
	require.NoError(t, err)
	_, err = svc.Account.CreateAccount(ctx, joiner, "Joiner", "Joiner", "joiner@a.test")
	require.NoError(t, err)

	company, err := svc.Account.CreateCompany(ctx, owner, "Beta Co", "beta-co", "Den Haag, NL")
	require.NoError(t, err)

	invite, err := svc.Membership.GenerateInviteCode(ctx, owner, 1)
	require.NoError(t, err)
	_, err = svc.Membership.JoinCompany(ctx, joiner, invite.Code)
	require.NoError(t, err)

	err = svc.Account.SwitchActiveCompany(ctx, joiner, company.ID)
	require.Error(t, err)

	account, err := repos.Account.GetByIdentity(ctx, joiner)
	require.NoError(t, err)
	require.Nil(t, account.ActiveCompanyID)
}
