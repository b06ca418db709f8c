package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
)

// AuthContext is resolved once per operation from the caller's Identity,
// per spec §4.1: Account → active company → role.
type AuthContext struct {
	Identity       domain.Identity
	Account        *domain.Account
	ActiveCompany  *uuid.UUID
	Membership     *domain.Membership // nil when AccountOnly
}

func (a *AuthContext) HasActiveCompany() bool { return a.ActiveCompany != nil && a.Membership != nil }

func (a *AuthContext) Role() domain.Role {
	if a.Membership == nil {
		return ""
	}
	return a.Membership.Role
}

func (a *AuthContext) IsOwner() bool      { return a.HasActiveCompany() && a.Role().IsOwner() }
func (a *AuthContext) CanManage() bool    { return a.HasActiveCompany() && a.Role().CanManage() }
func (a *AuthContext) IsActiveMember() bool {
	return a.HasActiveCompany() && a.Role().IsActiveMember()
}

// resolveAuthContext builds the AuthContext used to gate every operation.
func resolveAuthContext(ctx context.Context, repos *repository.Repositories, caller domain.Identity) (*AuthContext, error) {
	account, err := repos.Account.GetByIdentity(ctx, caller)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}

	ac := &AuthContext{Identity: caller, Account: account}
	if account.ActiveCompanyID == nil {
		return ac, nil
	}

	membership, err := repos.Membership.Get(ctx, caller, *account.ActiveCompanyID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		// Invariant violation recovery: active_company_id pointed at a
		// membership that no longer exists. Treat as AccountOnly rather
		// than failing the whole operation.
		return ac, nil
	}
	ac.ActiveCompany = account.ActiveCompanyID
	ac.Membership = membership
	return ac, nil
}
