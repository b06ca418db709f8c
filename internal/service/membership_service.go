package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
)

type MembershipService struct{ deps *deps }

// ListColleagues is a supplemented read backing the team-roster view.
func (s *MembershipService) ListColleagues(ctx context.Context, caller domain.Identity) ([]*domain.Membership, error) {
	ac, err := resolveAuthContext(ctx, s.deps.repos, caller)
	if err != nil {
		return nil, err
	}
	if !ac.HasActiveCompany() {
		return nil, nil
	}
	return s.deps.repos.Membership.ListByCompany(ctx, *ac.ActiveCompany)
}

// GenerateInviteCode implements spec §4.3 generate_invite_code. Any manager
// (Owner or Admin) of the active company may mint a code.
func (s *MembershipService) GenerateInviteCode(ctx context.Context, caller domain.Identity, maxUses int) (*domain.InviteCode, error) {
	if err := domain.ValidateMaxUses(maxUses); err != nil {
		return nil, err
	}

	var out *domain.InviteCode
	err := repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrOnlyOwnerCanInvite
		}

		code, err := s.deps.codes.Generate(ctx)
		if err != nil {
			return err
		}
		ic := &domain.InviteCode{
			Code: code, CompanyID: *ac.ActiveCompany, CreatedBy: ac.Identity,
			MaxUses: maxUses, UsesRemaining: maxUses,
		}
		if err := tx.InviteCode.Create(ctx, ic); err != nil {
			return err
		}
		out = ic
		return nil
	})
	return out, err
}

// DeleteInviteCode implements spec §4.3 delete_invite_code.
func (s *MembershipService) DeleteInviteCode(ctx context.Context, caller domain.Identity, code string) error {
	code, err := domain.CanonicalizeInviteCode(code)
	if err != nil {
		return err
	}

	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrOnlyOwnerCanInvite
		}

		ic, err := tx.InviteCode.Get(ctx, code)
		if err != nil {
			return err
		}
		if ic == nil || ic.CompanyID != *ac.ActiveCompany {
			return domain.ErrInviteCodeInvalid
		}
		return tx.InviteCode.Delete(ctx, code)
	})
}

// JoinCompany implements spec §4.3 join_company: redeems an invite code,
// creating a Pending membership and notifying the company's managers.
func (s *MembershipService) JoinCompany(ctx context.Context, caller domain.Identity, rawCode string) (*domain.Membership, error) {
	code, err := domain.CanonicalizeInviteCode(rawCode)
	if err != nil {
		return nil, err
	}

	var out *domain.Membership
	err = repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		account, err := tx.Account.GetByIdentity(ctx, caller)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrAccountNotFound
		}

		ic, err := tx.InviteCode.Get(ctx, code)
		if err != nil {
			return err
		}
		if ic == nil || ic.UsesRemaining < 1 {
			return domain.ErrInviteCodeInvalid
		}

		existing, err := tx.Membership.Get(ctx, caller, ic.CompanyID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyMember
		}

		membership := &domain.Membership{Identity: caller, CompanyID: ic.CompanyID, Role: domain.RolePending}
		if err := tx.Membership.Create(ctx, membership); err != nil {
			return err
		}

		remaining, err := tx.InviteCode.DecrementUse(ctx, code)
		if err != nil {
			return err
		}
		if remaining <= 0 {
			if err := tx.InviteCode.Delete(ctx, code); err != nil {
				return err
			}
		}

		// Decided per DESIGN.md: the joining account is Pending and is thus
		// excluded from the managers fan-out set by definition, so it never
		// receives its own join notification.
		if err := s.deps.notifier(tx).emitToManagers(ctx, ic.CompanyID,
			domain.NotifyMemberJoined, "New member request",
			bodyf("%s requested to join as Pending", account.FullName)); err != nil {
			return err
		}

		out = membership
		return nil
	})
	return out, err
}

// UpdateUserRole implements spec §4.3 update_user_role.
func (s *MembershipService) UpdateUserRole(ctx context.Context, caller domain.Identity, target uuid.UUID, newRole domain.Role) error {
	if !newRole.Valid() {
		return domain.ErrNotPermitted
	}
	if newRole == domain.RoleOwner {
		return domain.ErrUseTransferOwnership
	}

	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		targetMembership, err := tx.Membership.GetByID(ctx, target)
		if err != nil {
			return err
		}
		if targetMembership == nil || targetMembership.CompanyID != *ac.ActiveCompany {
			return domain.ErrMembershipNotFound
		}
		if targetMembership.Identity == ac.Identity {
			return domain.ErrCannotChangeOwnRole
		}
		if targetMembership.Role.IsOwner() {
			return domain.ErrNotPermitted
		}
		// An Admin may only act on roles it strictly outranks.
		if !ac.IsOwner() && targetMembership.Role.AtOrAbove(ac.Role()) && targetMembership.Role != domain.RolePending {
			return domain.ErrNotPermitted
		}

		if err := tx.Membership.UpdateRole(ctx, target, newRole); err != nil {
			return err
		}
		return s.deps.notifier(tx).emitToIdentity(ctx, targetMembership.Identity, *ac.ActiveCompany,
			domain.NotifyRoleUpdated, "Role updated", bodyf("your role is now %s", newRole))
	})
}

// TransferOwnership implements spec §4.3 transfer_ownership. Only the
// current Owner may invoke it; the old Owner becomes Admin.
func (s *MembershipService) TransferOwnership(ctx context.Context, caller domain.Identity, target uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.IsOwner() {
			return domain.ErrNotPermitted
		}

		targetMembership, err := tx.Membership.GetByID(ctx, target)
		if err != nil {
			return err
		}
		if targetMembership == nil || targetMembership.CompanyID != *ac.ActiveCompany {
			return domain.ErrMembershipNotFound
		}
		if targetMembership.Role == domain.RolePending {
			return domain.ErrNotPermitted
		}

		if err := tx.Membership.UpdateRole(ctx, ac.Membership.ID, domain.RoleAdmin); err != nil {
			return err
		}
		if err := tx.Membership.UpdateRole(ctx, target, domain.RoleOwner); err != nil {
			return err
		}
		if err := s.deps.notifier(tx).emitToIdentity(ctx, targetMembership.Identity, *ac.ActiveCompany,
			domain.NotifyOwnershipTransferred, "You are now the owner",
			bodyf("%s transferred ownership to you", ac.Account.FullName)); err != nil {
			return err
		}
		return s.deps.notifier(tx).emitToIdentity(ctx, ac.Identity, *ac.ActiveCompany,
			domain.NotifyOwnershipTransferred, "Ownership transferred",
			bodyf("you transferred ownership to %s", targetMembership.Identity))
	})
}

// RemoveColleague implements spec §4.3 remove_colleague.
func (s *MembershipService) RemoveColleague(ctx context.Context, caller domain.Identity, target uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		targetMembership, err := tx.Membership.GetByID(ctx, target)
		if err != nil {
			return err
		}
		if targetMembership == nil || targetMembership.CompanyID != *ac.ActiveCompany {
			return domain.ErrMembershipNotFound
		}
		if targetMembership.Identity == ac.Identity {
			return domain.ErrCannotRemoveSelf
		}
		if targetMembership.Role.IsOwner() {
			return domain.ErrNotPermitted
		}
		if !ac.IsOwner() && targetMembership.Role.AtOrAbove(ac.Role()) && targetMembership.Role != domain.RolePending {
			return domain.ErrNotPermitted
		}

		if err := tx.Membership.Delete(ctx, target); err != nil {
			return err
		}
		if err := s.deps.notifier(tx).emitToIdentity(ctx, targetMembership.Identity, targetMembership.CompanyID,
			domain.NotifyRemoved, "Removed from company",
			bodyf("%s removed you from the company", ac.Account.FullName)); err != nil {
			return err
		}
		return reassignActiveCompanyIfNeeded(ctx, tx, targetMembership.Identity, targetMembership.CompanyID)
	})
}

// LeaveCompany implements spec §4.3 leave_company. The Owner cannot leave —
// it must transfer ownership or delete the company first.
func (s *MembershipService) LeaveCompany(ctx context.Context, caller domain.Identity) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.HasActiveCompany() {
			return domain.ErrMembershipNotFound
		}
		if ac.IsOwner() {
			return domain.ErrOwnerCannotLeave
		}

		companyID := *ac.ActiveCompany
		if err := tx.Membership.Delete(ctx, ac.Membership.ID); err != nil {
			return err
		}
		return reassignActiveCompanyIfNeeded(ctx, tx, ac.Identity, companyID)
	})
}

// reassignActiveCompanyIfNeeded clears or re-picks active_company_id for an
// account whose membership in companyID was just removed.
func reassignActiveCompanyIfNeeded(ctx context.Context, tx *repository.Repositories, id domain.Identity, companyID uuid.UUID) error {
	account, err := tx.Account.GetByIdentity(ctx, id)
	if err != nil {
		return err
	}
	if account.ActiveCompanyID == nil || *account.ActiveCompanyID != companyID {
		return nil
	}
	next, err := tx.Membership.AnyNonPendingFor(ctx, id)
	if err != nil {
		return err
	}
	if next == nil {
		return tx.Account.SetActiveCompany(ctx, id, nil)
	}
	return tx.Account.SetActiveCompany(ctx, id, &next.CompanyID)
}
