package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
)

type AccountService struct{ deps *deps }

// CreateAccount implements spec §4.2 create_account.
func (s *AccountService) CreateAccount(ctx context.Context, caller domain.Identity, fullName, nickname, email string) (*domain.Account, error) {
	fullName, err := domain.ValidateLen("full_name", fullName, 1, 50)
	if err != nil {
		return nil, err
	}
	nickname, err = domain.ValidateLen("nickname", nickname, 1, 30)
	if err != nil {
		return nil, err
	}
	email, err = domain.ValidateLen("email", email, 1, 100)
	if err != nil {
		return nil, err
	}

	var out *domain.Account
	err = repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		existing, err := tx.Account.GetByIdentity(ctx, caller)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAccountAlreadyExists
		}
		acc := &domain.Account{Identity: caller, FullName: fullName, Nickname: nickname, Email: email}
		if err := tx.Account.Create(ctx, acc); err != nil {
			return err
		}
		out = acc
		return nil
	})
	return out, err
}

// UpdateProfile implements spec §4.2 update_profile.
func (s *AccountService) UpdateProfile(ctx context.Context, caller domain.Identity, nickname, email string) error {
	nickname, err := domain.ValidateLen("nickname", nickname, 1, 30)
	if err != nil {
		return err
	}
	email, err = domain.ValidateLen("email", email, 1, 100)
	if err != nil {
		return err
	}

	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		return tx.Account.UpdateProfile(ctx, ac.Identity, nickname, email)
	})
}

// CreateCompany implements spec §4.2 create_company.
func (s *AccountService) CreateCompany(ctx context.Context, caller domain.Identity, name, slug, location string) (*domain.Company, error) {
	name, err := domain.ValidateLen("company name", name, 1, 100)
	if err != nil {
		return nil, err
	}
	slug, err = domain.ValidateSlug(slug)
	if err != nil {
		return nil, err
	}
	location, err = domain.ValidateLen("location", location, 1, 100)
	if err != nil {
		return nil, err
	}

	var out *domain.Company
	err = repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}

		existing, err := tx.Company.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrSlugTaken
		}

		company := &domain.Company{Name: name, Slug: slug, Location: location}
		if err := tx.Company.Create(ctx, company); err != nil {
			return err
		}
		if err := tx.Capability.Create(ctx, company.ID); err != nil {
			return err
		}
		membership := &domain.Membership{Identity: ac.Identity, CompanyID: company.ID, Role: domain.RoleOwner}
		if err := tx.Membership.Create(ctx, membership); err != nil {
			return err
		}
		if err := tx.Account.SetActiveCompany(ctx, ac.Identity, &company.ID); err != nil {
			return err
		}
		out = company
		return nil
	})
	return out, err
}

// UpdateCompanyProfile implements spec §4.2 update_company_profile.
func (s *AccountService) UpdateCompanyProfile(ctx context.Context, caller domain.Identity, name, slug, location, bio string, isPublic bool, kvkNumber string) error {
	name, err := domain.ValidateLen("company name", name, 1, 100)
	if err != nil {
		return err
	}
	slug, err = domain.ValidateSlug(slug)
	if err != nil {
		return err
	}
	location, err = domain.ValidateLen("location", location, 1, 100)
	if err != nil {
		return err
	}
	bio, err = domain.ValidateLen("bio", bio, 0, 500)
	if err != nil {
		return err
	}
	kvkNumber, err = domain.ValidateLen("kvk_number", kvkNumber, 0, 20)
	if err != nil {
		return err
	}

	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}

		company, err := tx.Company.GetByID(ctx, *ac.ActiveCompany)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrCompanyNotFound
		}

		if slug != company.Slug {
			existing, err := tx.Company.GetBySlug(ctx, slug)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrSlugTaken
			}
		}

		company.Name, company.Slug, company.Location = name, slug, location
		company.Bio, company.IsPublic, company.KvkNumber = bio, isPublic, kvkNumber
		return tx.Company.Update(ctx, company)
	})
}

// UpdateCapabilities implements spec §4.2 update_capabilities.
func (s *AccountService) UpdateCapabilities(ctx context.Context, caller domain.Identity, canInstall, hasCNC, hasLargeFormat, hasBucketTruck bool) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.CanManage() {
			return domain.ErrNotPermitted
		}
		cap := &domain.Capability{
			CompanyID: *ac.ActiveCompany, CanInstall: canInstall, HasCNC: hasCNC,
			HasLargeFormat: hasLargeFormat, HasBucketTruck: hasBucketTruck,
		}
		return tx.Capability.Update(ctx, cap)
	})
}

// SwitchActiveCompany implements spec §4.2 switch_active_company.
func (s *AccountService) SwitchActiveCompany(ctx context.Context, caller domain.Identity, companyID uuid.UUID) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		account, err := tx.Account.GetByIdentity(ctx, caller)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrAccountNotFound
		}

		membership, err := tx.Membership.Get(ctx, caller, companyID)
		if err != nil {
			return err
		}
		if membership == nil || membership.Role == domain.RolePending {
			return domain.ErrNotPermitted
		}
		return tx.Account.SetActiveCompany(ctx, caller, &companyID)
	})
}

// GetAuthContext is a read-only supplemented query backing the "/me"
// endpoint: resolves the caller's account, active company and role.
func (s *AccountService) GetAuthContext(ctx context.Context, caller domain.Identity) (*AuthContext, error) {
	return resolveAuthContext(ctx, s.deps.repos, caller)
}

// ListMemberships is a supplemented read listing every company the caller
// belongs to, to back a company-switcher UI.
func (s *AccountService) ListMemberships(ctx context.Context, caller domain.Identity) ([]*domain.Membership, error) {
	account, err := s.deps.repos.Account.GetByIdentity(ctx, caller)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return s.deps.repos.Membership.ListByIdentity(ctx, caller)
}

// GetCompany is a supplemented read used by the company-profile endpoint.
func (s *AccountService) GetCompany(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	return s.deps.repos.Company.GetByID(ctx, companyID)
}

// GetCapabilities is a supplemented read used by the company-profile endpoint.
func (s *AccountService) GetCapabilities(ctx context.Context, companyID uuid.UUID) (*domain.Capability, error) {
	return s.deps.repos.Capability.GetByCompanyID(ctx, companyID)
}

// ListPublicCompanies backs the supplemented public company directory.
func (s *AccountService) ListPublicCompanies(ctx context.Context) ([]*domain.Company, error) {
	return s.deps.repos.Company.ListPublic(ctx)
}

// DeleteCompany implements spec §4.2 delete_company.
//
// Decided per DESIGN.md: permitted unconditionally for the Owner,
// regardless of how many other memberships exist, matching spec.md's note
// that the source "allows it unconditionally for the owner".
func (s *AccountService) DeleteCompany(ctx context.Context, caller domain.Identity) error {
	return repository.WithinTx(ctx, s.deps.pool, s.deps.repos, func(ctx context.Context, tx *repository.Repositories) error {
		ac, err := resolveAuthContext(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !ac.IsOwner() {
			return domain.ErrNotPermitted
		}
		return s.deps.cascade(tx).onCompanyDelete(ctx, *ac.ActiveCompany)
	})
}
