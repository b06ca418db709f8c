package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories aggregates one repository per aggregate root. Every
// sub-repository holds a dbtx rather than a concrete pool, so the whole
// struct can be rebuilt against an in-flight transaction via withTx.
type Repositories struct {
	pool *pgxpool.Pool

	Account       *AccountRepository
	Company       *CompanyRepository
	Capability    *CapabilityRepository
	Membership    *MembershipRepository
	InviteCode    *InviteCodeRepository
	Connection    *ConnectionRepository
	ConnChat      *ConnectionChatRepository
	Project       *ProjectRepository
	ProjectMember *ProjectMemberRepository
	ProjectChat   *ProjectChatRepository
	Notification  *NotificationRepository
}

func NewRepositories(pool *pgxpool.Pool) *Repositories {
	r := buildRepositories(pool)
	r.pool = pool
	return r
}

func buildRepositories(db dbtx) *Repositories {
	return &Repositories{
		Account:       &AccountRepository{db: db},
		Company:       &CompanyRepository{db: db},
		Capability:    &CapabilityRepository{db: db},
		Membership:    &MembershipRepository{db: db},
		InviteCode:    &InviteCodeRepository{db: db},
		Connection:    &ConnectionRepository{db: db},
		ConnChat:      &ConnectionChatRepository{db: db},
		Project:       &ProjectRepository{db: db},
		ProjectMember: &ProjectMemberRepository{db: db},
		ProjectChat:   &ProjectChatRepository{db: db},
		Notification:  &NotificationRepository{db: db},
	}
}

// withTx rebuilds the repository set against an in-flight transaction,
// keeping a reference to the original pool for callers that still need it.
func (r *Repositories) withTx(tx dbtx) *Repositories {
	built := buildRepositories(tx)
	built.pool = r.pool
	return built
}

// Pool exposes the underlying pool for read-only, non-transactional
// queries (e.g. health checks).
func (r *Repositories) Pool() *pgxpool.Pool {
	return r.pool
}
