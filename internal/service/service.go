package service

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naperu/collabmesh/internal/repository"
	"github.com/naperu/collabmesh/internal/ws"
)

// Services aggregates one service per module, mirroring the teacher's
// thin Services-struct-of-services pattern.
type Services struct {
	Account      *AccountService
	Membership   *MembershipService
	Connection   *ConnectionService
	Project      *ProjectService
	Notification *NotificationService
	Auth         *AuthService
}

func NewServices(pool *pgxpool.Pool, repos *repository.Repositories, hub *ws.Hub, clock Clock, codes InviteCodeGen, jwtSecret string) *Services {
	deps := &deps{
		pool:  pool,
		repos: repos,
		hub:   hub,
		clock: clock,
		codes: codes,
	}
	return &Services{
		Account:      &AccountService{deps: deps},
		Membership:   &MembershipService{deps: deps},
		Connection:   &ConnectionService{deps: deps},
		Project:      &ProjectService{deps: deps},
		Notification: &NotificationService{deps: deps},
		Auth:         NewAuthService(pool, jwtSecret),
	}
}

// deps is shared, read-only wiring handed to every module service.
type deps struct {
	pool  *pgxpool.Pool
	repos *repository.Repositories
	hub   *ws.Hub
	clock Clock
	codes InviteCodeGen
}

func (d *deps) notifier(repos *repository.Repositories) *notifier {
	return &notifier{repos: repos, hub: d.hub}
}

func (d *deps) cascade(repos *repository.Repositories) *cascade {
	return &cascade{repos: repos}
}
