// cmd/seed populates a fresh database with two demo companies, their
// owners and a member, a connection between the companies, and a shared
// project with a couple of chat messages. Running it twice is safe: dev
// logins are upserted, and each later step first looks for what it would
// create and reuses it when present. The two project chat messages are
// appended again on every run.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
	"github.com/naperu/collabmesh/internal/service"
	"github.com/naperu/collabmesh/internal/ws"
	"github.com/naperu/collabmesh/pkg/config"
	"github.com/naperu/collabmesh/pkg/database"
)

type demoUser struct {
	username, password, fullName, nickname, email string
}

var demoUsers = []demoUser{
	{"nova-owner", "password123", "Nadia Owner", "nadia", "nadia@novadesign.example"},
	{"nova-admin", "password123", "Theo Admin", "theo", "theo@novadesign.example"},
	{"forge-owner", "password123", "Priya Owner", "priya", "priya@forgeworks.example"},
}

func main() {
	root := &cobra.Command{
		Use:   "seed",
		Short: "seed a demo workspace into the configured database",
		RunE:  runSeed,
	}
	root.Flags().Bool("reset", false, "delete the seeded dev logins before inserting (other seeded rows are kept)")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	fmt.Println("connected to database")

	if err := database.Migrate(pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if reset, _ := cmd.Flags().GetBool("reset"); reset {
		if err := wipeSeed(ctx, pool); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Println("wiped previous seed dev logins")
	}

	repos := repository.NewRepositories(pool)
	hub := ws.NewHub()
	clock := service.NewSystemClock()
	codes := service.NewInviteCodeGen(repos.InviteCode)
	services := service.NewServices(pool, repos, hub, clock, codes, cfg.JWTSecret)

	identities := make(map[string]domain.Identity, len(demoUsers))
	for _, u := range demoUsers {
		id := domain.IdentityFromSeed([]byte(u.username))
		identities[u.username] = id

		if err := upsertDevLogin(ctx, pool, u.username, u.password, id); err != nil {
			return fmt.Errorf("login %s: %w", u.username, err)
		}

		if _, err := services.Account.CreateAccount(ctx, id, u.fullName, u.nickname, u.email); err != nil {
			if !isAlreadyExists(err) {
				return fmt.Errorf("create account %s: %w", u.username, err)
			}
		}
		fmt.Printf("seeded account: %s / %s\n", u.username, u.password)
	}

	novaOwner := identities["nova-owner"]
	novaAdmin := identities["nova-admin"]
	forgeOwner := identities["forge-owner"]

	nova, err := ensureCompany(ctx, services, repos, novaOwner, "Nova Design Collective", "nova-design", "Rotterdam, NL")
	if err != nil {
		return fmt.Errorf("create company nova: %w", err)
	}
	forge, err := ensureCompany(ctx, services, repos, forgeOwner, "Forgeworks Metalcraft", "forgeworks", "Eindhoven, NL")
	if err != nil {
		return fmt.Errorf("create company forge: %w", err)
	}
	fmt.Printf("seeded companies: %s, %s\n", nova.Name, forge.Name)

	if err := onboardColleague(ctx, services, novaOwner, novaAdmin); err != nil {
		return fmt.Errorf("onboard nova-admin: %w", err)
	}
	fmt.Println("seeded colleague: nova-admin joined Nova Design Collective as Admin")

	if err := ensureConnection(ctx, repos, services, novaOwner, nova.ID, forgeOwner, forge.ID); err != nil {
		return fmt.Errorf("connect companies: %w", err)
	}
	fmt.Println("seeded connection: Nova Design Collective <-> Forgeworks Metalcraft (accepted)")

	project, err := ensureProject(ctx, repos, services, novaOwner, forgeOwner, forge.ID)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	fmt.Printf("seeded project: %s\n", project.Name)

	if err := seedProjectChat(ctx, services, novaOwner, forgeOwner, project.ID); err != nil {
		return fmt.Errorf("seed project chat: %w", err)
	}
	fmt.Println("seeded project chat messages")

	fmt.Println("\nseed completed successfully")
	for _, u := range demoUsers {
		fmt.Printf("  login: %s / %s\n", u.username, u.password)
	}
	return nil
}

func upsertDevLogin(ctx context.Context, pool *pgxpool.Pool, username, password string, id domain.Identity) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	idBytes := id
	_, err = pool.Exec(ctx, `
		INSERT INTO dev_credentials (username, identity, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, username, idBytes[:], string(hashed))
	return err
}

func ensureCompany(ctx context.Context, services *service.Services, repos *repository.Repositories, owner domain.Identity, name, slug, location string) (*domain.Company, error) {
	existing, err := repos.Company.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return services.Account.CreateCompany(ctx, owner, name, slug, location)
}

func onboardColleague(ctx context.Context, services *service.Services, owner, joiner domain.Identity) error {
	ac, err := services.Account.GetAuthContext(ctx, owner)
	if err != nil {
		return err
	}
	if ac.ActiveCompany == nil {
		return fmt.Errorf("owner has no active company")
	}
	memberships, err := services.Account.ListMemberships(ctx, joiner)
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if m.CompanyID == *ac.ActiveCompany {
			if m.Role == domain.RolePending {
				return services.Membership.UpdateUserRole(ctx, owner, m.ID, domain.RoleAdmin)
			}
			return nil
		}
	}

	invite, err := services.Membership.GenerateInviteCode(ctx, owner, 5)
	if err != nil {
		return err
	}
	membership, err := services.Membership.JoinCompany(ctx, joiner, invite.Code)
	if err != nil {
		return err
	}
	return services.Membership.UpdateUserRole(ctx, owner, membership.ID, domain.RoleAdmin)
}

// ensureConnection requests a connection from nova to forge and accepts it
// on forge's side, leaving the pair in the Accepted state idempotently.
func ensureConnection(ctx context.Context, repos *repository.Repositories, services *service.Services, requester domain.Identity, requesterCompanyID uuid.UUID, accepter domain.Identity, targetCompanyID uuid.UUID) error {
	existing, err := repos.Connection.GetByPair(ctx, requesterCompanyID, targetCompanyID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Status == domain.ConnectionAccepted {
		return nil
	}

	var connID uuid.UUID
	if existing == nil {
		conn, err := services.Connection.RequestConnection(ctx, requester, targetCompanyID, "Excited to collaborate on joint installations.")
		if err != nil {
			return err
		}
		if conn == nil {
			return fmt.Errorf("connection request was silently dropped (blocked pair?)")
		}
		connID = conn.ID
	} else {
		connID = existing.ID
	}

	return services.Connection.AcceptConnection(ctx, accepter, connID)
}

// ensureProject creates a project owned by nova and invites+accepts forge
// into it, so the seeded workspace has one live multi-company project.
func ensureProject(ctx context.Context, repos *repository.Repositories, services *service.Services, owner, invitee domain.Identity, inviteeCompanyID uuid.UUID) (*domain.Project, error) {
	projects, err := repos.ProjectMember.ListByCompany(ctx, inviteeCompanyID)
	if err != nil {
		return nil, err
	}
	for _, m := range projects {
		if m.Status == domain.ProjectMemberAccepted {
			return repos.Project.GetByID(ctx, m.ProjectID)
		}
	}

	project, err := services.Project.CreateProject(ctx, owner, "Canal House Renovation", "Joint fit-out for a canal-side office renovation.")
	if err != nil {
		return nil, err
	}
	if _, err := services.Project.InviteToProject(ctx, owner, project.ID, inviteeCompanyID); err != nil {
		return nil, err
	}
	if err := services.Project.AcceptProjectInvite(ctx, invitee, project.ID); err != nil {
		return nil, err
	}
	return project, nil
}

func seedProjectChat(ctx context.Context, services *service.Services, a, b domain.Identity, projectID uuid.UUID) error {
	if _, err := services.Project.SendProjectChat(ctx, a, projectID, "Welcome aboard, looking forward to working together."); err != nil {
		return err
	}
	if _, err := services.Project.SendProjectChat(ctx, b, projectID, "Likewise, sending over the floor plans this week."); err != nil {
		return err
	}
	return nil
}

func isAlreadyExists(err error) bool {
	return err == domain.ErrAccountAlreadyExists || err == domain.ErrSlugTaken
}

func wipeSeed(ctx context.Context, pool *pgxpool.Pool) error {
	usernames := make([]string, 0, len(demoUsers))
	for _, u := range demoUsers {
		usernames = append(usernames, u.username)
	}
	_, err := pool.Exec(ctx, `DELETE FROM dev_credentials WHERE username = ANY($1)`, usernames)
	return err
}
