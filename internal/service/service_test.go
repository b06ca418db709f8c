package service

import (
	"testing"

	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
	"github.com/naperu/collabmesh/internal/testutil"
	"github.com/naperu/collabmesh/internal/ws"
)

// newTestServices wires a full Services struct against an ephemeral
// Postgres, mirroring cmd/server's production wiring minus the HTTP layer.
func newTestServices(t *testing.T) (*Services, *repository.Repositories) {
	t.Helper()
	pool := testutil.NewPool(t)
	repos := repository.NewRepositories(pool)
	hub := ws.NewHub()
	codes := NewInviteCodeGen(repos.InviteCode)
	services := NewServices(pool, repos, hub, NewSystemClock(), codes, "test-secret")
	return services, repos
}

// identityFor derives a deterministic test Identity from a label, the same
// way the dev login oracle derives one from a username.
func identityFor(label string) domain.Identity {
	return domain.IdentityFromSeed([]byte(label))
}
