package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/naperu/collabmesh/internal/domain"
	"github.com/naperu/collabmesh/internal/repository"
)

// Clock is the wall-clock oracle spec.md treats as external: a source of
// monotonically non-decreasing microsecond timestamps per caller.
type Clock interface {
	NowMicros(caller domain.Identity) int64
}

// systemClock keeps a per-caller floor so concurrent operations by the
// same identity never observe time going backwards, without requiring a
// monotonic clock source from the database itself.
type systemClock struct {
	mu    sync.Mutex
	floor map[domain.Identity]int64
}

func NewSystemClock() Clock {
	return &systemClock{floor: make(map[domain.Identity]int64)}
}

func (c *systemClock) NowMicros(caller domain.Identity) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UnixMicro()
	if prev, ok := c.floor[caller]; ok && prev >= now {
		now = prev + 1
	}
	c.floor[caller] = now
	return now
}

// InviteCodeGen is the oracle that allocates unique 16-char invite codes.
type InviteCodeGen interface {
	Generate(ctx context.Context) (string, error)
}

type rejectionSamplingCodeGen struct {
	invites *repository.InviteCodeRepository
}

func NewInviteCodeGen(invites *repository.InviteCodeRepository) InviteCodeGen {
	return &rejectionSamplingCodeGen{invites: invites}
}

const maxGenerateAttempts = 64

func (g *rejectionSamplingCodeGen) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		raw, err := randomCode()
		if err != nil {
			return "", err
		}
		canon, err := domain.CanonicalizeInviteCode(raw)
		if err != nil {
			return "", err
		}
		exists, err := g.invites.Exists(ctx, canon)
		if err != nil {
			return "", err
		}
		if !exists {
			return canon, nil
		}
	}
	return "", fmt.Errorf("invite code generator: exhausted %d attempts", maxGenerateAttempts)
}

func randomCode() (string, error) {
	alphabet := domain.InviteCodeAlphabet
	buf := make([]byte, 16)
	idx := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		idx[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(idx), nil
}
