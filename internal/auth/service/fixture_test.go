package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "0123456789abcdef0123456789abcdef"
	testAccessTTL = 15 * time.Minute
	testShortTTL  = 12 * time.Hour
	testLongTTL   = 30 * 24 * time.Hour
)

var testHasherParams = cryptox.HasherParams{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store    *sqlite.Store
	codec    *jwtx.Codec
	hasher   *cryptox.Hasher
	clock    *clock
	sessions *SessionService
	users    *UserService
	guard    *Guard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	codec, err := jwtx.NewCodec(jwtx.AlgHS256, testSecret, testAccessTTL, jwtx.WithClock(clk.Now))
	require.NoError(t, err)

	hasher := cryptox.NewHasher(testHasherParams, "")

	return &fixture{
		store:  s,
		codec:  codec,
		hasher: hasher,
		clock:  clk,
		sessions: &SessionService{
			Store:  s,
			Codec:  codec,
			Hasher: hasher,
			Policy: SessionPolicy{ShortRefreshTTL: testShortTTL, LongRefreshTTL: testLongTTL},
			Now:    clk.Now,
		},
		users: &UserService{Store: s, Hasher: hasher},
		guard: &Guard{Codec: codec, Users: s.Users()},
	}
}

func (f *fixture) register(t *testing.T, email, password string, extraRoles ...string) domain.User {
	t.Helper()
	ctx := context.Background()

	u, err := f.users.Register(ctx, email, password)
	require.NoError(t, err)
	for _, r := range extraRoles {
		require.NoError(t, f.store.Users().AddRole(ctx, u.ID, r))
	}
	u, err = f.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	return u
}
