package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	authhttp "github.com/aussiebroadwan/sessionauth/internal/auth/http"
	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessionauth/pkg/cookiex"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	apiBase     = "/api/v1"
	cookieName  = "refresh_token"
	testSecret  = "0123456789abcdef0123456789abcdef"
	password    = "correct-horse"
	longTTL     = 30 * 24 * time.Hour
	shortTTL    = 12 * time.Hour
	generousCap = 1000
)

type testEnv struct {
	handler http.Handler
	store   *sqlite.Store
	codec   *jwtx.Codec
	users   *service.UserService
}

type envOption func(*authhttp.RouterConfig)

func withSameSite(s cookiex.SameSite, secure bool) envOption {
	return func(c *authhttp.RouterConfig) {
		c.Cookie.SameSite = s
		c.Cookie.Secure = secure
	}
}

func withLoginLimit(l httpx.RateLimit) envOption {
	return func(c *authhttp.RouterConfig) { c.LoginLimit = l }
}

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.NewCodec(jwtx.AlgHS256, testSecret, 15*time.Minute)
	require.NoError(t, err)

	hasher := cryptox.NewHasher(cryptox.HasherParams{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}, "")

	limit := httpx.RateLimit{Requests: generousCap, Window: time.Minute, Burst: generousCap}
	cfg := authhttp.RouterConfig{
		APIBase: apiBase,
		Env:     "dev",
		Version: "test",
		Cookie: cookiex.Policy{
			Name:     cookieName,
			Path:     apiBase + "/auth",
			SameSite: cookiex.SameSiteLax,
		},
		CORS:         httpx.CORSConfig{AllowedOrigins: []string{"http://app.example.com"}},
		LoginLimit:   limit,
		RefreshLimit: limit,
	}
	for _, o := range opts {
		o(&cfg)
	}

	users := &service.UserService{Store: st, Hasher: hasher}
	r := authhttp.NewRouter(cfg, codec, st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.UserService = users
	r.SessionService = &service.SessionService{
		Store:  st,
		Codec:  codec,
		Hasher: hasher,
		Policy: service.SessionPolicy{ShortRefreshTTL: shortTTL, LongRefreshTTL: longTTL},
	}
	r.Guard = &service.Guard{Codec: codec, Users: st.Users()}
	r.ApplyRoutes()

	return &testEnv{handler: r, store: st, codec: codec, users: users}
}

func (e *testEnv) register(t *testing.T, email string, roles ...string) domain.User {
	t.Helper()
	ctx := context.Background()

	u, err := e.users.Register(ctx, email, password)
	require.NoError(t, err)
	for _, r := range roles {
		require.NoError(t, e.store.Users().AddRole(ctx, u.ID, r))
	}
	return u
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func loginRequest(email, pw string, remember bool) *http.Request {
	form := url.Values{"username": {email}, "password": {pw}}
	if remember {
		form.Set("remember", "true")
	}
	req := httptest.NewRequest(http.MethodPost, apiBase+"/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func refreshRequest(cookieValue string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, apiBase+"/auth/refresh", nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookieValue})
	}
	return req
}

func bearerRequest(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", cookieName)
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func requireSessionCookie(t *testing.T, c *http.Cookie) {
	t.Helper()
	require.Zero(t, c.MaxAge)
	require.Empty(t, c.RawExpires)
}
