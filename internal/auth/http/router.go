package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/cookiex"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"

	_ "github.com/aussiebroadwan/sessionauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig is the transport-level configuration of the router.
type RouterConfig struct {
	// APIBase is the mux prefix, "" when the API is mounted at the root.
	// PublicBase is API_BASE as configured and is what /health reports.
	APIBase    string
	PublicBase string
	Env        string
	Version    string

	Cookie cookiex.Policy
	CORS   httpx.CORSConfig

	// LoginLimit applies to login and register, RefreshLimit to refresh
	// and logout.
	LoginLimit   httpx.RateLimit
	RefreshLimit httpx.RateLimit
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cfg       RouterConfig
	codec     *jwtx.Codec
	store     store.Store
	startTime time.Time
	logger    *slog.Logger

	SessionService *service.SessionService
	UserService    *service.UserService
	Guard          *service.Guard
}

func NewRouter(cfg RouterConfig, codec *jwtx.Codec, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		cfg:       cfg,
		codec:     codec,
		store:     st,
		startTime: time.Now(),
		logger:    logger,
	}

	// Recover sits inside the logger so panics are logged as 500s.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover,
		httpx.CORS(cfg.CORS),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("GET "+r.cfg.APIBase+"/docs/", httpSwagger.Handler(
		httpSwagger.URL(r.cfg.APIBase+"/docs/doc.json"),
	))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Session Authentication Service API
//	@version					0.1.0
//	@description				Password login issuing short-lived bearer access tokens and a rotating refresh token carried in an HttpOnly cookie.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticator adapts the guard to the transport middleware.
func (r *Router) authenticator() httpx.Authenticator {
	return httpx.AuthenticatorFunc(func(ctx context.Context, bearer string) (httpx.Principal, error) {
		u, err := r.Guard.Authenticate(ctx, bearer)
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			return nil, fmt.Errorf("%w: %w", httpx.ErrUnauthenticated, err)
		case err != nil:
			return nil, err
		}
		return u, nil
	})
}

// authorizer routes role checks through the guard.
func (r *Router) authorizer() httpx.Authorizer {
	return httpx.AuthorizerFunc(func(_ context.Context, p httpx.Principal, allowed ...string) error {
		u, ok := p.(domain.User)
		if !ok {
			return fmt.Errorf("unexpected principal %T", p)
		}
		err := r.Guard.RequireRoles(u, allowed...)
		if errors.Is(err, service.ErrInsufficientRole) {
			return fmt.Errorf("%w: %w", httpx.ErrForbidden, err)
		}
		return err
	})
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		SessionService: r.SessionService,
		UserService:    r.UserService,
		Cookie:         r.cfg.Cookie,
	}
	base := r.cfg.APIBase + "/auth"

	// Login is limited per IP and per submitted username to slow down
	// credential stuffing against a single account.
	r.Mux.Handle("POST "+base+"/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndFormField(r.cfg.LoginLimit, "username"),
		),
	)
	r.Mux.Handle("POST "+base+"/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.cfg.LoginLimit),
		),
	)
	r.Mux.Handle("POST "+base+"/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.cfg.RefreshLimit),
		),
	)
	r.Mux.Handle("POST "+base+"/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(r.cfg.RefreshLimit),
		),
	)
}

func (r *Router) registerUsers() {
	r.Mux.Handle("GET "+r.cfg.APIBase+"/me",
		httpx.Chain(http.HandlerFunc(HandleMe),
			httpx.AuthnMiddleware(r.authenticator()),
		),
	)
}

func (r *Router) registerAdmin() {
	r.Mux.Handle("GET "+r.cfg.APIBase+"/admin/secret",
		httpx.Chain(http.HandlerFunc(HandleAdminSecret),
			httpx.AuthnMiddleware(r.authenticator()),
			httpx.RequireRoles(r.authorizer(), domain.RoleAdmin),
		),
	)
}

func (r *Router) registerSystem() {
	health := HealthHandler(r.cfg, r.store)
	r.Mux.Handle("GET /health", health)
	if r.cfg.APIBase != "" {
		r.Mux.Handle("GET "+r.cfg.APIBase+"/health", health)
	}

	p := probes{started: r.startTime, version: r.cfg.Version, store: r.store, codec: r.codec}
	r.Mux.HandleFunc("GET /livez", p.Livez)
	r.Mux.HandleFunc("GET /readyz", p.Readyz)
}
