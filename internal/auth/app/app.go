package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	authdocs "github.com/aussiebroadwan/sessionauth/api/auth"
	httpapi "github.com/aussiebroadwan/sessionauth/internal/auth/http"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application wires the session service and owns its lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	codec  *jwtx.Codec
	hasher *cryptox.Hasher

	sessionService *service.SessionService
	userService    *service.UserService
	guard          *service.Guard
	seeder         *service.Seeder

	server *http.Server
	router *httpapi.Router
}

// New builds every dependency. Nothing listens until Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "session-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initCrypto(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	if cfg.SeedOnStart {
		ctx := slogx.WithContext(context.Background(), app.logger)
		if err := app.seeder.Seed(ctx); err != nil {
			_ = app.db.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	app.initHTTP()
	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"api_base", app.cfg.APIBase,
		"jwt_alg", app.codec.Algorithm(),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initCrypto loads the pepper and builds the hasher and token codec. A bad
// PEM key fails here, before the database is touched.
func (app *Application) initCrypto() error {
	pepper, err := cryptox.LoadPepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	if pepper == "" {
		app.logger.Warn("PEPPER_FILE not set, hashing without a pepper")
	}
	app.hasher = cryptox.NewHasher(cryptox.DefaultHasherParams, pepper)

	codec, err := jwtx.NewCodec(app.cfg.JWTAlg, app.cfg.JWTSecret, app.cfg.AccessTTL())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	app.codec = codec
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:  app.db,
		Codec:  app.codec,
		Hasher: app.hasher,
		Policy: service.SessionPolicy{
			ShortRefreshTTL: app.cfg.ShortRefreshTTL(),
			LongRefreshTTL:  app.cfg.LongRefreshTTL(),
		},
	}
	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher}
	app.guard = &service.Guard{Codec: app.codec, Users: app.db.Users()}
	app.seeder = &service.Seeder{
		Store:            app.db,
		Hasher:           app.hasher,
		AdminEmail:       app.cfg.AdminEmail,
		AdminPassword:    app.cfg.AdminPassword,
		GeneratePassword: app.cfg.Env == EnvDev,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	prefix := app.cfg.RoutePrefix()
	authdocs.SwaggerInfo.BasePath = app.cfg.APIBase
	authdocs.SwaggerInfo.Version = strings.TrimPrefix(BuildVersion, "v")

	router := httpapi.NewRouter(httpapi.RouterConfig{
		APIBase:      prefix,
		PublicBase:   app.cfg.APIBase,
		Env:          app.cfg.Env,
		Version:      BuildVersion,
		Cookie:       app.cfg.CookiePolicy(),
		CORS:         app.cfg.CORS(),
		LoginLimit:   app.cfg.LoginLimit(),
		RefreshLimit: app.cfg.RefreshLimit(),
	}, app.codec, app.db, app.logger)

	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.Guard = app.guard
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
