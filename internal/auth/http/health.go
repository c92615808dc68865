package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// HealthHandler reports the deployment and database state. It always
// answers 200; a failed ping shows up as db "down".
func HealthHandler(cfg RouterConfig, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db := "ok"
		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Warn("health: database ping failed", "err", err)
			db = "down"
		}

		httpx.WriteJSON(w, http.StatusOK, authsdk.AppHealthResponse{
			Status:  "ok",
			DB:      db,
			Version: cfg.Version,
			Env:     cfg.Env,
			APIBase: cfg.publicBase(),
		})
	}
}

func (c RouterConfig) publicBase() string {
	switch {
	case c.PublicBase != "":
		return c.PublicBase
	case c.APIBase != "":
		return c.APIBase
	}
	return "/"
}

// probes serves the orchestrator endpoints.
type probes struct {
	started time.Time
	version string
	store   store.Store
	codec   *jwtx.Codec
}

func (p probes) response(status string, checks *authsdk.HealthChecks) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(p.started).Round(time.Second).String(),
		Version: p.version,
		Checks:  checks,
	}
}

// Livez godoc
//
//	@Summary	Liveness probe
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	authsdk.HealthResponse
//	@Router		/livez [get]
func (p probes) Livez(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, p.response("ok", nil))
}

// Readyz godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the database and round-trips a throwaway access token through the codec.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse
//	@Failure		503	{object}	authsdk.HealthResponse
//	@Router			/readyz [get]
func (p probes) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := &authsdk.HealthChecks{Database: "ok", Signer: "ok"}
	log := slogx.FromContext(r.Context())

	if err := p.store.Ping(r.Context()); err != nil {
		log.Warn("readyz: database ping failed", "err", err)
		checks.Database = "down"
	}
	if err := p.checkSigner(); err != nil {
		log.Error("readyz: signer check failed", "err", err)
		checks.Signer = "down"
	}

	if checks.Database != "ok" || checks.Signer != "ok" {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, p.response("degraded", checks))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p.response("ok", checks))
}

func (p probes) checkSigner() error {
	tok, err := p.codec.IssueAccess("readyz", nil, time.Now())
	if err != nil {
		return err
	}
	_, err = p.codec.DecodeAccess(tok)
	return err
}
