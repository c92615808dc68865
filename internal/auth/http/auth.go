package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/cookiex"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// maxRegisterBody caps the JSON body accepted by register.
const maxRegisterBody = 16 << 10

// AuthHandler serves the /auth endpoints. The refresh token only ever
// travels in the cookie described by Cookie.
type AuthHandler struct {
	SessionService *service.SessionService
	UserService    *service.UserService
	Cookie         cookiex.Policy
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Verifies the credentials and returns an access token. The refresh token is set as an HttpOnly cookie:
//	@Description	a persistent cookie when remember is true, a session cookie otherwise.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string					true	"Email address"
//	@Param			password	formData	string					true	"Password"
//	@Param			remember	formData	boolean					false	"Keep the session across browser restarts"
//	@Success		200			{object}	authsdk.TokenResponse	"access_token, token_type, expires_in"
//	@Failure		400			{object}	authsdk.APIError		"error, error_description"
//	@Failure		401			{object}	authsdk.APIError		"error, error_description"
//	@Failure		429			{object}	authsdk.APIError		"error, error_description"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if strings.TrimSpace(username) == "" || password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	sess, err := h.SessionService.Login(ctx, username, password, parseBool(r.PostForm.Get("remember")))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			authsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	h.writeSession(w, sess)
}

// HandleRefresh godoc
//
//	@Summary		Rotate the refresh token
//	@Description	Reads the refresh cookie, issues a new access token and replaces the cookie with a new refresh token.
//	@Description	The remember-me choice made at login is carried over. With SameSite=None the X-Requested-With: XMLHttpRequest header is required.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenResponse	"access_token, token_type, expires_in"
//	@Failure		400	{object}	authsdk.APIError		"CSRF check failed"
//	@Failure		401	{object}	authsdk.APIError		"missing or invalid refresh token"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.Cookie.CheckCSRF(r); err != nil {
		log.Info("refresh rejected", "err", err)
		authsdk.ErrCSRFCheckFailed.WriteError(w)
		return
	}

	token, ok := h.Cookie.Read(r)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	sess, err := h.SessionService.Refresh(ctx, token)
	if err != nil {
		if isTokenError(err) {
			httpx.WriteUnauthorized(w)
			return
		}
		log.Error("refresh failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	h.writeSession(w, sess)
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Clears the refresh cookie. Succeeds whether or not a cookie was sent.
//	@Tags			Auth
//	@Success		204
//	@Failure		400	{object}	authsdk.APIError	"CSRF check failed"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Cookie.CheckCSRF(r); err != nil {
		slogx.FromContext(r.Context()).Info("logout rejected", "err", err)
		authsdk.ErrCSRFCheckFailed.WriteError(w)
		return
	}

	h.Cookie.BuildClear().Set(w)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates an account with the "user" role.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RegisterRequest	true	"email and password"
//	@Success		201		{object}	authsdk.UserResponse	"id, email, roles"
//	@Failure		400		{object}	authsdk.APIError		"invalid body, invalid email or password, email taken"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRegisterBody)).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	u, err := h.UserService.Register(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			authsdk.ErrEmailTaken.WriteError(w)
		case errors.Is(err, service.ErrInvalidRegistration):
			authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRegistration, registrationDetail(err)).WriteError(w)
		default:
			log.Error("register failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userResponse(u))
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, sess domain.Session) {
	h.Cookie.BuildSet(sess.RefreshToken, sess.Refresh.TTL, sess.Refresh.Persistent).Set(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: sess.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(sess.AccessTTL.Seconds()),
	})
}

// isTokenError reports whether err means the refresh token must be
// rejected with a 401.
func isTokenError(err error) bool {
	for _, target := range []error{
		jwtx.ErrMalformed,
		jwtx.ErrInvalidSignature,
		jwtx.ErrExpired,
		jwtx.ErrWrongType,
		service.ErrPrincipalNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// registrationDetail returns the user-facing part of a validation error.
func registrationDetail(err error) string {
	_, detail, ok := strings.Cut(err.Error(), ": ")
	if !ok {
		return "Invalid registration"
	}
	return detail
}

// parseBool accepts the usual HTML form spellings of a checked box.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "on" || s == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

func userResponse(u domain.User) authsdk.UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return authsdk.UserResponse{ID: u.ID, Email: u.Email, Roles: roles}
}
