package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
)

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the principal behind the bearer token with its current roles.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.UserResponse	"id, email, roles"
//	@Failure		401	{object}	authsdk.APIError		"error, error_description"
//	@Router			/me [get].
func HandleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())
	u, ok := p.(domain.User)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}
