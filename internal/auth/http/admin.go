package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
)

// HandleAdminSecret godoc
//
//	@Summary		Admin probe
//	@Description	Only reachable with the admin role.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.AdminSecretResponse	"ok, msg"
//	@Failure		401	{object}	authsdk.APIError			"error, error_description"
//	@Failure		403	{object}	authsdk.APIError			"error, error_description"
//	@Router			/admin/secret [get].
func HandleAdminSecret(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.AdminSecretResponse{
		OK:  true,
		Msg: "admin only content",
	})
}
