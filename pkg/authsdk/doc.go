/*
Package authsdk is a Go client for the session service.

# Overview

SDKClient wraps the public endpoints. It carries a cookie jar, so the
refresh token set by login stays with the client exactly as it would in a
browser, and refresh and logout send it back automatically:

	client := authsdk.NewSDKClient("https://auth.example.com", "/api/v1")

	tok, err := client.Login(ctx, "alice@example.com", "password", true)
	me, err := client.Me(ctx, tok.AccessToken)

	tok, err = client.Refresh(ctx) // rotates the cookie
	err = client.Logout(ctx)       // clears it

Refresh and logout always send the X-Requested-With marker header, which the
service requires when its cookie is configured with SameSite=None.

# Sessions

Authenticate returns a Session that refreshes the access token shortly
before it expires, and once more if the service rejects a token:

	session, err := client.Authenticate(ctx, "alice@example.com", "password", false)
	me, err := session.Me(ctx)

# Errors

Every non-2xx response is returned as *APIError carrying the status code
and the "error" and "error_description" fields of the envelope. All
credential and token failures are 401 with the same description.
*/
package authsdk
