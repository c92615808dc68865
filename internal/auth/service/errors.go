package service

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; callers must not be able to tell them apart.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrPrincipalNotFound means a token was valid but its subject no longer
	// resolves to a user.
	ErrPrincipalNotFound = errors.New("principal_not_found")

	// ErrUnauthenticated wraps every Guard authentication failure.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrInsufficientRole    = errors.New("insufficient_role")
	ErrEmailTaken          = errors.New("email_taken")
	ErrInvalidRegistration = errors.New("invalid_registration")
)
