package domain

import "errors"

var (
	// ErrInvalidCredentials covers wrong email, wrong password, and
	// disabled or deleted accounts uniformly; callers must not be able to
	// tell which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized covers missing, expired, tampered, or stale tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks a valid actor whose type or module grants do not
	// satisfy the operation's policy.
	ErrForbidden = errors.New("access forbidden")

	// ErrActorExists marks a duplicate email or username at registration.
	ErrActorExists = errors.New("actor already exists")

	// ErrActorNotFound marks a missing actor on management lookups. The
	// authentication guard never surfaces it; there it degrades to
	// ErrUnauthorized.
	ErrActorNotFound = errors.New("actor not found")
)
