package service

import "errors"

// Error kinds. Commands map these to exit codes and messages with errors.Is;
// backends wrap transport failures into them at the boundary.
var (
	// ErrUnauthenticated means no signed-in user.
	ErrUnauthenticated = errors.New("not signed in")

	// ErrUnauthorized means a role check failed for a list-scoped operation.
	ErrUnauthorized = errors.New("not allowed")

	// ErrUserNotFound means an email lookup matched no account.
	ErrUserNotFound = errors.New("user not found")

	// ErrSelfInvite means the invitee is the acting owner.
	ErrSelfInvite = errors.New("user is already the list owner")

	// ErrAlreadyCollaborator means a grant already exists for the pair.
	ErrAlreadyCollaborator = errors.New("user is already a collaborator")

	// ErrUnavailable means the store or identity gateway could not be
	// reached. Always recoverable by retry; callers keep their caches.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrValidation means malformed input was rejected before any write.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound means a referenced document does not exist.
	ErrNotFound = errors.New("not found")
)
