// Package access decides what a user may do with a list.
package access

import (
	"context"
	"fmt"

	"taskdeck/internal/service"
)

// Role is a user's relationship to a list. The three values are mutually
// exclusive and exhaustive: Owner iff the list names the user as owner,
// Collaborator iff a grant exists for the pair, None otherwise.
type Role int

const (
	RoleNone Role = iota
	RoleCollaborator
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleCollaborator:
		return "collaborator"
	default:
		return "none"
	}
}

// RoleOf evaluates the user's role on a list. The owner check is a pure
// comparison; the collaborator check queries the store. Results are never
// cached: owner-only actions re-evaluate on every attempt so ownership data
// changed elsewhere is honored.
func RoleOf(ctx context.Context, st service.Store, user service.User, list service.List) (Role, error) {
	if list.OwnerID == user.ID {
		return RoleOwner, nil
	}
	_, ok, err := st.GrantFor(ctx, list.ID, user.ID)
	if err != nil {
		return RoleNone, err
	}
	if ok {
		return RoleCollaborator, nil
	}
	return RoleNone, nil
}

// RequireMember rejects users with no role on the list. Every list-scoped
// operation (viewing or mutating tasks, reading the roster) sits behind it.
func RequireMember(ctx context.Context, st service.Store, user service.User, list service.List) error {
	role, err := RoleOf(ctx, st, user, list)
	if err != nil {
		return err
	}
	if role == RoleNone {
		return fmt.Errorf("%w: no access to list %q", service.ErrUnauthorized, list.Name)
	}
	return nil
}

// RequireOwner gates privileged operations: creating or removing grants and
// the remove affordances on the roster.
func RequireOwner(user service.User, list service.List) error {
	if list.OwnerID != user.ID {
		return fmt.Errorf("%w: only the owner of %q may do this", service.ErrUnauthorized, list.Name)
	}
	return nil
}
