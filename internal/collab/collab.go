// Package collab manages collaborator grants on shared lists.
package collab

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"taskdeck/internal/access"
	"taskdeck/internal/service"
)

// Manager turns email addresses into durable grants and back. The owner gate
// lives inside Invite and Revoke so no caller can forget it.
type Manager struct {
	store service.Store
}

// NewManager creates a Manager backed by the given store.
func NewManager(st service.Store) *Manager {
	return &Manager{store: st}
}

// Invite grants the user behind email access to the list. Preconditions, in
// order, each hard: the actor owns the list; the invitee's email differs
// from the actor's (checked by email, case-insensitively, before any store
// lookup, so a case variant of one's own address never reaches the store);
// the email resolves to an account; no grant exists yet for the pair. The
// grant timestamp is server-assigned.
func (m *Manager) Invite(ctx context.Context, actor service.User, list service.List, email string) (service.Grant, error) {
	if err := access.RequireOwner(actor, list); err != nil {
		return service.Grant{}, err
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return service.Grant{}, fmt.Errorf("%w: email required", service.ErrValidation)
	}

	if strings.EqualFold(email, actor.Email) {
		return service.Grant{}, service.ErrSelfInvite
	}

	invitee, err := m.store.UserByEmail(ctx, email)
	if err != nil {
		return service.Grant{}, err
	}

	if _, ok, err := m.store.GrantFor(ctx, list.ID, invitee.ID); err != nil {
		return service.Grant{}, err
	} else if ok {
		return service.Grant{}, service.ErrAlreadyCollaborator
	}

	return m.store.CreateGrant(ctx, service.Grant{
		ListID: list.ID,
		UserID: invitee.ID,
	})
}

// Revoke removes the grant for the user behind email. Owner-only. Revoking
// an email with no grant succeeds so UI retries stay safe.
func (m *Manager) Revoke(ctx context.Context, actor service.User, list service.List, email string) error {
	if err := access.RequireOwner(actor, list); err != nil {
		return err
	}

	user, err := m.store.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return nil
		}
		return err
	}

	grant, ok, err := m.store.GrantFor(ctx, list.ID, user.ID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return m.store.DeleteGrant(ctx, grant.ID)
}

// Member is one entry of a list's roster.
type Member struct {
	User    service.User
	GrantID string // empty for the owner
	IsOwner bool
}

// Roster returns the owner followed by the collaborators. Readable by owner
// and collaborators alike; the caller applies access.RequireMember first.
// The per-grant user lookups fan out concurrently and are gathered
// all-or-nothing: one failed lookup fails the roster. Grants whose user
// record has vanished are dropped.
func (m *Manager) Roster(ctx context.Context, list service.List) ([]Member, error) {
	owner, err := m.store.UserByID(ctx, list.OwnerID)
	if err != nil {
		return nil, err
	}

	grants, err := m.store.GrantsForList(ctx, list.ID)
	if err != nil {
		return nil, err
	}

	members := make([]Member, len(grants))
	g, gctx := errgroup.WithContext(ctx)
	for i, grant := range grants {
		g.Go(func() error {
			u, err := m.store.UserByID(gctx, grant.UserID)
			if err != nil {
				if errors.Is(err, service.ErrNotFound) {
					return nil
				}
				return err
			}
			members[i] = Member{User: u, GrantID: grant.ID}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	roster := []Member{{User: owner, IsOwner: true}}
	for _, mem := range members {
		if mem.User.ID != "" {
			roster = append(roster, mem)
		}
	}
	return roster, nil
}
