package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

// openSession authenticates the current user, restores persisted session
// state and loads the list directory. Every list- and task-scoped command
// starts here.
func openSession(ctx context.Context, cfg *config.Config, svc service.Service) (*session.Session, error) {
	user, err := svc.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	sess := session.New(svc, user, session.LoadState(cfg.SessionPath()))
	if err := sess.LoadLists(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// saveSession persists the session state for the next invocation.
func saveSession(cfg *config.Config, sess *session.Session) error {
	if err := cfg.EnsureDir(); err != nil {
		return err
	}
	return sess.State().Save(cfg.SessionPath())
}

// pickList switches to the named list when a -l/--list override was given,
// otherwise it keeps the active list.
func pickList(sess *session.Session, name string) (service.List, error) {
	if name != "" {
		return sess.SwitchList(name)
	}
	list, ok := sess.ActiveList()
	if !ok {
		return service.List{}, fmt.Errorf("%w: no active list", service.ErrNotFound)
	}
	return list, nil
}

// fail reports an error on errOut exactly once and maps its kind to an exit
// code. Unavailable and unknown failures are backend errors (retryable);
// authentication failures are auth errors; everything else the user can fix
// themselves.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return exitcode.AuthError
	case errors.Is(err, service.ErrUnavailable):
		return exitcode.BackendError
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSelfInvite),
		errors.Is(err, service.ErrAlreadyCollaborator),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrNotFound):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}

// ok prints the standard success acknowledgement unless quiet.
func ok(out io.Writer, cfg *config.Config) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
