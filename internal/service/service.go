package service

import "context"

// Identity is the contract with the external identity gateway. The core
// performs no password handling beyond passing credentials through.
type Identity interface {
	// CurrentUser returns the signed-in user, refreshing the stored
	// session if needed. Returns ErrUnauthenticated when there is none.
	CurrentUser(ctx context.Context) (User, error)

	// SignIn authenticates with email and password and persists the
	// session. Unverified accounts are rejected and no session is kept.
	SignIn(ctx context.Context, email, password string) (User, error)

	// SignOut discards the persisted session. No-op when signed out.
	SignOut() error

	// Register creates an account, its user record and its personal
	// list, and sends the verification email. The caller stays signed
	// out until the email is verified.
	Register(ctx context.Context, username, email, password string) (User, error)

	// SendPasswordReset emails a password-reset link.
	SendPasswordReset(ctx context.Context, email string) error

	// UpdateDisplayName renames the signed-in user.
	UpdateDisplayName(ctx context.Context, name string) error

	// UpdatePassword re-authenticates with the current password and then
	// sets the new one.
	UpdatePassword(ctx context.Context, current, next string) error

	// DeleteAccount re-authenticates with the password, removes the user
	// record and the identity account, and discards the session. Lists
	// and tasks the account owned are left behind.
	DeleteAccount(ctx context.Context, password string) error
}

// Store is the contract with the external document store. Each entity maps
// to one collection: users, lists, tasks, collaborators. Timestamps are
// server-assigned on create and opaque until read back.
type Store interface {
	// UserByID reads a user record. ErrNotFound if missing.
	UserByID(ctx context.Context, id string) (User, error)

	// UserByEmail resolves an email by equality lookup.
	// ErrUserNotFound if no account matches.
	UserByEmail(ctx context.Context, email string) (User, error)

	// ListsOwnedBy returns the lists owned by a user, ordered by
	// creation time ascending.
	ListsOwnedBy(ctx context.Context, ownerID string) ([]List, error)

	// ListByID reads a single list. ErrNotFound if missing.
	ListByID(ctx context.Context, id string) (List, error)

	// CreateList writes a new list. A zero CreatedAt is replaced by a
	// server-assigned timestamp. A non-empty l.ID pins the document ID
	// (used for the deterministic personal list); otherwise one is
	// generated.
	CreateList(ctx context.Context, l List) (List, error)

	// GrantsForUser returns every grant naming the user, in no
	// particular order.
	GrantsForUser(ctx context.Context, userID string) ([]Grant, error)

	// GrantsForList returns every grant on a list.
	GrantsForList(ctx context.Context, listID string) ([]Grant, error)

	// GrantFor reports whether a grant exists for the (list, user) pair.
	GrantFor(ctx context.Context, listID, userID string) (Grant, bool, error)

	// CreateGrant writes a new grant with a server-assigned timestamp.
	CreateGrant(ctx context.Context, g Grant) (Grant, error)

	// DeleteGrant removes a grant. Deleting a nonexistent grant is a
	// no-op success so that retries stay safe.
	DeleteGrant(ctx context.Context, grantID string) error

	// TasksForList returns the tasks whose ListID equals listID and no
	// others.
	TasksForList(ctx context.Context, listID string) ([]Task, error)

	// CreateTask writes a new task. A zero CreatedAt is replaced by a
	// server-assigned timestamp; a concrete one is preserved (undo keeps
	// the original creation time).
	CreateTask(ctx context.Context, t Task) (Task, error)

	// UpdateTask overwrites a task's title, due date-time and priority.
	UpdateTask(ctx context.Context, t Task) error

	// SetTaskCompleted sets the completion flag.
	SetTaskCompleted(ctx context.Context, taskID string, completed bool) error

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, taskID string) error
}

// Service bundles both external collaborators behind one value, the way
// commands receive them.
type Service interface {
	Identity
	Store
}
