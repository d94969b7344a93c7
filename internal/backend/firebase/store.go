package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskdeck/internal/service"
)

// Collection names, one per entity.
const (
	colUsers         = "users"
	colLists         = "lists"
	colTasks         = "tasks"
	colCollaborators = "collaborators"
)

// Raw document shapes. The store returns arbitrary field sets; these decode
// targets plus the valid() checks are the typed boundary. Documents missing
// required fields are dropped here and never reach the core.

type userDoc struct {
	Username  string    `firestore:"username"`
	Email     string    `firestore:"email"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func (d userDoc) valid() bool { return d.Email != "" }

type listDoc struct {
	Name      string    `firestore:"name"`
	OwnerID   string    `firestore:"ownerId"`
	Kind      string    `firestore:"type"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func (d listDoc) valid() bool { return d.Name != "" && d.OwnerID != "" }

type grantDoc struct {
	ListID  string    `firestore:"listId"`
	UserID  string    `firestore:"userId"`
	AddedAt time.Time `firestore:"addedAt"`
}

func (d grantDoc) valid() bool { return d.ListID != "" && d.UserID != "" }

type taskDoc struct {
	Title       string    `firestore:"title"`
	DueDateTime string    `firestore:"dueDateTime"`
	Priority    string    `firestore:"priority"`
	Completed   bool      `firestore:"completed"`
	CreatedAt   time.Time `firestore:"createdAt"`
	ListID      string    `firestore:"listId"`
}

func (d taskDoc) valid() bool { return d.Title != "" && d.ListID != "" }

// UserByID implements service.Store.
func (c *Client) UserByID(ctx context.Context, id string) (service.User, error) {
	fs, err := c.store(ctx)
	if err != nil {
		return service.User{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	snap, err := fs.Collection(colUsers).Doc(id).Get(ctx)
	if err != nil {
		return service.User{}, wrapStoreErr(err)
	}
	var d userDoc
	if err := snap.DataTo(&d); err != nil || !d.valid() {
		c.log.Debug("dropping malformed user document", "id", id)
		return service.User{}, fmt.Errorf("%w: user %s", service.ErrNotFound, id)
	}
	return service.User{ID: snap.Ref.ID, Email: d.Email, DisplayName: d.Username}, nil
}

// UserByEmail implements service.Store: a query-by-equality lookup against
// the users collection, like the web app's findUserByEmail.
func (c *Client) UserByEmail(ctx context.Context, email string) (service.User, error) {
	fs, err := c.store(ctx)
	if err != nil {
		return service.User{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	snaps, err := fs.Collection(colUsers).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return service.User{}, wrapStoreErr(err)
	}
	if len(snaps) == 0 {
		return service.User{}, fmt.Errorf("%w: no account with email %s", service.ErrUserNotFound, email)
	}

	var d userDoc
	if err := snaps[0].DataTo(&d); err != nil || !d.valid() {
		c.log.Debug("dropping malformed user document", "id", snaps[0].Ref.ID)
		return service.User{}, fmt.Errorf("%w: no account with email %s", service.ErrUserNotFound, email)
	}
	return service.User{ID: snaps[0].Ref.ID, Email: d.Email, DisplayName: d.Username}, nil
}

// ListsOwnedBy implements service.Store, ordered by creation ascending.
func (c *Client) ListsOwnedBy(ctx context.Context, ownerID string) ([]service.List, error) {
	fs, err := c.store(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	snaps, err := fs.Collection(colLists).
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	lists := make([]service.List, 0, len(snaps))
	for _, snap := range snaps {
		l, ok := c.decodeList(snap)
		if !ok {
			continue
		}
		lists = append(lists, l)
	}
	c.log.Debug("loaded owned lists", "owner", ownerID, "count", len(lists))
	return lists, nil
}

// ListByID implements service.Store.
func (c *Client) ListByID(ctx context.Context, id string) (service.List, error) {
	fs, err := c.store(ctx)
	if err != nil {
		return service.List{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	snap, err := fs.Collection(colLists).Doc(id).Get(ctx)
	if err != nil {
		return service.List{}, wrapStoreErr(err)
	}
	l, ok := c.decodeList(snap)
	if !ok {
		return service.List{}, fmt.Errorf("%w: list %s", service.ErrNotFound, id)
	}
	return l, nil
}

func (c *Client) decodeList(snap *firestore.DocumentSnapshot) (service.List, bool) {
	var d listDoc
	if err := snap.DataTo(&d); err != nil || !d.valid() {
		c.log.Debug("dropping malformed list document", "id", snap.Ref.ID)
		return service.List{}, false
	}
	return service.List{
		ID:        snap.Ref.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		Kind:      service.ListKind(d.Kind),
		CreatedAt: d.CreatedAt,
	}, true
}

// CreateList implements service.Store. A non-empty ID pins the document
// (the personal list); otherwise the store generates one.
func (c *Client) CreateList(ctx context.Context, l service.List) (service.List, error) {
	fs, err := c.store(ctx)
	if err != nil {
		return service.List{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	ref := fs.Collection(colLists).NewDoc()
	if l.ID != "" {
		ref = fs.Collection(colLists).Doc(l.ID)
	}

	wr, err := ref.Create(ctx, map[string]interface{}{
		"name":      l.Name,
		"ownerId":   l.OwnerID,
		"type":      string(l.Kind),
		"createdAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return service.List{}, wrapStoreErr(err)
	}

	l.ID = ref.ID
	l.CreatedAt = wr.UpdateTime
	return l, nil
}

// GrantsForUser implements service.Store.
func (c *Client) GrantsForUser(ctx context.Context, userID string) ([]service.Grant, error) {
	return c.grantQuery(ctx, "userId", userID)
}

// GrantsForList implements service.Store.
func (c *Client) GrantsForList(ctx context.Context, listID string) ([]service.Grant, error) {
	return c.grantQuery(ctx, "listId", listID)
}

func (c *Client) grantQuery(ctx context.Context, field, value string) ([]service.Grant, error) {
	fs, err := c.store(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	snaps, err := fs.Collection(colCollaborators).
		Where(field, "==", value).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	grants := make([]service.Grant, 0, len(snaps))
	for _, snap := range snaps {
		var d grantDoc
		if err := snap.DataTo(&d); err != nil || !d.valid() {
			c.log.Debug("dropping malformed grant document", "id", snap.Ref.ID)
			continue
		}
		grants = append(grants, service.Grant{
			ID:        snap.Ref.ID,
			ListID:    d.ListID,
			UserID:    d.UserID,
			GrantedAt: d.AddedAt,
		})
	}
	return grants, nil
}

// GrantFor implements service.Store.
func (c *Client) GrantFor(ctx context.Context, listID, userID string) (service.Grant, bool, error) {
	fs, err := c.store(ctx)
	if err != nil {
		return service.Grant{}, false, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	snaps, err := fs.Collection(colCollaborators).
		Where("listId", "==", listID).
		Where("userId", "==", userID).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return service.Grant{}, false, wrapStoreErr(err)
	}
	if len(snaps) == 0 {
		return service.Grant{}, false, nil
	}

	var d grantDoc
	if err := snaps[0].DataTo(&d); err != nil || !d.valid() {
		c.log.Debug("dropping malformed grant document", "id", snaps[0].Ref.ID)
		return service.Grant{}, false, nil
	}
	return service.Grant{
		ID:        snaps[0].Ref.ID,
		ListID:    d.ListID,
		UserID:    d.UserID,
		GrantedAt: d.AddedAt,
	}, true, nil
}

// CreateGrant implements service.Store.
func (c *Client) CreateGrant(ctx context.Context, g service.Grant) (service.Grant, error) {
	fs, err := c.store(ctx)
	if err != nil {
		return service.Grant{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	ref := fs.Collection(colCollaborators).NewDoc()
	wr, err := ref.Create(ctx, map[string]interface{}{
		"listId":  g.ListID,
		"userId":  g.UserID,
		"addedAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return service.Grant{}, wrapStoreErr(err)
	}

	g.ID = ref.ID
	g.GrantedAt = wr.UpdateTime
	return g, nil
}

// DeleteGrant implements service.Store. Firestore deletes are already
// idempotent, so a vanished grant is a success.
func (c *Client) DeleteGrant(ctx context.Context, grantID string) error {
	fs, err := c.store(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if _, err := fs.Collection(colCollaborators).Doc(grantID).Delete(ctx); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

// TasksForList implements service.Store, scoped strictly by listId.
func (c *Client) TasksForList(ctx context.Context, listID string) ([]service.Task, error) {
	fs, err := c.store(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	snaps, err := fs.Collection(colTasks).
		Where("listId", "==", listID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	tasks := make([]service.Task, 0, len(snaps))
	for _, snap := range snaps {
		var d taskDoc
		if err := snap.DataTo(&d); err != nil || !d.valid() {
			c.log.Debug("dropping malformed task document", "id", snap.Ref.ID)
			continue
		}
		tasks = append(tasks, service.Task{
			ID:          snap.Ref.ID,
			Title:       d.Title,
			DueDateTime: d.DueDateTime,
			Priority:    service.Priority(d.Priority),
			Completed:   d.Completed,
			CreatedAt:   d.CreatedAt,
			ListID:      d.ListID,
		})
	}
	c.log.Debug("loaded tasks", "list", listID, "count", len(tasks))
	return tasks, nil
}

// CreateTask implements service.Store. A zero CreatedAt gets the server
// timestamp; a concrete one (undo) is written as-is.
func (c *Client) CreateTask(ctx context.Context, t service.Task) (service.Task, error) {
	fs, err := c.store(ctx)
	if err != nil {
		return service.Task{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var createdAt interface{} = firestore.ServerTimestamp
	if !t.CreatedAt.IsZero() {
		createdAt = t.CreatedAt
	}

	ref := fs.Collection(colTasks).NewDoc()
	wr, err := ref.Create(ctx, map[string]interface{}{
		"title":       t.Title,
		"dueDateTime": t.DueDateTime,
		"priority":    string(t.Priority),
		"completed":   t.Completed,
		"createdAt":   createdAt,
		"listId":      t.ListID,
	})
	if err != nil {
		return service.Task{}, wrapStoreErr(err)
	}

	t.ID = ref.ID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = wr.UpdateTime
	}
	return t, nil
}

// UpdateTask implements service.Store.
func (c *Client) UpdateTask(ctx context.Context, t service.Task) error {
	fs, err := c.store(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if _, err := fs.Collection(colTasks).Doc(t.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: t.Title},
		{Path: "dueDateTime", Value: t.DueDateTime},
		{Path: "priority", Value: string(t.Priority)},
	}); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

// SetTaskCompleted implements service.Store.
func (c *Client) SetTaskCompleted(ctx context.Context, taskID string, completed bool) error {
	fs, err := c.store(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if _, err := fs.Collection(colTasks).Doc(taskID).Update(ctx, []firestore.Update{
		{Path: "completed", Value: completed},
	}); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

// DeleteTask implements service.Store.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	fs, err := c.store(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if _, err := fs.Collection(colTasks).Doc(taskID).Delete(ctx); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

// wrapStoreErr maps transport failures onto the service error kinds.
// Unavailable and timeouts stay retryable; callers keep their caches.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", service.ErrUnavailable)
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", service.ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: document already exists", service.ErrValidation)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", service.ErrUnavailable, err)
	case codes.Unauthenticated:
		return fmt.Errorf("%w: session expired (run: taskdeck login)", service.ErrUnauthenticated)
	case codes.PermissionDenied:
		return fmt.Errorf("%w: the store denied this operation", service.ErrUnauthorized)
	}
	return fmt.Errorf("document store: %w", err)
}
