// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Creation timestamps are monotonic so date-added ordering is deterministic.
type FakeService struct {
	mu      sync.RWMutex
	current *service.User
	users   []service.User
	lists   []service.List
	grants  []service.Grant
	tasks   []service.Task
	clock   time.Time

	// Error injection for testing
	CurrentUserErr   error
	SignInErr        error
	RegisterErr      error
	DeleteAccountErr error
	UserByEmailErr   error
	ListsOwnedByErr  error
	ListByIDErr      error
	CreateListErr    error
	GrantsForUserErr error
	GrantsForListErr error
	GrantForErr      error
	CreateGrantErr   error
	DeleteGrantErr   error
	TasksForListErr  error
	CreateTaskErr    error
	UpdateTaskErr    error
	SetCompletedErr  error
	DeleteTaskErr    error
}

// NewFakeService creates an empty FakeService. Seed it with AddUser, AddList,
// AddGrant and AddTask, then SetCurrentUser to sign someone in.
func NewFakeService() *FakeService {
	return &FakeService{
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *FakeService) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

// AddUser seeds an account plus its users document and personal list.
func (f *FakeService) AddUser(id, username, email string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := service.User{ID: id, Email: email, DisplayName: username, EmailVerified: true}
	f.users = append(f.users, u)
	f.lists = append(f.lists, service.List{
		ID:        service.PersonalListID(id),
		Name:      "My Tasks",
		OwnerID:   id,
		Kind:      service.ListPersonal,
		CreatedAt: f.tick(),
	})
	return u
}

// AddList seeds a shared list.
func (f *FakeService) AddList(id, name, ownerID string) service.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := service.List{ID: id, Name: name, OwnerID: ownerID, Kind: service.ListShared, CreatedAt: f.tick()}
	f.lists = append(f.lists, l)
	return l
}

// AddGrant seeds a collaborator grant.
func (f *FakeService) AddGrant(listID, userID string) service.Grant {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := service.Grant{ID: uuid.NewString(), ListID: listID, UserID: userID, GrantedAt: f.tick()}
	f.grants = append(f.grants, g)
	return g
}

// AddTask seeds a task.
func (f *FakeService) AddTask(listID, title string, priority service.Priority, due string) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:          uuid.NewString(),
		Title:       title,
		DueDateTime: due,
		Priority:    priority,
		CreatedAt:   f.tick(),
		ListID:      listID,
	}
	f.tasks = append(f.tasks, t)
	return t
}

// SetCurrentUser signs a seeded user in.
func (f *FakeService) SetCurrentUser(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			f.current = &u
			return
		}
	}
	panic("testutil: unknown user " + id)
}

// CurrentUser implements service.Identity.
func (f *FakeService) CurrentUser(ctx context.Context) (service.User, error) {
	if f.CurrentUserErr != nil {
		return service.User{}, f.CurrentUserErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == nil {
		return service.User{}, fmt.Errorf("%w: not signed in", service.ErrUnauthenticated)
	}
	return *f.current, nil
}

// SignIn implements service.Identity.
func (f *FakeService) SignIn(ctx context.Context, email, password string) (service.User, error) {
	if f.SignInErr != nil {
		return service.User{}, f.SignInErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if strings.EqualFold(f.users[i].Email, email) {
			u := f.users[i]
			f.current = &u
			return u, nil
		}
	}
	return service.User{}, fmt.Errorf("%w: invalid credentials", service.ErrUnauthenticated)
}

// SignOut implements service.Identity.
func (f *FakeService) SignOut() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = nil
	return nil
}

// Register implements service.Identity.
func (f *FakeService) Register(ctx context.Context, username, email, password string) (service.User, error) {
	if f.RegisterErr != nil {
		return service.User{}, f.RegisterErr
	}
	f.mu.RLock()
	for i := range f.users {
		if strings.EqualFold(f.users[i].Email, email) {
			f.mu.RUnlock()
			return service.User{}, fmt.Errorf("%w: email already registered", service.ErrValidation)
		}
	}
	f.mu.RUnlock()
	u := f.AddUser(uuid.NewString(), username, email)
	u.EmailVerified = false
	return u, nil
}

// SendPasswordReset implements service.Identity.
func (f *FakeService) SendPasswordReset(ctx context.Context, email string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for i := range f.users {
		if strings.EqualFold(f.users[i].Email, email) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", service.ErrUserNotFound, email)
}

// UpdateDisplayName implements service.Identity.
func (f *FakeService) UpdateDisplayName(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return fmt.Errorf("%w: not signed in", service.ErrUnauthenticated)
	}
	f.current.DisplayName = name
	for i := range f.users {
		if f.users[i].ID == f.current.ID {
			f.users[i].DisplayName = name
		}
	}
	return nil
}

// UpdatePassword implements service.Identity.
func (f *FakeService) UpdatePassword(ctx context.Context, current, next string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == nil {
		return fmt.Errorf("%w: not signed in", service.ErrUnauthenticated)
	}
	return nil
}

// DeleteAccount implements service.Identity. The user record disappears;
// owned lists, grants and tasks stay, like the production behavior.
func (f *FakeService) DeleteAccount(ctx context.Context, password string) error {
	if f.DeleteAccountErr != nil {
		return f.DeleteAccountErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return fmt.Errorf("%w: not signed in", service.ErrUnauthenticated)
	}
	for i := range f.users {
		if f.users[i].ID == f.current.ID {
			f.users = append(f.users[:i], f.users[i+1:]...)
			break
		}
	}
	f.current = nil
	return nil
}

// UserByID implements service.Store.
func (f *FakeService) UserByID(ctx context.Context, id string) (service.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.ID == id {
			return service.User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}, nil
		}
	}
	return service.User{}, fmt.Errorf("%w: user %s", service.ErrNotFound, id)
}

// UserByEmail implements service.Store. The match is exact, like the
// store's equality query; callers that want case folding fold first.
func (f *FakeService) UserByEmail(ctx context.Context, email string) (service.User, error) {
	if f.UserByEmailErr != nil {
		return service.User{}, f.UserByEmailErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.Email == email {
			return service.User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}, nil
		}
	}
	return service.User{}, fmt.Errorf("%w: %s", service.ErrUserNotFound, email)
}

// ListsOwnedBy implements service.Store.
func (f *FakeService) ListsOwnedBy(ctx context.Context, ownerID string) ([]service.List, error) {
	if f.ListsOwnedByErr != nil {
		return nil, f.ListsOwnedByErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []service.List
	for _, l := range f.lists {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

// ListByID implements service.Store.
func (f *FakeService) ListByID(ctx context.Context, id string) (service.List, error) {
	if f.ListByIDErr != nil {
		return service.List{}, f.ListByIDErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.ID == id {
			return l, nil
		}
	}
	return service.List{}, fmt.Errorf("%w: list %s", service.ErrNotFound, id)
}

// CreateList implements service.Store.
func (f *FakeService) CreateList(ctx context.Context, l service.List) (service.List, error) {
	if f.CreateListErr != nil {
		return service.List{}, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = f.tick()
	}
	f.lists = append(f.lists, l)
	return l, nil
}

// GrantsForUser implements service.Store.
func (f *FakeService) GrantsForUser(ctx context.Context, userID string) ([]service.Grant, error) {
	if f.GrantsForUserErr != nil {
		return nil, f.GrantsForUserErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []service.Grant
	for _, g := range f.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

// GrantsForList implements service.Store.
func (f *FakeService) GrantsForList(ctx context.Context, listID string) ([]service.Grant, error) {
	if f.GrantsForListErr != nil {
		return nil, f.GrantsForListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []service.Grant
	for _, g := range f.grants {
		if g.ListID == listID {
			out = append(out, g)
		}
	}
	return out, nil
}

// GrantFor implements service.Store.
func (f *FakeService) GrantFor(ctx context.Context, listID, userID string) (service.Grant, bool, error) {
	if f.GrantForErr != nil {
		return service.Grant{}, false, f.GrantForErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, g := range f.grants {
		if g.ListID == listID && g.UserID == userID {
			return g, true, nil
		}
	}
	return service.Grant{}, false, nil
}

// CreateGrant implements service.Store.
func (f *FakeService) CreateGrant(ctx context.Context, g service.Grant) (service.Grant, error) {
	if f.CreateGrantErr != nil {
		return service.Grant{}, f.CreateGrantErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.GrantedAt.IsZero() {
		g.GrantedAt = f.tick()
	}
	f.grants = append(f.grants, g)
	return g, nil
}

// DeleteGrant implements service.Store.
func (f *FakeService) DeleteGrant(ctx context.Context, grantID string) error {
	if f.DeleteGrantErr != nil {
		return f.DeleteGrantErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, g := range f.grants {
		if g.ID == grantID {
			f.grants = append(f.grants[:i], f.grants[i+1:]...)
			return nil
		}
	}
	return nil
}

// TasksForList implements service.Store.
func (f *FakeService) TasksForList(ctx context.Context, listID string) ([]service.Task, error) {
	if f.TasksForListErr != nil {
		return nil, f.TasksForListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []service.Task
	for _, t := range f.tasks {
		if t.ListID == listID {
			out = append(out, t)
		}
	}
	return out, nil
}

// CreateTask implements service.Store.
func (f *FakeService) CreateTask(ctx context.Context, t service.Task) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = f.tick()
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Store.
func (f *FakeService) UpdateTask(ctx context.Context, t service.Task) error {
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			f.tasks[i].Title = t.Title
			f.tasks[i].DueDateTime = t.DueDateTime
			f.tasks[i].Priority = t.Priority
			return nil
		}
	}
	return fmt.Errorf("%w: task %s", service.ErrNotFound, t.ID)
}

// SetTaskCompleted implements service.Store.
func (f *FakeService) SetTaskCompleted(ctx context.Context, taskID string, completed bool) error {
	if f.SetCompletedErr != nil {
		return f.SetCompletedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			f.tasks[i].Completed = completed
			return nil
		}
	}
	return fmt.Errorf("%w: task %s", service.ErrNotFound, taskID)
}

// DeleteTask implements service.Store.
func (f *FakeService) DeleteTask(ctx context.Context, taskID string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == taskID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: task %s", service.ErrNotFound, taskID)
}
