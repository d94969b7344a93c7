// Package session holds the per-user working state: the list directory, the
// active list, its task cache and the undo buffer. All operations take the
// session explicitly; there are no ambient globals.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/access"
	"taskdeck/internal/service"
	"taskdeck/internal/taskview"
)

// Session is the explicit context object every list- and task-scoped
// operation runs against. Caches are replaced wholesale on successful loads
// and left untouched on failure, so a flaky backend never leaves a torn
// view.
type Session struct {
	svc   service.Service
	user  service.User
	state State
	lists []service.List
	tasks []service.Task
}

// New builds a session for a signed-in user from previously persisted state.
func New(svc service.Service, user service.User, state State) *Session {
	if state.SortKey == "" {
		state.SortKey = taskview.DefaultSortKey
	}
	return &Session{svc: svc, user: user, state: state}
}

// User returns the signed-in user.
func (s *Session) User() service.User { return s.user }

// State returns the state to persist after the operation.
func (s *Session) State() State { return s.state }

// LoadLists loads the list directory: lists the user owns, ordered by
// creation time ascending, then lists reachable through a grant, appended in
// grant order. If no active list has been chosen yet (or the chosen one is
// no longer reachable) the personal list becomes active. The cache is only
// replaced when every query succeeded.
func (s *Session) LoadLists(ctx context.Context) error {
	owned, err := s.svc.ListsOwnedBy(ctx, s.user.ID)
	if err != nil {
		return err
	}

	grants, err := s.svc.GrantsForUser(ctx, s.user.ID)
	if err != nil {
		return err
	}

	lists := owned
	for _, g := range grants {
		l, err := s.svc.ListByID(ctx, g.ListID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				continue // stale grant, list is gone
			}
			return err
		}
		lists = append(lists, l)
	}

	s.lists = lists

	if _, ok := s.findList(s.state.ActiveListID); !ok {
		s.state.ActiveListID = service.PersonalListID(s.user.ID)
	}
	return nil
}

// Lists returns the cached directory in load order.
func (s *Session) Lists() []service.List { return s.lists }

// ActiveList returns the active list, if the directory contains it.
func (s *Session) ActiveList() (service.List, bool) {
	return s.findList(s.state.ActiveListID)
}

func (s *Session) findList(id string) (service.List, bool) {
	for _, l := range s.lists {
		if l.ID == id {
			return l, true
		}
	}
	return service.List{}, false
}

// SwitchList makes the named list active. The name match is
// case-insensitive and trimmed, against the loaded directory only.
func (s *Session) SwitchList(name string) (service.List, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return service.List{}, fmt.Errorf("%w: list name required", service.ErrValidation)
	}

	var matches []service.List
	for _, l := range s.lists {
		if strings.ToLower(strings.TrimSpace(l.Name)) == want {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return service.List{}, fmt.Errorf("%w: list %q", service.ErrNotFound, name)
	case 1:
		s.state.ActiveListID = matches[0].ID
		s.tasks = nil
		return matches[0], nil
	default:
		return service.List{}, fmt.Errorf("%w: ambiguous list name %q", service.ErrValidation, name)
	}
}

// CreateList creates a shared list owned by the current user, appends it to
// the directory cache and makes it active.
func (s *Session) CreateList(ctx context.Context, name string) (service.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return service.List{}, fmt.Errorf("%w: list name cannot be empty", service.ErrValidation)
	}

	l, err := s.svc.CreateList(ctx, service.List{
		Name:    name,
		OwnerID: s.user.ID,
		Kind:    service.ListShared,
	})
	if err != nil {
		return service.List{}, err
	}

	s.lists = append(s.lists, l)
	s.state.ActiveListID = l.ID
	s.tasks = nil
	return l, nil
}

// LoadTasks loads the active list's tasks. Access is checked first: users
// with no role on the list are denied before any task is read. The cache is
// replaced only on success.
func (s *Session) LoadTasks(ctx context.Context) error {
	list, ok := s.ActiveList()
	if !ok {
		return fmt.Errorf("%w: no active list", service.ErrNotFound)
	}

	if err := access.RequireMember(ctx, s.svc, s.user, list); err != nil {
		return err
	}

	tasks, err := s.svc.TasksForList(ctx, list.ID)
	if err != nil {
		return err
	}

	s.tasks = tasks
	return nil
}

// Tasks returns the cached tasks ordered by the session sort key. The cache
// itself is never reordered; every call derives a fresh view.
func (s *Session) Tasks() []service.Task {
	return taskview.Sort(s.tasks, s.state.SortKey)
}

// TaskAt resolves a 1-based position in the sorted view.
func (s *Session) TaskAt(num int) (service.Task, error) {
	view := s.Tasks()
	if num < 1 || num > len(view) {
		return service.Task{}, fmt.Errorf("%w: task number out of range: %d", service.ErrValidation, num)
	}
	return view[num-1], nil
}

// SetSortKey changes the ordering of the task view. No reload happens; the
// next Tasks call re-sorts the existing cache.
func (s *Session) SetSortKey(key taskview.SortKey) {
	s.state.SortKey = key
}

// AddTask validates and creates a task in the active list. Anyone with
// access to the list may add tasks.
func (s *Session) AddTask(ctx context.Context, title, due string, priority service.Priority) (service.Task, error) {
	list, ok := s.ActiveList()
	if !ok {
		return service.Task{}, fmt.Errorf("%w: no active list", service.ErrNotFound)
	}
	if err := access.RequireMember(ctx, s.svc, s.user, list); err != nil {
		return service.Task{}, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return service.Task{}, fmt.Errorf("%w: title required", service.ErrValidation)
	}
	if _, err := service.ParsePriority(string(priority)); err != nil {
		return service.Task{}, err
	}
	if due != "" {
		if _, err := time.Parse(service.DueDateTimeLayout, due); err != nil {
			return service.Task{}, fmt.Errorf("%w: due must look like %q", service.ErrValidation, service.DueDateTimeLayout)
		}
	}

	t, err := s.svc.CreateTask(ctx, service.Task{
		Title:       title,
		DueDateTime: due,
		Priority:    priority,
		ListID:      list.ID,
	})
	if err != nil {
		return service.Task{}, err
	}

	s.tasks = append(s.tasks, t)
	return t, nil
}

// ToggleTask flips a task's completion flag.
func (s *Session) ToggleTask(ctx context.Context, num int) (service.Task, error) {
	if err := s.requireActiveMember(ctx); err != nil {
		return service.Task{}, err
	}
	t, err := s.TaskAt(num)
	if err != nil {
		return service.Task{}, err
	}

	if err := s.svc.SetTaskCompleted(ctx, t.ID, !t.Completed); err != nil {
		return service.Task{}, err
	}

	t.Completed = !t.Completed
	s.patchTask(t)
	return t, nil
}

// EditTask overwrites a task's title, due date-time and priority.
func (s *Session) EditTask(ctx context.Context, num int, title, due string, priority service.Priority) (service.Task, error) {
	if err := s.requireActiveMember(ctx); err != nil {
		return service.Task{}, err
	}
	t, err := s.TaskAt(num)
	if err != nil {
		return service.Task{}, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return service.Task{}, fmt.Errorf("%w: title required", service.ErrValidation)
	}
	if _, err := service.ParsePriority(string(priority)); err != nil {
		return service.Task{}, err
	}
	if due != "" {
		if _, err := time.Parse(service.DueDateTimeLayout, due); err != nil {
			return service.Task{}, fmt.Errorf("%w: due must look like %q", service.ErrValidation, service.DueDateTimeLayout)
		}
	}

	t.Title = title
	t.DueDateTime = due
	t.Priority = priority
	if err := s.svc.UpdateTask(ctx, t); err != nil {
		return service.Task{}, err
	}

	s.patchTask(t)
	return t, nil
}

// DeleteTask removes a task and parks it in the undo buffer, overwriting
// whatever the buffer held before.
func (s *Session) DeleteTask(ctx context.Context, num int) (service.Task, error) {
	if err := s.requireActiveMember(ctx); err != nil {
		return service.Task{}, err
	}
	t, err := s.TaskAt(num)
	if err != nil {
		return service.Task{}, err
	}

	if err := s.svc.DeleteTask(ctx, t.ID); err != nil {
		return service.Task{}, err
	}

	deleted := t
	s.state.LastDeleted = &deleted
	s.removeTask(t.ID)
	return t, nil
}

// Undo recreates the most recently deleted task under a fresh ID, keeping
// its original fields including the creation timestamp. The buffer empties
// afterwards, so a second Undo without an intervening delete reports ok
// false and does nothing.
func (s *Session) Undo(ctx context.Context) (service.Task, bool, error) {
	if s.state.LastDeleted == nil {
		return service.Task{}, false, nil
	}

	buf := *s.state.LastDeleted
	restored, err := s.svc.CreateTask(ctx, service.Task{
		Title:       buf.Title,
		DueDateTime: buf.DueDateTime,
		Priority:    buf.Priority,
		Completed:   buf.Completed,
		CreatedAt:   buf.CreatedAt,
		ListID:      buf.ListID,
	})
	if err != nil {
		return service.Task{}, false, err
	}

	s.state.LastDeleted = nil
	if list, ok := s.ActiveList(); ok && list.ID == restored.ListID {
		s.tasks = append(s.tasks, restored)
	}
	return restored, true, nil
}

func (s *Session) requireActiveMember(ctx context.Context) error {
	list, ok := s.ActiveList()
	if !ok {
		return fmt.Errorf("%w: no active list", service.ErrNotFound)
	}
	return access.RequireMember(ctx, s.svc, s.user, list)
}

func (s *Session) patchTask(t service.Task) {
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return
		}
	}
}

func (s *Session) removeTask(id string) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}
