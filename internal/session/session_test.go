package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/taskview"
	"taskdeck/internal/testutil"
)

func newSession(t *testing.T, svc *testutil.FakeService, userID string) *session.Session {
	t.Helper()
	svc.SetCurrentUser(userID)
	user, err := svc.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	sess := session.New(svc, user, session.State{})
	if err := sess.LoadLists(context.Background()); err != nil {
		t.Fatalf("LoadLists: %v", err)
	}
	return sess
}

func TestLoadLists_OwnedThenShared(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	bob := svc.AddUser("u2", "bob", "bob@example.com")
	svc.AddList("l1", "Groceries", alice.ID)
	shared := svc.AddList("l2", "Trip", bob.ID)
	svc.AddGrant(shared.ID, alice.ID)

	sess := newSession(t, svc, alice.ID)

	lists := sess.Lists()
	if len(lists) != 3 {
		t.Fatalf("expected 3 lists, got %d", len(lists))
	}
	if lists[0].ID != service.PersonalListID(alice.ID) {
		t.Errorf("expected the personal list first, got %q", lists[0].ID)
	}
	if lists[1].ID != "l1" || lists[2].ID != "l2" {
		t.Errorf("expected owned then shared, got %q, %q", lists[1].ID, lists[2].ID)
	}

	active, ok := sess.ActiveList()
	if !ok || active.ID != service.PersonalListID(alice.ID) {
		t.Errorf("expected the personal list active by default, got %+v", active)
	}
}

func TestLoadLists_StaleGrantSkipped(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	svc.AddGrant("gone", alice.ID)

	sess := newSession(t, svc, alice.ID)

	if len(sess.Lists()) != 1 {
		t.Errorf("expected only the personal list, got %d lists", len(sess.Lists()))
	}
}

func TestSwitchList(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	svc.AddList("l1", "Groceries", alice.ID)

	sess := newSession(t, svc, alice.ID)

	list, err := sess.SwitchList("  groceries ")
	if err != nil {
		t.Fatalf("SwitchList: %v", err)
	}
	if list.ID != "l1" {
		t.Errorf("expected l1, got %q", list.ID)
	}

	if _, err := sess.SwitchList("Errands"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSwitchList_Ambiguous(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	svc.AddList("l1", "Groceries", alice.ID)
	svc.AddList("l2", "groceries", alice.ID)

	sess := newSession(t, svc, alice.ID)

	if _, err := sess.SwitchList("Groceries"); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation for ambiguous name, got %v", err)
	}
}

func TestCreateList_BecomesActive(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")

	sess := newSession(t, svc, alice.ID)

	list, err := sess.CreateList(context.Background(), "Trip")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	if list.Kind != service.ListShared {
		t.Errorf("expected a shared list, got %q", list.Kind)
	}

	active, ok := sess.ActiveList()
	if !ok || active.ID != list.ID {
		t.Errorf("expected the new list active, got %+v", active)
	}
}

func TestCreateList_DuplicateNameAllowed(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	svc.AddList("l1", "Trip", alice.ID)

	sess := newSession(t, svc, alice.ID)

	if _, err := sess.CreateList(context.Background(), "Trip"); err != nil {
		t.Errorf("duplicate names are allowed, got %v", err)
	}
}

func TestLoadTasks_ScopedToActiveList(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	svc.AddList("l1", "Groceries", alice.ID)
	svc.AddTask(service.PersonalListID(alice.ID), "personal task", service.PriorityMid, "")
	svc.AddTask("l1", "grocery task", service.PriorityMid, "")

	sess := newSession(t, svc, alice.ID)
	if err := sess.LoadTasks(context.Background()); err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}

	tasks := sess.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Title != "personal task" {
		t.Errorf("task from another list leaked into the view: %q", tasks[0].Title)
	}
}

func TestLoadTasks_NoAccess(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	bob := svc.AddUser("u2", "bob", "bob@example.com")
	shared := svc.AddList("l1", "Trip", bob.ID)
	grant := svc.AddGrant(shared.ID, alice.ID)

	sess := newSession(t, svc, alice.ID)
	if _, err := sess.SwitchList("Trip"); err != nil {
		t.Fatalf("SwitchList: %v", err)
	}

	// Revoked between directory load and task load.
	if err := svc.DeleteGrant(context.Background(), grant.ID); err != nil {
		t.Fatalf("DeleteGrant: %v", err)
	}

	if err := sess.LoadTasks(context.Background()); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLoadLists_FailureKeepsCache(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	svc.AddList("l1", "Groceries", alice.ID)

	sess := newSession(t, svc, alice.ID)
	if len(sess.Lists()) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(sess.Lists()))
	}

	svc.ListsOwnedByErr = service.ErrUnavailable
	if err := sess.LoadLists(context.Background()); !errors.Is(err, service.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	if len(sess.Lists()) != 2 {
		t.Errorf("a failed reload must not touch the directory, got %d lists", len(sess.Lists()))
	}
	if _, ok := sess.ActiveList(); !ok {
		t.Error("the active list should survive a failed reload")
	}
}

func TestLoadTasks_FailureKeepsCache(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	svc.AddTask(service.PersonalListID(alice.ID), "Buy milk", service.PriorityMid, "")

	sess := newSession(t, svc, alice.ID)
	if err := sess.LoadTasks(context.Background()); err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}

	svc.TasksForListErr = service.ErrUnavailable
	if err := sess.LoadTasks(context.Background()); !errors.Is(err, service.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	tasks := sess.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Errorf("a failed reload must not touch the task cache, got %+v", tasks)
	}
}

func TestAddTask_Validation(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	sess := newSession(t, svc, alice.ID)
	ctx := context.Background()

	if _, err := sess.AddTask(ctx, "   ", "", service.PriorityMid); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation for empty title, got %v", err)
	}
	if _, err := sess.AddTask(ctx, "walk dog", "", "Urgent"); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown priority, got %v", err)
	}
	if _, err := sess.AddTask(ctx, "walk dog", "tomorrow", service.PriorityMid); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation for malformed due, got %v", err)
	}

	task, err := sess.AddTask(ctx, "walk dog", "2024-05-01 08:00", service.PriorityHigh)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected a creation timestamp")
	}
}

func TestToggleTask(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	svc.AddTask(service.PersonalListID(alice.ID), "walk dog", service.PriorityMid, "")

	sess := newSession(t, svc, alice.ID)
	if err := sess.LoadTasks(context.Background()); err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}

	task, err := sess.ToggleTask(context.Background(), 1)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if !task.Completed {
		t.Error("expected the task completed")
	}

	task, err = sess.ToggleTask(context.Background(), 1)
	if err != nil {
		t.Fatalf("second ToggleTask: %v", err)
	}
	if task.Completed {
		t.Error("expected the task back to not done")
	}
}

func TestTaskAt_OutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	sess := newSession(t, svc, alice.ID)

	if _, err := sess.TaskAt(1); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := sess.TaskAt(0); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation for zero, got %v", err)
	}
}

func TestDeleteAndUndo(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	seeded := svc.AddTask(service.PersonalListID(alice.ID), "walk dog", service.PriorityHigh, "2024-05-01 08:00")

	sess := newSession(t, svc, alice.ID)
	ctx := context.Background()
	if err := sess.LoadTasks(ctx); err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}

	deleted, err := sess.DeleteTask(ctx, 1)
	if err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if deleted.ID != seeded.ID {
		t.Fatalf("deleted the wrong task: %q", deleted.ID)
	}
	if len(sess.Tasks()) != 0 {
		t.Fatal("expected an empty view after delete")
	}

	restored, ok, err := sess.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !ok {
		t.Fatal("expected the undo buffer to be full")
	}
	if restored.ID == seeded.ID {
		t.Error("expected a fresh ID for the restored task")
	}
	if !restored.CreatedAt.Equal(seeded.CreatedAt) {
		t.Errorf("expected the original creation time preserved, got %v want %v", restored.CreatedAt, seeded.CreatedAt)
	}
	if restored.Title != seeded.Title || restored.DueDateTime != seeded.DueDateTime || restored.Priority != seeded.Priority {
		t.Errorf("restored task fields differ: %+v", restored)
	}

	// The buffer empties; a second undo is a no-op.
	if _, ok, err := sess.Undo(ctx); err != nil || ok {
		t.Errorf("expected an empty-buffer no-op, got ok=%v err=%v", ok, err)
	}
}

func TestDelete_OverwritesUndoBuffer(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	svc.AddTask(service.PersonalListID(alice.ID), "first", service.PriorityMid, "")
	svc.AddTask(service.PersonalListID(alice.ID), "second", service.PriorityMid, "")

	sess := newSession(t, svc, alice.ID)
	ctx := context.Background()
	if err := sess.LoadTasks(ctx); err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}

	// dateAdded view: "second" is position 1, "first" is position 2.
	if _, err := sess.DeleteTask(ctx, 2); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if _, err := sess.DeleteTask(ctx, 1); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	restored, ok, err := sess.Undo(ctx)
	if err != nil || !ok {
		t.Fatalf("Undo: ok=%v err=%v", ok, err)
	}
	if restored.Title != "second" {
		t.Errorf("expected the most recent delete restored, got %q", restored.Title)
	}
}

func TestSortKeyAffectsView(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	personal := service.PersonalListID(alice.ID)
	svc.AddTask(personal, "low", service.PriorityLow, "")
	svc.AddTask(personal, "high", service.PriorityHigh, "")

	sess := newSession(t, svc, alice.ID)
	if err := sess.LoadTasks(context.Background()); err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}

	// Default dateAdded: newest first.
	if got := sess.Tasks()[0].Title; got != "high" {
		t.Errorf("dateAdded view: expected %q first, got %q", "high", got)
	}

	sess.SetSortKey(taskview.SortPriority)
	if got := sess.Tasks()[0].Title; got != "high" {
		t.Errorf("priority view: expected %q first, got %q", "high", got)
	}

	sess.SetSortKey(taskview.SortDateAdded)
	if got := sess.Tasks()[1].Title; got != "low" {
		t.Errorf("dateAdded view: expected %q second, got %q", "low", got)
	}
}

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	task := service.Task{ID: "t1", Title: "walk dog", Priority: service.PriorityMid, ListID: "l1"}
	state := session.State{
		ActiveListID: "l1",
		SortKey:      taskview.SortPriority,
		LastDeleted:  &task,
	}
	if err := state.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := session.LoadState(path)
	if loaded.ActiveListID != "l1" || loaded.SortKey != taskview.SortPriority {
		t.Errorf("state did not round-trip: %+v", loaded)
	}
	if loaded.LastDeleted == nil || loaded.LastDeleted.Title != "walk dog" {
		t.Errorf("undo buffer did not round-trip: %+v", loaded.LastDeleted)
	}
}

func TestLoadState_MissingOrCorrupt(t *testing.T) {
	missing := session.LoadState(filepath.Join(t.TempDir(), "nope.json"))
	if missing.ActiveListID != "" || missing.LastDeleted != nil {
		t.Errorf("expected zero state for a missing file, got %+v", missing)
	}
}
