package commands_test

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/testutil"
)

// runCommand parses args the way dispatch does (flags then positionals) and
// runs the command against a FakeService and a throwaway config dir.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runCommandDir(t, cmd, svc, args, quiet, t.TempDir())
}

func runCommandDir(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool, dir string) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("flag parse: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{Dir: dir, Quiet: quiet}

	code = cmd.Run(context.Background(), cfg, svc, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func seedAlice(svc *testutil.FakeService) service.User {
	alice := svc.AddUser("u1", "alice", "alice@example.com")
	svc.SetCurrentUser(alice.ID)
	return alice
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskdeck 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("help output should contain 'Usage:'")
	}
}

// Tests for lists command
func TestListsCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)
	bob := svc.AddUser("u2", "bob", "bob@example.com")
	svc.AddList("l1", "Groceries", alice.ID)
	shared := svc.AddList("l2", "Trip", bob.ID)
	svc.AddGrant(shared.ID, alice.ID)

	cmd := &commands.ListsCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	expected := "* My Tasks [personal]\n  Groceries\n  Trip (shared with you)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

// Tests for list command
func TestListCommand_ActiveListWithTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)
	personal := service.PersonalListID(alice.ID)
	svc.AddTask(personal, "Buy milk", service.PriorityMid, "")
	svc.AddTask(personal, "Buy eggs", service.PriorityHigh, "2024-05-01 08:00")

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	// dateAdded default: newest first.
	expected := "------------\nMy Tasks\n------------\n" +
		"   1 - Buy eggs  [High] due 2024-05-01 08:00\n" +
		"   2 - Buy milk  [Mid] due ?\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()
	seedAlice(svc)

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "no tasks\n" {
		t.Errorf("expected 'no tasks\\n', got %q", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	svc := testutil.NewFakeService()
	seedAlice(svc)

	cmd := &commands.ListCmd{}
	stdout, _, code := runCommand(t, cmd, svc, nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_OtherList(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)
	svc.AddList("l1", "Groceries", alice.ID)
	svc.AddTask("l1", "Bread", service.PriorityMid, "")

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"--list", "Groceries"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	expected := "------------\nGroceries\n------------\n   1 - Bread  [Mid] due ?\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_NotSignedIn(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "not signed in") {
		t.Errorf("expected a not-signed-in error, got %q", stderr)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)

	cmd := &commands.AddCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Buy", "groceries"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "added \"Buy groceries\"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	tasks, _ := svc.TasksForList(context.Background(), service.PersonalListID(alice.ID))
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Title != "Buy groceries" {
		t.Errorf("expected title 'Buy groceries', got %q", tasks[0].Title)
	}
	if tasks[0].Priority != service.PriorityMid {
		t.Errorf("expected the default Mid priority, got %q", tasks[0].Priority)
	}
}

func TestAddCommand_WithDueAndPriority(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)

	cmd := &commands.AddCmd{}
	args := []string{"--due", "2024-05-01 08:00", "--priority", "High", "Walk", "dog"}
	_, stderr, code := runCommand(t, cmd, svc, args, true)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}

	tasks, _ := svc.TasksForList(context.Background(), service.PersonalListID(alice.ID))
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].DueDateTime != "2024-05-01 08:00" || tasks[0].Priority != service.PriorityHigh {
		t.Errorf("task fields wrong: %+v", tasks[0])
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc := testutil.NewFakeService()
	seedAlice(svc)

	cmd := &commands.AddCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: task title required\n" {
		t.Errorf("expected title required error, got %q", stderr)
	}
}

func TestAddCommand_BadPriority(t *testing.T) {
	svc := testutil.NewFakeService()
	seedAlice(svc)

	cmd := &commands.AddCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"--priority", "Urgent", "Walk", "dog"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "priority must be High, Mid or Low") {
		t.Errorf("expected priority error, got %q", stderr)
	}
}

func TestAddCommand_BadDue(t *testing.T) {
	svc := testutil.NewFakeService()
	seedAlice(svc)

	cmd := &commands.AddCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"--due", "tomorrow", "Walk", "dog"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "due must look like") {
		t.Errorf("expected due format error, got %q", stderr)
	}
}

// Tests for done command
func TestDoneCommand_Toggle(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)
	personal := service.PersonalListID(alice.ID)
	svc.AddTask(personal, "Buy milk", service.PriorityMid, "")

	cmd := &commands.DoneCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if stdout != "\"Buy milk\" is done\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	tasks, _ := svc.TasksForList(context.Background(), personal)
	if !tasks[0].Completed {
		t.Error("expected the task completed")
	}

	// Toggling again flips it back.
	stdout, _, code = runCommand(t, &commands.DoneCmd{}, svc, []string{"1"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success on second toggle, got %d", code)
	}
	if stdout != "\"Buy milk\" is not done\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDoneCommand_InvalidNumber(t *testing.T) {
	svc := testutil.NewFakeService()
	seedAlice(svc)

	cmd := &commands.DoneCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"abc"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: not a task number: \"abc\"\n" {
		t.Errorf("expected invalid number error, got %q", stderr)
	}
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)
	svc.AddTask(service.PersonalListID(alice.ID), "Only task", service.PriorityMid, "")

	cmd := &commands.DoneCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"5"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "task number out of range: 5") {
		t.Errorf("expected out of range error, got %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand_PartialUpdate(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)
	personal := service.PersonalListID(alice.ID)
	svc.AddTask(personal, "Buy milk", service.PriorityMid, "2024-05-01 08:00")

	cmd := &commands.EditCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"--priority", "High", "1"}, true)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}

	tasks, _ := svc.TasksForList(context.Background(), personal)
	if tasks[0].Priority != service.PriorityHigh {
		t.Errorf("expected priority High, got %q", tasks[0].Priority)
	}
	// Unset flags keep current values.
	if tasks[0].Title != "Buy milk" || tasks[0].DueDateTime != "2024-05-01 08:00" {
		t.Errorf("untouched fields changed: %+v", tasks[0])
	}
}

func TestEditCommand_NothingToChange(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)
	svc.AddTask(service.PersonalListID(alice.ID), "Buy milk", service.PriorityMid, "")

	cmd := &commands.EditCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "nothing to change") {
		t.Errorf("expected nothing-to-change error, got %q", stderr)
	}
}

// Tests for rm and undo
func TestRmAndUndo(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)
	personal := service.PersonalListID(alice.ID)
	svc.AddTask(personal, "Buy milk", service.PriorityMid, "")
	dir := t.TempDir()

	stdout, stderr, code := runCommandDir(t, &commands.RemoveCmd{}, svc, []string{"1"}, false, dir)
	if code != exitcode.Success {
		t.Fatalf("rm: expected success, got %d (%s)", code, stderr)
	}
	if stdout != "deleted \"Buy milk\" (run: taskdeck undo)\n" {
		t.Errorf("unexpected rm stdout %q", stdout)
	}

	tasks, _ := svc.TasksForList(context.Background(), personal)
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks after rm, got %d", len(tasks))
	}

	// Undo in a fresh invocation sharing the same config dir.
	stdout, stderr, code = runCommandDir(t, &commands.UndoCmd{}, svc, nil, false, dir)
	if code != exitcode.Success {
		t.Fatalf("undo: expected success, got %d (%s)", code, stderr)
	}
	if stdout != "restored \"Buy milk\"\n" {
		t.Errorf("unexpected undo stdout %q", stdout)
	}

	tasks, _ = svc.TasksForList(context.Background(), personal)
	if len(tasks) != 1 {
		t.Fatalf("expected the task back, got %d", len(tasks))
	}

	// A second undo is a no-op success.
	stdout, _, code = runCommandDir(t, &commands.UndoCmd{}, svc, nil, false, dir)
	if code != exitcode.Success {
		t.Fatalf("second undo: expected success, got %d", code)
	}
	if stdout != "nothing to undo\n" {
		t.Errorf("unexpected second undo stdout %q", stdout)
	}
}

// Tests for createlist and use
func TestCreateListCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)

	cmd := &commands.CreateListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Trip", "Planning"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if stdout != "created list \"Trip Planning\"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	lists, _ := svc.ListsOwnedBy(context.Background(), alice.ID)
	if len(lists) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(lists))
	}
	if lists[1].Name != "Trip Planning" || lists[1].Kind != service.ListShared {
		t.Errorf("unexpected list %+v", lists[1])
	}
}

func TestCreateListCommand_NoName(t *testing.T) {
	svc := testutil.NewFakeService()
	seedAlice(svc)

	cmd := &commands.CreateListCmd{}
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: list name required\n" {
		t.Errorf("expected list name required error, got %q", stderr)
	}
}

func TestUseCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := seedAlice(svc)
	svc.AddList("l1", "Groceries", alice.ID)
	dir := t.TempDir()

	stdout, stderr, code := runCommandDir(t, &commands.UseCmd{}, svc, []string{"groceries"}, false, dir)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if stdout != "using list \"Groceries\"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	// The choice persists into the next invocation.
	svc.AddTask("l1", "Bread", service.PriorityMid, "")
	stdout, _, code = runCommandDir(t, &commands.ListCmd{}, svc, nil, false, dir)
	if code != exitcode.Success {
		t.Fatalf("list: expected success, got %d", code)
	}
	if !strings.Contains(stdout, "Groceries") || !strings.Contains(stdout, "Bread") {
		t.Errorf("expected the switched list's view, got %q", stdout)
	}
}

func TestUseCommand_UnknownList(t *testing.T) {
	svc := testutil.NewFakeService()
	seedAlice(svc)

	cmd := &commands.UseCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"Errands"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "Errands") {
		t.Errorf("expected the unknown list named, got %q", stderr)
	}
}

// Tests for sort command
func TestSortCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	seedAlice(svc)
	dir := t.TempDir()

	// No argument prints the current key.
	stdout, stderr, code := runCommandDir(t, &commands.SortCmd{}, svc, nil, false, dir)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if stdout != "dateAdded\n" {
		t.Errorf("expected the default key, got %q", stdout)
	}

	_, stderr, code = runCommandDir(t, &commands.SortCmd{}, svc, []string{"priority"}, true, dir)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}

	stdout, _, code = runCommandDir(t, &commands.SortCmd{}, svc, nil, false, dir)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if stdout != "priority\n" {
		t.Errorf("expected the persisted key, got %q", stdout)
	}
}

func TestSortCommand_UnknownKey(t *testing.T) {
	svc := testutil.NewFakeService()
	seedAlice(svc)

	_, stderr, code := runCommand(t, &commands.SortCmd{}, svc, []string{"alphabetical"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "sort key must be") {
		t.Errorf("expected sort key error, got %q", stderr)
	}
}
