package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Flags that were not set on the
// command line keep the task's current values.
type EditCmd struct {
	fs       *flag.FlagSet
	list     string
	title    string
	due      string
	priority string
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"e"} }
func (c *EditCmd) Synopsis() string  { return "Edit a task's title, due date or priority" }
func (c *EditCmd) Usage() string {
	return "taskdeck edit [-l <list>] [--title <title>] [--due \"YYYY-MM-DD HH:MM\"] [--priority High|Mid|Low] <number>"
}
func (c *EditCmd) NeedsService() bool { return true }
func (c *EditCmd) NeedsAuth() bool    { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fs = fs
	fs.StringVar(&c.list, "l", "", "list to operate on instead of the active one")
	fs.StringVar(&c.list, "list", "", "list to operate on instead of the active one")
	fs.StringVar(&c.title, "title", "", "new title")
	fs.StringVar(&c.due, "due", "", "new due date-time, \"YYYY-MM-DD HH:MM\"")
	fs.StringVar(&c.priority, "priority", "", "new priority: High, Mid or Low")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task number required")
		return exitcode.UserError
	}
	num, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: not a task number: %q\n", args[0])
		return exitcode.UserError
	}

	set := map[string]bool{}
	c.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["title"] && !set["due"] && !set["priority"] {
		fmt.Fprintln(errOut, "error: nothing to change, pass --title, --due or --priority")
		return exitcode.UserError
	}

	sess, err := openSession(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	if _, err := pickList(sess, c.list); err != nil {
		return fail(errOut, err)
	}
	if err := sess.LoadTasks(ctx); err != nil {
		return fail(errOut, err)
	}

	cur, err := sess.TaskAt(num)
	if err != nil {
		return fail(errOut, err)
	}

	title, due, priority := cur.Title, cur.DueDateTime, cur.Priority
	if set["title"] {
		title = c.title
	}
	if set["due"] {
		due = c.due
	}
	if set["priority"] {
		priority, err = service.ParsePriority(c.priority)
		if err != nil {
			return fail(errOut, err)
		}
	}

	task, err := sess.EditTask(ctx, num, title, due, priority)
	if err != nil {
		return fail(errOut, err)
	}
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "updated %q\n", task.Title)
	}
	return exitcode.Success
}
