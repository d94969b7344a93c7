package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	list     string
	due      string
	priority string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"a"} }
func (c *AddCmd) Synopsis() string  { return "Add a task to the active list" }
func (c *AddCmd) Usage() string {
	return "taskdeck add [-l <list>] [--due \"YYYY-MM-DD HH:MM\"] [--priority High|Mid|Low] <title...>"
}
func (c *AddCmd) NeedsService() bool { return true }
func (c *AddCmd) NeedsAuth() bool    { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.list, "l", "", "list to add to instead of the active one")
	fs.StringVar(&c.list, "list", "", "list to add to instead of the active one")
	fs.StringVar(&c.due, "due", "", "due date-time, \"YYYY-MM-DD HH:MM\"")
	fs.StringVar(&c.priority, "priority", string(service.PriorityMid), "priority: High, Mid or Low")
	fs.StringVar(&c.priority, "p", string(service.PriorityMid), "priority: High, Mid or Low")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: task title required")
		return exitcode.UserError
	}

	priority, err := service.ParsePriority(c.priority)
	if err != nil {
		return fail(errOut, err)
	}

	sess, err := openSession(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	if _, err := pickList(sess, c.list); err != nil {
		return fail(errOut, err)
	}

	task, err := sess.AddTask(ctx, title, c.due, priority)
	if err != nil {
		return fail(errOut, err)
	}
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "added %q\n", task.Title)
	}
	return exitcode.Success
}
