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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command: toggle a task's completion flag by
// its position in the current view.
type DoneCmd struct {
	list string
}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"d", "toggle"} }
func (c *DoneCmd) Synopsis() string   { return "Toggle a task done or not done" }
func (c *DoneCmd) Usage() string      { return "taskdeck done [-l <list>] <number>" }
func (c *DoneCmd) NeedsService() bool { return true }
func (c *DoneCmd) NeedsAuth() bool    { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.list, "l", "", "list to operate on instead of the active one")
	fs.StringVar(&c.list, "list", "", "list to operate on instead of the active one")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task number required")
		return exitcode.UserError
	}
	num, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: not a task number: %q\n", args[0])
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

	task, err := sess.ToggleTask(ctx, num)
	if err != nil {
		return fail(errOut, err)
	}
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		state := "not done"
		if task.Completed {
			state = "done"
		}
		fmt.Fprintf(out, "%q is %s\n", task.Title, state)
	}
	return exitcode.Success
}
