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
	Register(&RemoveCmd{})
}

// RemoveCmd implements the rm command. The deleted task lands in the undo
// buffer, replacing whatever was there.
type RemoveCmd struct {
	list string
}

func (c *RemoveCmd) Name() string       { return "rm" }
func (c *RemoveCmd) Aliases() []string  { return []string{"remove", "del"} }
func (c *RemoveCmd) Synopsis() string   { return "Delete a task" }
func (c *RemoveCmd) Usage() string      { return "taskdeck rm [-l <list>] <number>" }
func (c *RemoveCmd) NeedsService() bool { return true }
func (c *RemoveCmd) NeedsAuth() bool    { return true }

func (c *RemoveCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.list, "l", "", "list to operate on instead of the active one")
	fs.StringVar(&c.list, "list", "", "list to operate on instead of the active one")
}

func (c *RemoveCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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

	task, err := sess.DeleteTask(ctx, num)
	if err != nil {
		return fail(errOut, err)
	}
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "deleted %q (run: taskdeck undo)\n", task.Title)
	}
	return exitcode.Success
}
