package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command: the active list's tasks in the
// session sort order.
type ListCmd struct {
	list string
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "Print the active list's tasks" }
func (c *ListCmd) Usage() string      { return "taskdeck list [-l <list>]" }
func (c *ListCmd) NeedsService() bool { return true }
func (c *ListCmd) NeedsAuth() bool    { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.list, "l", "", "list to show instead of the active one")
	fs.StringVar(&c.list, "list", "", "list to show instead of the active one")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess, err := openSession(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}

	list, err := pickList(sess, c.list)
	if err != nil {
		return fail(errOut, err)
	}
	if err := sess.LoadTasks(ctx); err != nil {
		return fail(errOut, err)
	}
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	tasks := sess.Tasks()
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks")
		}
		return exitcode.Success
	}

	output.FormatListHeader(out, list)
	for i, t := range tasks {
		output.FormatTask(out, i+1, t)
	}

	return exitcode.Success
}
