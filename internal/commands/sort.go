package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/taskview"
)

func init() {
	Register(&SortCmd{})
}

// SortCmd implements the sort command. Without an argument it prints the
// current sort key.
type SortCmd struct{}

func (c *SortCmd) Name() string       { return "sort" }
func (c *SortCmd) Aliases() []string  { return nil }
func (c *SortCmd) Synopsis() string   { return "Set or show the task sort order" }
func (c *SortCmd) Usage() string      { return "taskdeck sort [dateAdded|dueDate|priority]" }
func (c *SortCmd) NeedsService() bool { return true }
func (c *SortCmd) NeedsAuth() bool    { return true }

func (c *SortCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SortCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintln(errOut, "error: at most one sort key")
		return exitcode.UserError
	}

	sess, err := openSession(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}

	if len(args) == 0 {
		fmt.Fprintln(out, sess.State().SortKey)
		return exitcode.Success
	}

	key, err := taskview.ParseSortKey(args[0])
	if err != nil {
		return fail(errOut, err)
	}
	sess.SetSortKey(key)
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	return ok(out, cfg)
}
