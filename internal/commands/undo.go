package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
)

func init() {
	Register(&UndoCmd{})
}

// UndoCmd implements the undo command: restore the most recently deleted
// task. Running it with an empty buffer is not an error.
type UndoCmd struct{}

func (c *UndoCmd) Name() string       { return "undo" }
func (c *UndoCmd) Aliases() []string  { return nil }
func (c *UndoCmd) Synopsis() string   { return "Restore the last deleted task" }
func (c *UndoCmd) Usage() string      { return "taskdeck undo" }
func (c *UndoCmd) NeedsService() bool { return true }
func (c *UndoCmd) NeedsAuth() bool    { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess, err := openSession(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}

	task, restored, err := sess.Undo(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		if restored {
			fmt.Fprintf(out, "restored %q\n", task.Title)
		} else {
			fmt.Fprintln(out, "nothing to undo")
		}
	}
	return exitcode.Success
}
