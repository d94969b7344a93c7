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
	Register(&CreateListCmd{})
}

// CreateListCmd implements the createlist command. The new list becomes
// the active list.
type CreateListCmd struct{}

func (c *CreateListCmd) Name() string       { return "createlist" }
func (c *CreateListCmd) Aliases() []string  { return []string{"cl"} }
func (c *CreateListCmd) Synopsis() string   { return "Create a shared list" }
func (c *CreateListCmd) Usage() string      { return "taskdeck createlist <name...>" }
func (c *CreateListCmd) NeedsService() bool { return true }
func (c *CreateListCmd) NeedsAuth() bool    { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	sess, err := openSession(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}

	list, err := sess.CreateList(ctx, name)
	if err != nil {
		return fail(errOut, err)
	}
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "created list %q\n", list.Name)
	}
	return exitcode.Success
}
