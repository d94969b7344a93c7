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
	Register(&PasswdCmd{})
}

// PasswdCmd implements the passwd command.
type PasswdCmd struct{}

func (c *PasswdCmd) Name() string      { return "passwd" }
func (c *PasswdCmd) Aliases() []string { return nil }
func (c *PasswdCmd) Synopsis() string  { return "Change the account password" }
func (c *PasswdCmd) Usage() string {
	return "taskdeck passwd <current> <new> <confirm>"
}
func (c *PasswdCmd) NeedsService() bool { return true }
func (c *PasswdCmd) NeedsAuth() bool    { return true }

func (c *PasswdCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PasswdCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 3 {
		fmt.Fprintln(errOut, "error: current, new and confirm passwords required")
		return exitcode.UserError
	}
	current, next, confirm := args[0], args[1], args[2]

	if next != confirm {
		return fail(errOut, fmt.Errorf("%w: new passwords do not match", service.ErrValidation))
	}
	if len(next) < 6 {
		return fail(errOut, fmt.Errorf("%w: password must be at least 6 characters long", service.ErrValidation))
	}

	if err := svc.UpdatePassword(ctx, current, next); err != nil {
		return fail(errOut, err)
	}

	return ok(out, cfg)
}
