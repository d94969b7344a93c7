package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
)

func init() {
	Register(&DeregisterCmd{})
}

// DeregisterCmd implements the deregister command. Deletion is permanent and
// needs both the password and an explicit --yes.
type DeregisterCmd struct {
	yes bool
}

func (c *DeregisterCmd) Name() string       { return "deregister" }
func (c *DeregisterCmd) Aliases() []string  { return []string{"delete-account"} }
func (c *DeregisterCmd) Synopsis() string   { return "Delete the account permanently" }
func (c *DeregisterCmd) Usage() string      { return "taskdeck deregister --yes <password>" }
func (c *DeregisterCmd) NeedsService() bool { return true }
func (c *DeregisterCmd) NeedsAuth() bool    { return true }

func (c *DeregisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "confirm the permanent deletion")
}

func (c *DeregisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}
	if !c.yes {
		fmt.Fprintln(errOut, "error: deleting the account is permanent, pass --yes to confirm")
		return exitcode.UserError
	}

	if err := svc.DeleteAccount(ctx, args[0]); err != nil {
		return fail(errOut, err)
	}

	// The session state belonged to the account that no longer exists.
	if err := os.Remove(cfg.SessionPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(errOut, "error: failed to remove session state: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "account deleted")
	}
	return exitcode.Success
}
