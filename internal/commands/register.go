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
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username string
	email    string
	password string
	confirm  string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return nil }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskdeck register --username <name> --email <addr> --password <pw> --confirm <pw>"
}
func (c *RegisterCmd) NeedsService() bool { return true }
func (c *RegisterCmd) NeedsAuth() bool    { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	username := strings.TrimSpace(c.username)
	email := strings.TrimSpace(c.email)

	if username == "" || email == "" {
		fmt.Fprintln(errOut, "error: --username and --email are required")
		return exitcode.UserError
	}
	if c.password != c.confirm {
		return fail(errOut, fmt.Errorf("%w: passwords do not match", service.ErrValidation))
	}
	if len(c.password) < 6 {
		return fail(errOut, fmt.Errorf("%w: password must be at least 6 characters long", service.ErrValidation))
	}

	if _, err := svc.Register(ctx, username, email, c.password); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "account created, check your email to verify it, then run: taskdeck login")
	}
	return exitcode.Success
}
