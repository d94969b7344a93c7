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
	Register(&RecoverCmd{})
}

// RecoverCmd implements the recover command (password-reset email).
type RecoverCmd struct{}

func (c *RecoverCmd) Name() string       { return "recover" }
func (c *RecoverCmd) Aliases() []string  { return nil }
func (c *RecoverCmd) Synopsis() string   { return "Send a password-reset email" }
func (c *RecoverCmd) Usage() string      { return "taskdeck recover <email>" }
func (c *RecoverCmd) NeedsService() bool { return true }
func (c *RecoverCmd) NeedsAuth() bool    { return false }

func (c *RecoverCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RecoverCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}

	if err := svc.SendPasswordReset(ctx, strings.TrimSpace(args[0])); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "password reset link sent")
	}
	return exitcode.Success
}
