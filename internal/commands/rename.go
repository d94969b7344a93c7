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
	Register(&RenameCmd{})
}

// RenameCmd implements the rename command (display name).
type RenameCmd struct{}

func (c *RenameCmd) Name() string       { return "rename" }
func (c *RenameCmd) Aliases() []string  { return nil }
func (c *RenameCmd) Synopsis() string   { return "Change the display name" }
func (c *RenameCmd) Usage() string      { return "taskdeck rename <name...>" }
func (c *RenameCmd) NeedsService() bool { return true }
func (c *RenameCmd) NeedsAuth() bool    { return true }

func (c *RenameCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RenameCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: name required")
		return exitcode.UserError
	}

	if err := svc.UpdateDisplayName(ctx, name); err != nil {
		return fail(errOut, err)
	}

	return ok(out, cfg)
}
