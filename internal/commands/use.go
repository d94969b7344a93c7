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
	Register(&UseCmd{})
}

// UseCmd implements the use command: switch the active list by name.
type UseCmd struct{}

func (c *UseCmd) Name() string       { return "use" }
func (c *UseCmd) Aliases() []string  { return []string{"switch"} }
func (c *UseCmd) Synopsis() string   { return "Switch the active list" }
func (c *UseCmd) Usage() string      { return "taskdeck use <list name...>" }
func (c *UseCmd) NeedsService() bool { return true }
func (c *UseCmd) NeedsAuth() bool    { return true }

func (c *UseCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UseCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	sess, err := openSession(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}

	list, err := sess.SwitchList(name)
	if err != nil {
		return fail(errOut, err)
	}
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "using list %q\n", list.Name)
	}
	return exitcode.Success
}
