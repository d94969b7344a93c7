package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/collab"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
)

func init() {
	Register(&RevokeCmd{})
}

// RevokeCmd implements the revoke command. Revoking someone who is not a
// collaborator is a no-op.
type RevokeCmd struct {
	list string
}

func (c *RevokeCmd) Name() string       { return "revoke" }
func (c *RevokeCmd) Aliases() []string  { return []string{"unshare"} }
func (c *RevokeCmd) Synopsis() string   { return "Remove a collaborator from a list you own" }
func (c *RevokeCmd) Usage() string      { return "taskdeck revoke [-l <list>] <email>" }
func (c *RevokeCmd) NeedsService() bool { return true }
func (c *RevokeCmd) NeedsAuth() bool    { return true }

func (c *RevokeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.list, "l", "", "list to operate on instead of the active one")
	fs.StringVar(&c.list, "list", "", "list to operate on instead of the active one")
}

func (c *RevokeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: collaborator email required")
		return exitcode.UserError
	}
	email := strings.TrimSpace(args[0])

	sess, err := openSession(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	list, err := pickList(sess, c.list)
	if err != nil {
		return fail(errOut, err)
	}

	if err := collab.NewManager(svc).Revoke(ctx, sess.User(), list, email); err != nil {
		return fail(errOut, err)
	}
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	return ok(out, cfg)
}
