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
	Register(&InviteCmd{})
}

// InviteCmd implements the invite command: grant a user access to a list
// the caller owns, looked up by email.
type InviteCmd struct {
	list string
}

func (c *InviteCmd) Name() string       { return "invite" }
func (c *InviteCmd) Aliases() []string  { return []string{"share"} }
func (c *InviteCmd) Synopsis() string   { return "Invite a collaborator to a list you own" }
func (c *InviteCmd) Usage() string      { return "taskdeck invite [-l <list>] <email>" }
func (c *InviteCmd) NeedsService() bool { return true }
func (c *InviteCmd) NeedsAuth() bool    { return true }

func (c *InviteCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.list, "l", "", "list to share instead of the active one")
	fs.StringVar(&c.list, "list", "", "list to share instead of the active one")
}

func (c *InviteCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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

	if _, err := collab.NewManager(svc).Invite(ctx, sess.User(), list, email); err != nil {
		return fail(errOut, err)
	}
	if err := saveSession(cfg, sess); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "invited %s to %q\n", email, list.Name)
	}
	return exitcode.Success
}
