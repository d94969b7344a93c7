package commands

import (
	"context"
	"flag"
	"io"

	"taskdeck/internal/access"
	"taskdeck/internal/collab"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
)

func init() {
	Register(&CollaboratorsCmd{})
}

// CollaboratorsCmd implements the collaborators command: the member roster
// of a list, owner first. Any member may read it.
type CollaboratorsCmd struct {
	list string
}

func (c *CollaboratorsCmd) Name() string       { return "collaborators" }
func (c *CollaboratorsCmd) Aliases() []string  { return []string{"members"} }
func (c *CollaboratorsCmd) Synopsis() string   { return "Print a list's members" }
func (c *CollaboratorsCmd) Usage() string      { return "taskdeck collaborators [-l <list>]" }
func (c *CollaboratorsCmd) NeedsService() bool { return true }
func (c *CollaboratorsCmd) NeedsAuth() bool    { return true }

func (c *CollaboratorsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.list, "l", "", "list to inspect instead of the active one")
	fs.StringVar(&c.list, "list", "", "list to inspect instead of the active one")
}

func (c *CollaboratorsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess, err := openSession(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	list, err := pickList(sess, c.list)
	if err != nil {
		return fail(errOut, err)
	}
	if err := access.RequireMember(ctx, svc, sess.User(), list); err != nil {
		return fail(errOut, err)
	}

	members, err := collab.NewManager(svc).Roster(ctx, list)
	if err != nil {
		return fail(errOut, err)
	}

	for _, m := range members {
		output.FormatMember(out, m)
	}
	return exitcode.Success
}
