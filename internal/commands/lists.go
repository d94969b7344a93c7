package commands

import (
	"context"
	"flag"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command: owned lists in creation order,
// then lists shared with the user, with the active list marked.
type ListsCmd struct{}

func (c *ListsCmd) Name() string       { return "lists" }
func (c *ListsCmd) Aliases() []string  { return nil }
func (c *ListsCmd) Synopsis() string   { return "Print all accessible lists" }
func (c *ListsCmd) Usage() string      { return "taskdeck lists [common flags]" }
func (c *ListsCmd) NeedsService() bool { return true }
func (c *ListsCmd) NeedsAuth() bool    { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess, err := openSession(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}

	active, _ := sess.ActiveList()
	for _, list := range sess.Lists() {
		role := ""
		if list.OwnerID != sess.User().ID {
			role = "shared with you"
		}
		output.FormatListName(out, list, list.ID == active.ID, role)
	}

	return exitcode.Success
}
