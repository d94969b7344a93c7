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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskdeck help" }
func (c *HelpCmd) NeedsService() bool { return false }
func (c *HelpCmd) NeedsAuth() bool    { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskdeck                                          List the active list's tasks
  taskdeck list [-l <list>]                         List tasks, optionally from another list
  taskdeck add [-l <list>] [--due "YYYY-MM-DD HH:MM"] [--priority High|Mid|Low] <title...>
  taskdeck done [-l <list>] <number>                Toggle a task done or not done
  taskdeck edit [-l <list>] [--title <t>] [--due <d>] [--priority <p>] <number>
  taskdeck rm [-l <list>] <number>                  Delete a task
  taskdeck undo                                     Restore the last deleted task
  taskdeck sort [dateAdded|dueDate|priority]        Set or show the sort order
  taskdeck lists                                    Print all accessible lists
  taskdeck createlist <name...>                     Create a shared list
  taskdeck use <name...>                            Switch the active list
  taskdeck invite [-l <list>] <email>               Invite a collaborator
  taskdeck revoke [-l <list>] <email>               Remove a collaborator
  taskdeck collaborators [-l <list>]                Print a list's members
  taskdeck register --username <u> --email <e> --password <p> --confirm <p>
  taskdeck login <email> <password>
  taskdeck logout
  taskdeck whoami
  taskdeck rename <name...>                         Change the display name
  taskdeck passwd <current> <new> <confirm>
  taskdeck recover <email>                          Send a password-reset email
  taskdeck deregister --yes <password>              Delete the account permanently
  taskdeck help
  taskdeck version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
