package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/internal/core/styles"
)

type LogoutCmd struct {
	flags *Flags
	app   *bookreview.App
}

// NewLogoutCmd creates a new logout command
func NewLogoutCmd(flags *Flags, app *bookreview.App) *LogoutCmd {
	return &LogoutCmd{flags: flags, app: app}
}

// Register adds the logout command to the application
func (cmd *LogoutCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "logout",
		Usage:     "Sign out and forget the stored session",
		UsageText: "bookreview logout",
		Action:    cmd.run,
	})
	return app
}

func (cmd *LogoutCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	if !cmd.app.Session.IsAuthenticated(ctx) {
		_, _ = fmt.Fprintln(out, "Not signed in")
		return nil
	}

	cmd.app.Session.Logout(ctx)
	_, _ = fmt.Fprintf(out, "%s Signed out\n", styles.IconCheck)
	return nil
}
