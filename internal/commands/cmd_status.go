package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/pkg/iojson"
)

type StatusCmd struct {
	flags *Flags
	app   *bookreview.App

	jsonOutput bool
}

// NewStatusCmd creates a new status command
func NewStatusCmd(flags *Flags, app *bookreview.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status command to the application
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "status",
		Usage:       "Show the session state and service settings",
		UsageText:   "bookreview status [--json]",
		Description: "Reports whether a session token is stored and which service it belongs to. No request is made.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

type statusInfo struct {
	State    string `json:"state"`
	BaseURL  string `json:"base_url"`
	PageSize int    `json:"page_size"`
	DataDir  string `json:"data_dir"`
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.app.Config
	info := statusInfo{
		State:    cmd.app.Session.State(ctx).String(),
		BaseURL:  cfg.API.BaseURL,
		PageSize: cfg.Pager.PageSize,
		DataDir:  cfg.DataDir,
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, info)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Session\t%s\n", info.State)
	_, _ = fmt.Fprintf(w, "Service\t%s\n", info.BaseURL)
	_, _ = fmt.Fprintf(w, "Page size\t%d\n", info.PageSize)
	_, _ = fmt.Fprintf(w, "Data dir\t%s\n", info.DataDir)
	return w.Flush()
}
