package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/internal/core/doctor"
	"github.com/hay-kot/bookreview/internal/core/styles"
	"github.com/hay-kot/bookreview/pkg/iojson"
)

type DoctorCmd struct {
	flags  *Flags
	app    *bookreview.App
	format string
}

func NewDoctorCmd(flags *Flags, app *bookreview.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your setup",
		UsageText:   "bookreview doctor [options]",
		Description: "Checks the configuration, the local database, the review service, and the stored session.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	cfg := cmd.app.Config
	// The probe gets its own client so a refused request does not pass
	// through the session transport.
	probe := &http.Client{Timeout: cfg.API.Timeout}

	return []doctor.Check{
		doctor.NewConfigCheck(cmd.flags.ConfigPath, cfg),
		doctor.NewStorageCheck(cmd.app.DB.Conn(), cfg.DatabaseDir()),
		doctor.NewServiceCheck(probe, cfg.API.BaseURL, cfg.API.Endpoints.Books),
		doctor.NewSessionCheck(cmd.app.Session),
	}
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := doctor.RunAll(ctx, doctor.DefaultCheckTimeout, cmd.checks())

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	tally := doctor.Count(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary doctor.Tally    `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: tally.Healthy(),
		Summary: tally,
		Checks:  results,
	}

	return iojson.WriteWith(c.Root().Writer, os.Stderr, out)
}

func (cmd *DoctorCmd) outputText(results []doctor.Result) error {
	w := os.Stderr
	divider := styles.DividerStyle.Render(strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render("Book Review Doctor"))
	_, _ = fmt.Fprintln(w, divider)
	_, _ = fmt.Fprintln(w)

	for _, result := range results {
		_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.MetaStyle.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = styles.SuccessStyle.Render("✔")
			case doctor.StatusWarn:
				icon = styles.WarningStyle.Render("●")
			case doctor.StatusFail:
				icon = styles.ErrorStyle.Render("✘")
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	tally := doctor.Count(results)
	summary := fmt.Sprintf("%s  %s  %s",
		styles.SuccessStyle.Render(fmt.Sprintf("%d passed", tally.Passed)),
		styles.WarningStyle.Render(fmt.Sprintf("%d warnings", tally.Warned)),
		styles.ErrorStyle.Render(fmt.Sprintf("%d failed", tally.Failed)),
	)
	_, _ = fmt.Fprintln(w, summary)

	if !tally.Healthy() {
		return cli.Exit("", 1)
	}

	return nil
}
