package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/internal/core/notify"
	"github.com/hay-kot/bookreview/internal/core/styles"
	"github.com/hay-kot/bookreview/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags
	app   *bookreview.App

	limit      int
	clear      bool
	jsonOutput bool
}

// NewNotificationsCmd creates a new notifications command
func NewNotificationsCmd(flags *Flags, app *bookreview.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

// Register adds the notifications command to the application
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "notifications",
		Aliases:     []string{"notes"},
		Usage:       "Show warnings and errors from past TUI sessions",
		UsageText:   "bookreview notifications [--limit <n>] [--json] [--clear]",
		Description: "Lists the warning and error banners the TUI has shown, newest first.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum entries to show (0 = all)",
				Value:       20,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete the history",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})
	return app
}

type notificationJSON struct {
	ID        int64  `json:"id"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

func (cmd *NotificationsCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	if cmd.clear {
		if err := cmd.app.History.Clear(ctx); err != nil {
			return fmt.Errorf("clear notifications: %w", err)
		}
		_, _ = fmt.Fprintf(out, "%s History cleared\n", styles.IconCheck)
		return nil
	}

	items, err := cmd.app.History.List(ctx, cmd.limit)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	if cmd.jsonOutput {
		for _, n := range items {
			rec := notificationJSON{
				ID:        n.ID,
				Level:     string(n.Level),
				Message:   n.Message,
				CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := iojson.WriteLine(out, rec); err != nil {
				return fmt.Errorf("encode notification: %w", err)
			}
		}
		return nil
	}

	if len(items) == 0 {
		fmt.Fprintln(os.Stderr, "No notifications")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tLEVEL\tMESSAGE")
	for _, n := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
			n.CreatedAt.Local().Format("2006-01-02 15:04"),
			levelLabel(n.Level),
			n.Message,
		)
	}
	return w.Flush()
}

func levelLabel(l notify.Level) string {
	switch l {
	case notify.LevelError:
		return styles.IconError + " error"
	case notify.LevelWarning:
		return styles.IconWarning + " warning"
	default:
		return styles.IconInfo + " info"
	}
}
