package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/internal/core/review"
	"github.com/hay-kot/bookreview/internal/core/styles"
	"github.com/hay-kot/bookreview/internal/pager"
	"github.com/hay-kot/bookreview/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *bookreview.App

	// flags
	page       int
	offset     int
	jsonOutput bool
	full       bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *bookreview.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List one page of reviews",
		UsageText: "bookreview ls [--page <n> | --offset <n>] [--json] [--full]",
		Description: `Fetches one page of reviews, newest first.

Pages are numbered from 1. Asking for a page past the end shows the last
page. Use --json for one review per line.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "page",
				Aliases:     []string{"p"},
				Usage:       "page number, starting at 1",
				Value:       1,
				Destination: &cmd.page,
			},
			&cli.IntFlag{
				Name:        "offset",
				Usage:       "review offset, overrides --page",
				Value:       -1,
				Destination: &cmd.offset,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "full",
				Usage:       "render review bodies",
				Destination: &cmd.full,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	w, err := cmd.app.Pager.LoadPage(ctx, cmd.startOffset())
	if err != nil {
		return userError(err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range w.Items {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode review: %w", err)
			}
		}
		return nil
	}

	if w.Empty() {
		fmt.Fprintln(os.Stderr, "No reviews yet")
		return nil
	}

	if cmd.full {
		cmd.printFull(out, w)
	} else {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "#\tTITLE\tREVIEWER\tURL")
		for i, r := range w.Items {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", w.Offset+i+1, r.Title, r.ReviewerName, r.URL)
		}
		_ = tw.Flush()
	}

	fmt.Fprintln(os.Stderr, styles.DividerStyle.Render(w.Status()))
	return nil
}

func (cmd *LsCmd) startOffset() int {
	if cmd.offset >= 0 {
		return cmd.offset
	}
	return max(cmd.page-1, 0) * cmd.app.Pager.PageSize()
}

func (cmd *LsCmd) printFull(out io.Writer, w pager.Window) {
	style := cmd.app.Config.TUI.MarkdownStyle
	for i, r := range w.Items {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		_, _ = fmt.Fprintln(out, styles.HeaderStyle.Render(fmt.Sprintf("%d. %s", w.Offset+i+1, r.Title)))
		_, _ = fmt.Fprintln(out, styles.LinkStyle.Render(r.URL))
		_, _ = fmt.Fprintln(out, styles.DividerStyle.Render(reviewMeta(r)))
		_, _ = fmt.Fprintln(out, styles.RenderMarkdownStandard(r.BodyText, style, 80))
	}
}

func reviewMeta(r review.Review) string {
	meta := "by " + r.ReviewerName
	if !r.CreatedAt.IsZero() {
		meta += " · " + r.CreatedAt.Local().Format("2006-01-02")
	}
	return meta
}
