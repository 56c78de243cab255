package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/internal/core/review"
	"github.com/hay-kot/bookreview/internal/core/styles"
	"github.com/hay-kot/bookreview/internal/core/validate"
	"github.com/hay-kot/bookreview/pkg/iojson"
)

type PostCmd struct {
	flags *Flags
	app   *bookreview.App

	draft      review.Draft
	file       iojson.FileReader[review.Draft]
	jsonOutput bool
}

// NewPostCmd creates a new post command
func NewPostCmd(flags *Flags, app *bookreview.App) *PostCmd {
	return &PostCmd{flags: flags, app: app}
}

// Register adds the post command to the application
func (cmd *PostCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "post",
		Usage:     "Write a new review",
		UsageText: "bookreview post [--title <title>] [--url <url>] [--reviewer <name>] [--body <text>] [-f <file>|-]",
		Description: `Posts a review. Values come from flags, from a JSON document given with
--file, or from an interactive form for whatever is still missing.

JSON documents use the keys title, url, reviewerName and bodyText.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "book title",
				Destination: &cmd.draft.Title,
			},
			&cli.StringFlag{
				Name:        "url",
				Aliases:     []string{"u"},
				Usage:       "link to the book",
				Destination: &cmd.draft.URL,
			},
			&cli.StringFlag{
				Name:        "reviewer",
				Aliases:     []string{"r"},
				Usage:       "name shown as the reviewer",
				Destination: &cmd.draft.ReviewerName,
			},
			&cli.StringFlag{
				Name:        "body",
				Aliases:     []string{"b"},
				Usage:       "review text (markdown)",
				Destination: &cmd.draft.BodyText,
			},
			cmd.file.Flag(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the created review as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *PostCmd) run(ctx context.Context, c *cli.Command) error {
	if !cmd.app.Session.IsAuthenticated(ctx) {
		return errors.New("Sign in to continue (run 'bookreview login')")
	}

	draft, err := cmd.collect()
	if err != nil {
		if errors.Is(err, errAborted) {
			return nil
		}
		return err
	}

	created, _, err := cmd.app.Pager.Submit(ctx, draft)
	if err != nil {
		return userError(err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, created)
	}

	_, _ = fmt.Fprintf(out, "%s Posted %q\n", styles.IconCheck, created.Title)
	return nil
}

// collect merges the --file document under the flag values and prompts for
// fields that are still empty.
func (cmd *PostCmd) collect() (review.Draft, error) {
	draft := cmd.draft
	if cmd.file.Provided() {
		doc, err := cmd.file.Read()
		if err != nil {
			return draft, err
		}
		draft = mergeDraft(draft, doc)
	}

	if validate.Draft(draft.Normalize()) == nil || !isInteractive() {
		return draft, nil
	}

	_, _ = fmt.Fprintln(os.Stderr, styles.HeaderStyle.Render(styles.IconBook+" New review"))

	err := runForm(huh.NewGroup(
		huh.NewInput().
			Title("Title").
			Validate(validate.Required).
			Value(&draft.Title),
		huh.NewInput().
			Title("URL").
			Placeholder("https://").
			Validate(validate.HTTPURL).
			Value(&draft.URL),
		huh.NewInput().
			Title("Reviewer").
			Validate(validate.Required).
			Value(&draft.ReviewerName),
		huh.NewText().
			Title("Review").
			Description("Markdown is rendered when the review is shown").
			Validate(validate.Required).
			Value(&draft.BodyText),
	))
	return draft, err
}

// mergeDraft fills the empty fields of d from fallback.
func mergeDraft(d, fallback review.Draft) review.Draft {
	if d.Title == "" {
		d.Title = fallback.Title
	}
	if d.URL == "" {
		d.URL = fallback.URL
	}
	if d.ReviewerName == "" {
		d.ReviewerName = fallback.ReviewerName
	}
	if d.BodyText == "" {
		d.BodyText = fallback.BodyText
	}
	return d
}
