package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/internal/core/styles"
	"github.com/hay-kot/bookreview/internal/core/validate"
)

type LoginCmd struct {
	flags *Flags
	app   *bookreview.App

	email    string
	password passwordSource
}

// NewLoginCmd creates a new login command
func NewLoginCmd(flags *Flags, app *bookreview.App) *LoginCmd {
	return &LoginCmd{flags: flags, app: app}
}

// Register adds the login command to the application
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "login",
		Usage:     "Sign in to the review service",
		UsageText: "bookreview login [--email <email>] [--password-file <path>|-]",
		Description: `Signs in and stores the session token so later commands and the TUI
start signed in.

Missing values are prompted for when stdin is a terminal.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "account email",
				Sources:     cli.EnvVars("BOOKREVIEW_EMAIL"),
				Destination: &cmd.email,
			},
			cmd.password.Flag(),
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *LoginCmd) run(ctx context.Context, c *cli.Command) error {
	password, err := cmd.collect()
	if err != nil {
		if errors.Is(err, errAborted) {
			return nil
		}
		return err
	}

	if err := cmd.app.Session.Login(ctx, cmd.email, password); err != nil {
		return userError(err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%s Signed in as %s\n", styles.IconCheck, cmd.email)
	return nil
}

func (cmd *LoginCmd) collect() (string, error) {
	var password string
	if cmd.password.Provided() {
		p, err := cmd.password.Read()
		if err != nil {
			return "", err
		}
		password = p
	}

	if cmd.email != "" && password != "" {
		return password, nil
	}

	if !isInteractive() {
		return "", fmt.Errorf("no terminal available to prompt for credentials (use --email and --password-file)")
	}

	_, _ = fmt.Fprintln(os.Stderr, styles.HeaderStyle.Render(styles.IconBook+" Sign in"))

	var fields []huh.Field
	if cmd.email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Validate(validate.Required).
			Value(&cmd.email))
	}
	if password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Validate(validate.Required).
			Value(&password))
	}

	if err := runForm(huh.NewGroup(fields...)); err != nil {
		return "", err
	}
	return password, nil
}
