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

type RegisterCmd struct {
	flags *Flags
	app   *bookreview.App

	name     string
	email    string
	password passwordSource
}

// NewRegisterCmd creates a new register command
func NewRegisterCmd(flags *Flags, app *bookreview.App) *RegisterCmd {
	return &RegisterCmd{flags: flags, app: app}
}

// Register adds the register command to the application
func (cmd *RegisterCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "register",
		Usage:     "Create an account and sign in",
		UsageText: "bookreview register [--name <name>] [--email <email>] [--password-file <path>|-]",
		Description: `Creates a new account on the review service and signs in with it.

Every field is validated before the request is sent: the name is required,
the email must look like an address, and the password needs at least 6
characters.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Aliases:     []string{"n"},
				Usage:       "display name",
				Destination: &cmd.name,
			},
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "account email",
				Destination: &cmd.email,
			},
			cmd.password.Flag(),
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *RegisterCmd) run(ctx context.Context, c *cli.Command) error {
	password, err := cmd.collect()
	if err != nil {
		if errors.Is(err, errAborted) {
			return nil
		}
		return err
	}

	if err := cmd.app.Session.Register(ctx, cmd.name, cmd.email, password); err != nil {
		return userError(err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%s Account created, signed in as %s\n", styles.IconCheck, cmd.email)
	return nil
}

func (cmd *RegisterCmd) collect() (string, error) {
	var password string
	if cmd.password.Provided() {
		p, err := cmd.password.Read()
		if err != nil {
			return "", err
		}
		password = p
	}

	if cmd.name != "" && cmd.email != "" && password != "" {
		return password, nil
	}

	if !isInteractive() {
		return "", fmt.Errorf("no terminal available to prompt for account details (use --name, --email and --password-file)")
	}

	_, _ = fmt.Fprintln(os.Stderr, styles.HeaderStyle.Render(styles.IconUser+" Create account"))

	err := runForm(huh.NewGroup(
		huh.NewInput().
			Title("Name").
			Validate(validate.Required).
			Value(&cmd.name),
		huh.NewInput().
			Title("Email").
			Validate(validate.Email).
			Value(&cmd.email),
		huh.NewInput().
			Title("Password").
			Description(fmt.Sprintf("At least %d characters", validate.MinPasswordLength)).
			EchoMode(huh.EchoModePassword).
			Validate(validate.Password).
			Value(&password),
	))
	if err != nil {
		return "", err
	}
	return password, nil
}
