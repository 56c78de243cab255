package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/pkg/iojson"
)

type ConfigCmd struct {
	flags *Flags
	app   *bookreview.App

	format string
}

// NewConfigCmd creates a new config command
func NewConfigCmd(flags *Flags, app *bookreview.App) *ConfigCmd {
	return &ConfigCmd{flags: flags, app: app}
}

// Register adds the config command to the application
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Inspect configuration",
		Commands: []*cli.Command{
			{
				Name:        "show",
				Usage:       "Print the effective configuration",
				UsageText:   "bookreview config show [--format yaml|json]",
				Description: "Prints the configuration after defaults, the config file and flag overrides are applied.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (yaml, json)",
						Value:       "yaml",
						Destination: &cmd.format,
					},
				},
				Action: cmd.show,
			},
			{
				Name:      "path",
				Usage:     "Print the config file path",
				UsageText: "bookreview config path",
				Action: func(_ context.Context, c *cli.Command) error {
					_, err := fmt.Fprintln(c.Root().Writer, cmd.flags.ConfigPath)
					return err
				},
			},
		},
	})
	return app
}

func (cmd *ConfigCmd) show(_ context.Context, c *cli.Command) error {
	out := c.Root().Writer

	switch cmd.format {
	case "json":
		return iojson.WriteLine(out, cmd.app.Config)
	case "yaml":
		bits, err := yaml.Marshal(cmd.app.Config)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = out.Write(bits)
		return err
	default:
		return fmt.Errorf("unknown format %q (use yaml or json)", cmd.format)
	}
}
