package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/internal/core/styles"
	"github.com/hay-kot/bookreview/internal/demo"
)

type DemoCmd struct {
	flags *Flags
	app   *bookreview.App

	addr string
	seed int
}

// NewDemoCmd creates a new demo command
func NewDemoCmd(flags *Flags, app *bookreview.App) *DemoCmd {
	return &DemoCmd{flags: flags, app: app}
}

// Register adds the demo command to the application
func (cmd *DemoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "demo",
		Usage:     "Run a local review service for trying the client",
		UsageText: "bookreview demo [--addr <host:port>] [--seed <n>]",
		Description: `Serves the review API from memory on --addr until interrupted. The
service uses the endpoint paths from the config file and starts with a demo
account and --seed synthetic reviews. Nothing is persisted.

Point the client at it with --base-url http://<addr>.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (default from config demo.addr)",
				Destination: &cmd.addr,
			},
			&cli.IntFlag{
				Name:        "seed",
				Usage:       "number of synthetic reviews (default from config demo.seed)",
				Value:       -1,
				Destination: &cmd.seed,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DemoCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.app.Config

	addr := cmd.addr
	if addr == "" {
		addr = cfg.Demo.Addr
	}
	seed := cmd.seed
	if seed < 0 {
		seed = cfg.Demo.Seed
	}

	store := demo.NewStore()
	if err := demo.Seed(store, seed); err != nil {
		return err
	}

	srv := demo.NewServer(store, cfg.API.Endpoints, cfg.Demo.PageSize)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := os.Stderr
	_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render(styles.IconBook+" Demo review service"))
	_, _ = fmt.Fprintf(w, "  listening on  %s\n", styles.LinkStyle.Render("http://"+addr))
	_, _ = fmt.Fprintf(w, "  account       %s / %s\n", demo.DemoEmail, demo.DemoPassword)
	_, _ = fmt.Fprintf(w, "  reviews       %d\n", store.Count())
	_, _ = fmt.Fprintln(w, styles.DividerStyle.Render("  press ctrl+c to stop"))

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("demo server: %w", err)
	}
	return nil
}
