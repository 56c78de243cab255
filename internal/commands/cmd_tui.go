package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/internal/tui"
	"github.com/hay-kot/bookreview/pkg/profiler"
)

// errNoTerminal is returned when the interactive client is started with
// stdin or stdout redirected.
var errNoTerminal = errors.New("the interactive client needs a terminal, use 'bookreview ls' or 'bookreview post' in scripts")

type TuiCmd struct {
	flags *Flags
	app   *bookreview.App
}

func NewTuiCmd(flags *Flags, app *bookreview.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Flags are registered on the root command, which runs the TUI by default.
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "serve pprof on 127.0.0.1:<port> while the TUI runs",
			Sources:     cli.EnvVars("BOOKREVIEW_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

func (cmd *TuiCmd) Run(ctx context.Context, _ *cli.Command) error {
	if !isInteractive() {
		return errNoTerminal
	}

	stop, err := cmd.startProfiler(ctx)
	if err != nil {
		return err
	}
	defer stop()

	log.Info().
		Str("base_url", cmd.app.Config.API.BaseURL).
		Stringer("session", cmd.app.Session.State(ctx)).
		Msg("starting tui")

	m := tui.New(cmd.app.Session, cmd.app.Pager, tui.Options{
		Context: ctx,
		History: cmd.app.History,
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// startProfiler serves pprof when --profiler-port is set. The returned stop
// func is always safe to call.
func (cmd *TuiCmd) startProfiler(ctx context.Context) (func(), error) {
	if cmd.flags.ProfilerPort <= 0 {
		return func() {}, nil
	}

	srv := profiler.New(cmd.flags.ProfilerPort)
	if err := srv.Start(ctx); err != nil {
		return nil, fmt.Errorf("start profiler: %w", err)
	}
	log.Info().Str("url", fmt.Sprintf("http://%s/debug/pprof/", srv.Addr())).Msg("profiler listening")

	return func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("profiler shutdown")
		}
	}, nil
}
