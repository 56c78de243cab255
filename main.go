package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/bookreview/internal/bookreview"
	"github.com/hay-kot/bookreview/internal/commands"
	"github.com/hay-kot/bookreview/internal/core/config"
	"github.com/hay-kot/bookreview/internal/core/styles"
	"github.com/hay-kot/bookreview/internal/data/db"
	"github.com/hay-kot/bookreview/internal/data/stores"
	"github.com/hay-kot/bookreview/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// closeTimeout bounds how long exit waits for a background sign out.
const closeTimeout = 3 * time.Second

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// openDatabase opens the local database, moving a corrupt file aside and
// retrying once.
func openDatabase(dataDir string) (*db.DB, error) {
	database, err := db.Open(dataDir, db.DefaultOpenOptions())
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	log.Warn().Err(err).Msg("database corrupt, starting with a fresh one")
	if rerr := stores.RecoverFromCorruption(dataDir); rerr != nil {
		return nil, fmt.Errorf("recover database: %w", rerr)
	}
	return db.Open(dataDir, db.DefaultOpenOptions())
}

func main() {
	ctx := context.Background()

	// BOOKREVIEW_* variables may live in a .env file next to the binary's
	// working directory.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: load .env: %v\n", err)
	}

	var (
		logCloser func()
		brApp     = &bookreview.App{}
		database  *db.DB
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "bookreview",
		Usage:     "Read and write book reviews from the terminal",
		UsageText: "bookreview [global options] command [command options]",
		Description: `bookreview is a client for a book review service.

Run 'bookreview' with no arguments to open the interactive client.
Run 'bookreview demo' to start a local service to try it against.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("BOOKREVIEW_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/bookreview.log)",
				Sources:     cli.EnvVars("BOOKREVIEW_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("BOOKREVIEW_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("BOOKREVIEW_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "base-url",
				Usage:       "review service URL (overrides api.base_url)",
				Sources:     cli.EnvVars("BOOKREVIEW_BASE_URL"),
				Destination: &flags.BaseURL,
			},
			&cli.IntFlag{
				Name:        "page-size",
				Usage:       "reviews per page (overrides pager.page_size)",
				Sources:     cli.EnvVars("BOOKREVIEW_PAGE_SIZE"),
				Destination: &flags.PageSize,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; the TUI owns the terminal.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "bookreview.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			if flags.BaseURL != "" || flags.PageSize != 0 {
				if flags.BaseURL != "" {
					cfg.API.BaseURL = flags.BaseURL
				}
				if flags.PageSize != 0 {
					cfg.Pager.PageSize = flags.PageSize
				}
				if err := cfg.Validate(); err != nil {
					return ctx, fmt.Errorf("invalid flags: %w", err)
				}
			}

			// Validation ensures the name is a known theme
			styles.SetTheme(cfg.TUI.Theme)

			database, err = openDatabase(cfg.DatabaseDir())
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			kvStore := stores.NewKVStore(database)
			history := stores.NewNotifyStore(database, stores.DefaultNotifyRetention)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*brApp = *bookreview.NewApp(cfg, database, kvStore, history)

			log.Debug().
				Str("base_url", cfg.API.BaseURL).
				Int("page_size", cfg.Pager.PageSize).
				Msg("client ready")

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Give a pending server-side sign out a chance to finish
			if brApp.Session != nil {
				closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
				if err := brApp.Close(closeCtx); err != nil {
					log.Debug().Err(err).Msg("background sign out did not finish")
				}
				cancel()
			}

			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, brApp)

	app = commands.NewLoginCmd(flags, brApp).Register(app)
	app = commands.NewRegisterCmd(flags, brApp).Register(app)
	app = commands.NewLogoutCmd(flags, brApp).Register(app)
	app = commands.NewStatusCmd(flags, brApp).Register(app)
	app = commands.NewLsCmd(flags, brApp).Register(app)
	app = commands.NewPostCmd(flags, brApp).Register(app)
	app = commands.NewNotificationsCmd(flags, brApp).Register(app)
	app = commands.NewDoctorCmd(flags, brApp).Register(app)
	app = commands.NewConfigCmd(flags, brApp).Register(app)
	app = commands.NewDemoCmd(flags, brApp).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'bookreview --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
