package commands

import (
	"bufio"
	"database/sql"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/teranos/jobtrack/api"
	"github.com/teranos/jobtrack/config"
	"github.com/teranos/jobtrack/db"
	"github.com/teranos/jobtrack/display"
	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/logger"
	"github.com/teranos/jobtrack/session"
	"github.com/teranos/jobtrack/storage"
	"github.com/teranos/jobtrack/tracker"
)

// App is everything a command needs, built from the configuration.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Sessions *session.Store
	Client   *api.Client
	Tracker  *tracker.Tracker
}

// OpenApp validates cfg, opens the local store and builds the API client
// and tracker. The caller must Close the App.
func OpenApp(cfg *config.Config, confirmer tracker.Confirmer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "invalid configuration"), "run 'jobtrack config validate' for details")
	}

	if logger.ShouldOutput(logger.Verbosity, logger.OutputConfig) {
		logger.Logger.Debugw("Configuration",
			logger.FieldBaseURL, cfg.API.BaseURL,
			logger.FieldFile, cfg.StoragePath(),
			"timeout_seconds", cfg.API.TimeoutSeconds,
			"requests_per_second", cfg.API.RequestsPerSecond,
		)
	}

	database, err := db.OpenWithMigrations(cfg.StoragePath(), logger.ComponentLogger("db"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open local storage at %s", cfg.StoragePath())
	}

	client, err := api.New(api.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		BlockPrivateIP:    cfg.API.BlockPrivateIP,
		Logger:            logger.ComponentLogger("api"),
	})
	if err != nil {
		database.Close()
		return nil, err
	}

	sessions := session.NewStore(storage.New(database, logger.ComponentLogger("storage")))

	return &App{
		Config:   cfg,
		DB:       database,
		Sessions: sessions,
		Client:   client,
		Tracker: tracker.New(tracker.Options{
			API:       client,
			Sessions:  sessions,
			Confirmer: confirmer,
			Logger:    logger.ComponentLogger("tracker"),
		}),
	}, nil
}

// Close releases the local store.
func (a *App) Close() error {
	return a.DB.Close()
}

// openApp loads the configuration and opens the App for a command.
func openApp(cmd *cobra.Command, confirmer tracker.Confirmer) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return OpenApp(cfg, confirmer)
}

// stdinConfirmer prompts interactively on a terminal and reads a line
// otherwise, so piped answers work.
func stdinConfirmer(cmd *cobra.Command) tracker.Confirmer {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return display.TerminalConfirmer{}
	}
	return &display.LineConfirmer{In: bufio.NewScanner(cmd.InOrStdin()), Out: cmd.OutOrStdout()}
}
