package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/jobtrack/config"
	"github.com/teranos/jobtrack/display"
	"github.com/teranos/jobtrack/logger"
)

// LogSettings derives the logger setup for cmd: the -v count, and JSON
// output when --json (or JOBTRACK_OUTPUT=json) is in effect or log.json is
// set. cfg may be nil when the configuration failed to load.
func LogSettings(cmd *cobra.Command, cfg *config.Config) (jsonLogs bool, verbosity int) {
	verbosity, _ = cmd.Flags().GetCount("verbose")
	jsonLogs = display.ShouldOutputJSON(cmd)
	if cfg != nil && cfg.Log.JSON {
		jsonLogs = true
	}
	return jsonLogs, verbosity
}

// InitLogging initializes the global logger for cmd. The configuration is
// loaded once here and cached for the command itself.
func InitLogging(cmd *cobra.Command) error {
	// a load error is reported by the command that needs the configuration
	cfg, _ := config.Load()
	jsonLogs, verbosity := LogSettings(cmd, cfg)
	return logger.Initialize(jsonLogs, verbosity)
}
