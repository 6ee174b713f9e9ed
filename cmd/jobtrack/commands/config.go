package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jobtrack/config"
	"github.com/teranos/jobtrack/display"
	"github.com/teranos/jobtrack/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and check jobtrack configuration",
	Long: `Display and check jobtrack configuration settings.

Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/jobtrack/config.toml)
3. User config (~/.jobtrack/config.toml)
4. Project config (jobtrack.toml, searched up from the working directory)
5. .env in the working directory (JOBTRACK_* entries)
6. Environment variables (JOBTRACK_* prefix)

Examples:
  jobtrack config show                 # Show current configuration
  jobtrack config show --format json   # Show configuration in JSON format
  jobtrack config get api.base_url     # Get specific config value
  jobtrack config validate             # Validate current configuration
  jobtrack config where                # Show where each value came from`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., api.base_url, storage.path)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate the merged configuration and report unknown keys in the config files that were read",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Args:  cobra.NoArgs,
	RunE:  runConfigWhere,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", config.FormatTOML, "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configValidateCmd)
	ConfigCmd.AddCommand(configWhereCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	format := configFormat
	if display.ShouldOutputJSON(cmd) {
		format = config.FormatJSON
	}
	return ShowConfig(cmd.OutOrStdout(), cfg, format)
}

// ShowConfig writes cfg in format.
func ShowConfig(w io.Writer, cfg *config.Config, format string) error {
	data, err := config.Marshal(cfg, format)
	if err != nil {
		return err
	}
	if format != config.FormatJSON {
		fmt.Fprintln(w, "# jobtrack configuration")
	}
	_, err = w.Write(data)
	return err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	loaded, err := config.Current()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	return GetConfigValue(cmd.OutOrStdout(), loaded, args[0])
}

// GetConfigValue prints the effective value of key.
func GetConfigValue(w io.Writer, loaded *config.Loaded, key string) error {
	if !loaded.Viper.IsSet(key) {
		return errors.NewInvalidRequestError("configuration key %q not found", key)
	}
	fmt.Fprintln(w, loaded.Viper.Get(key))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	loaded, err := config.Current()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	return ValidateConfig(cmd.OutOrStdout(), cfg, loaded.Files)
}

// ValidateConfig checks cfg and warns about unknown keys in files.
func ValidateConfig(w io.Writer, cfg *config.Config, files []string) error {
	for _, file := range files {
		unknown, err := config.UnknownKeys(file)
		if err != nil {
			return err
		}
		for _, key := range unknown {
			fmt.Fprintf(w, "%s unknown key %q in %s\n", pterm.Yellow("warning:"), key, file)
		}
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	fmt.Fprintln(w, pterm.Green("✓ Configuration is valid"))
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	loaded, err := config.Current()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), loaded.Settings())
	}
	ConfigWhere(cmd.OutOrStdout(), loaded)
	return nil
}

// ConfigWhere prints the cascade and every setting grouped by the source
// that supplied it.
func ConfigWhere(w io.Writer, loaded *config.Loaded) {
	fmt.Fprintln(w, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(w, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintln(w, "  2. [SYSTEM]   /etc/jobtrack/config.toml")
	fmt.Fprintln(w, "  3. [USER]     ~/.jobtrack/config.toml")
	fmt.Fprintln(w, "  4. [PROJECT]  jobtrack.toml (searches up directories)")
	fmt.Fprintln(w, "  5. [DOTENV]   ./.env")
	fmt.Fprintln(w, "  6. [ENV]      JOBTRACK_* environment variables")
	fmt.Fprintln(w)

	settings := loaded.Settings()
	fmt.Fprintln(w, "Active configuration:")
	for _, source := range config.SourceOrder {
		var group []config.Setting
		for _, s := range settings {
			if s.Source == source {
				group = append(group, s)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(w, "  [%s]\n", source)
		for _, s := range group {
			fmt.Fprintf(w, "    %-26s = %v %s\n", s.Key, s.Value, pterm.Gray("("+s.SourcePath+")"))
		}
	}
}
