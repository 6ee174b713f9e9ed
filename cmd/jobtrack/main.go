package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/teranos/jobtrack/cmd/jobtrack/commands"
	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/logger"
	"github.com/teranos/jobtrack/tracker"
)

var rootCmd = &cobra.Command{
	Use:   "jobtrack",
	Short: "jobtrack - Track your job applications",
	Long: `jobtrack - Track the jobs you applied to from the command line.

It talks to the job tracker REST API, keeps your session in local storage
and shows your applications as paginated, searchable cards.

Available commands:
  register - Create an account
  login    - Log in and remember the session
  logout   - Log out
  whoami   - Show the logged-in user
  jobs     - List, add and remove job applications
  browse   - Browse and edit jobs interactively
  config   - Show and check configuration
  version  - Show version information

Examples:
  jobtrack login --email ada@example.com
  jobtrack jobs ls --search acme
  jobtrack jobs add --company Acme --title "Backend Engineer" --source LinkedIn
  jobtrack browse`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := commands.InitLogging(cmd); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")

	rootCmd.AddCommand(commands.RegisterCmd)
	rootCmd.AddCommand(commands.LoginCmd)
	rootCmd.AddCommand(commands.LogoutCmd)
	rootCmd.AddCommand(commands.WhoamiCmd)
	rootCmd.AddCommand(commands.JobsCmd)
	rootCmd.AddCommand(commands.BrowseCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Cleanup()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", tracker.UserMessage(err))
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
