package commands

import (
	"bufio"

	"github.com/spf13/cobra"

	"github.com/teranos/jobtrack/display"
	"github.com/teranos/jobtrack/repl"
)

// BrowseCmd starts the interactive browser
var BrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and edit jobs interactively",
	Long: `Open an interactive session on your job list. Each line is one action
(search, source, page, more, rm, add, ...); type 'help' for the list.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	app, err := openApp(cmd, &display.LineConfirmer{In: in, Out: out})
	if err != nil {
		return err
	}
	defer app.Close()

	return repl.New(app.Tracker, in, out).Run(cmd.Context())
}
