package display

import (
	"os"

	"github.com/spf13/cobra"
)

// OutputEnv selects the default output format; "json" behaves like --json.
const OutputEnv = "JOBTRACK_OUTPUT"

// ShouldOutputJSON determines if a command should output JSON based on
// flags and JOBTRACK_OUTPUT.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return os.Getenv(OutputEnv) == "json"
	}

	// Check if --json flag was explicitly set
	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	// Check global --json flag
	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return os.Getenv(OutputEnv) == "json"
}
