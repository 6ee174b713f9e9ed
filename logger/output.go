package logger

// OutputCategory defines a category of output that can be enabled/disabled.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Job cards, command output
	OutputErrors                        // Errors with hints

	// Level 1 (-v)
	OutputHTTPCalls // One line per API request
	OutputSession   // Login/logout and token presence

	// Level 2 (-vv)
	OutputTiming     // Request durations
	OutputConfig     // Config values loaded
	OutputSQLQueries // Local storage statements

	// Level 3 (-vvv)
	OutputRequestBody  // Full request bodies
	OutputResponseBody // Full response bodies
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults: VerbosityUser,
	OutputErrors:  VerbosityUser,

	OutputHTTPCalls: VerbosityInfo,
	OutputSession:   VerbosityInfo,

	OutputTiming:     VerbosityDebug,
	OutputConfig:     VerbosityDebug,
	OutputSQLQueries: VerbosityDebug,

	OutputRequestBody:  VerbosityAll,
	OutputResponseBody: VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, require the highest verbosity
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}
