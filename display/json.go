package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// CompactEnv switches JSON output to a single line, for piping into tools
// that re-indent anyway.
const CompactEnv = "JOBTRACK_JSON_COMPACT"

// MarshalJSON marshals v indented, or compact when CompactEnv is set.
func MarshalJSON(v interface{}) ([]byte, error) {
	if os.Getenv(CompactEnv) != "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// OutputJSON marshals v with MarshalJSON and writes it to w.
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
