// Package joblist is the client-side view model for the job list:
// filtering, pagination, card formatting and the explicit list state those
// derive from. Everything here is pure; network effects live in tracker.
package joblist

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/teranos/jobtrack/errors"
)

// ID is the server-assigned job identifier. The API may send it as a JSON
// number or string; it is carried as its decimal/string form.
type ID string

// UnmarshalJSON accepts both `5` and `"5"`.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decode job id")
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "decode job id")
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits IDs in canonical integer form ("5", "-3") as numbers
// and everything else, including "007" and "+5", as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Job is one tracked application as returned by GET /api/myjobs.
type Job struct {
	ID              ID     `json:"id"`
	Company         string `json:"company"`
	JobTitle        string `json:"job_title"`
	AppliedFrom     Source `json:"applied_from"`
	ApplicationLink string `json:"application_link"`
	Note            string `json:"note"`
	CreatedAt       string `json:"created_at"`
}
