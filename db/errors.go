package db

import (
	"strings"

	"github.com/teranos/jobtrack/errors"
)

// ErrDatabaseClosed is returned when local storage is used after Close.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is closed.
// The sql package returns its own unexported error for this, so the message
// is matched as a fallback.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}
