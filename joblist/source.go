package joblist

import (
	"strings"

	"github.com/teranos/jobtrack/errors"
)

// Source is the "applied from" tag of a job.
type Source string

// Canonical sources. The create form and the list filter share this one
// enumeration; Direct_Email is the wire value, "Direct Email" its label.
const (
	SourceIndeed       Source = "Indeed"
	SourceDirectEmail  Source = "Direct_Email"
	SourceGlassdoor    Source = "Glassdoor"
	SourceLinkedIn     Source = "LinkedIn"
	SourceZipRecruiter Source = "ZipRecruiter"
	SourceDice         Source = "Dice"
)

// Sources lists every canonical source in display order.
var Sources = []Source{
	SourceIndeed,
	SourceDirectEmail,
	SourceGlassdoor,
	SourceLinkedIn,
	SourceZipRecruiter,
	SourceDice,
}

// Label is the human form shown in menus and cards.
func (s Source) Label() string {
	if s == SourceDirectEmail {
		return "Direct Email"
	}
	return string(s)
}

// Valid reports whether s is one of the canonical sources.
func (s Source) Valid() bool {
	for _, c := range Sources {
		if s == c {
			return true
		}
	}
	return false
}

// ParseSource maps user input onto a canonical source. Matching ignores
// case and treats spaces, dashes and underscores alike, so "direct email",
// "Direct_Email" and "direct-email" all resolve to SourceDirectEmail.
// The empty string parses to the empty source ("All Sources").
func ParseSource(s string) (Source, error) {
	key := normalizeSource(s)
	if key == "" {
		return "", nil
	}
	for _, c := range Sources {
		if normalizeSource(string(c)) == key {
			return c, nil
		}
	}
	return "", errors.NewInvalidRequestError("unknown source %q (want one of %s)", s, sourceList())
}

func normalizeSource(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

func sourceList() string {
	names := make([]string, len(Sources))
	for i, s := range Sources {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
