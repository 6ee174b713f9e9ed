package joblist

import (
	"time"
	"unicode/utf8"
)

// NoteLimit is the number of characters of a note shown on a card.
const NoteLimit = 100

// InvalidDate is rendered for created_at values that cannot be parsed.
const InvalidDate = "Invalid Date"

// Layouts tried in order when parsing created_at. Date-times without a
// zone are wall-clock times in the display location; a bare date is UTC
// midnight.
var (
	zonedLayouts   = []string{time.RFC3339Nano}
	localLayouts   = []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"}
	dateOnlyLayout = "2006-01-02"
)

// ParseCreatedAt parses a created_at value in any of the accepted layouts.
// Zoneless date-times are read in loc (nil means time.Local).
func ParseCreatedAt(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatDate renders created_at as a long date, e.g. "January 5, 2024",
// in loc (nil means time.Local).
func FormatDate(createdAt string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, ok := ParseCreatedAt(createdAt, loc)
	if !ok {
		return InvalidDate
	}
	return t.In(loc).Format("January 2, 2006")
}

// TruncateNote shortens note to NoteLimit characters plus "..." and reports
// whether it did. Characters are runes, so multi-byte text is never split.
func TruncateNote(note string) (string, bool) {
	if utf8.RuneCountInString(note) <= NoteLimit {
		return note, false
	}
	runes := []rune(note)
	return string(runes[:NoteLimit]) + "...", true
}

// Card is the display form of one job.
type Card struct {
	ID              ID     `json:"id"`
	Title           string `json:"job_title"`
	Company         string `json:"company"`
	DateApplied     string `json:"date_applied"`
	AppliedFrom     string `json:"applied_from"`
	ApplicationLink string `json:"application_link,omitempty"`
	Note            string `json:"note"`
	ReadMore        bool   `json:"read_more"`
}

// CardFor formats job for display.
func CardFor(job Job, loc *time.Location) Card {
	note, truncated := TruncateNote(job.Note)
	return Card{
		ID:              job.ID,
		Title:           job.JobTitle,
		Company:         job.Company,
		DateApplied:     FormatDate(job.CreatedAt, loc),
		AppliedFrom:     job.AppliedFrom.Label(),
		ApplicationLink: job.ApplicationLink,
		Note:            note,
		ReadMore:        truncated,
	}
}
