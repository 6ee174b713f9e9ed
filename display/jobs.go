// Package display renders the job list and flow results for the terminal
// with pterm, and as JSON for scripts.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/jobtrack/joblist"
)

// ReadMoreHint follows a truncated note.
const ReadMoreHint = "[Read More]"

// RenderView writes one screen of the job list: a summary line, the cards
// of the current page, the pagination bar and, when open, the note overlay.
func RenderView(w io.Writer, view joblist.View) {
	fmt.Fprintln(w, Summary(view))

	if len(view.Cards) == 0 {
		fmt.Fprintln(w, pterm.Gray("No jobs found."))
	}
	for _, card := range view.Cards {
		fmt.Fprint(w, Card(card))
	}

	if bar := Pagination(view.Page, view.PageCount); bar != "" {
		fmt.Fprintln(w, bar)
	}

	if view.Note != nil {
		fmt.Fprint(w, NoteOverlay(*view.Note))
	}
}

// Summary is the header line: counts plus the active filters.
func Summary(view joblist.View) string {
	var b strings.Builder
	b.WriteString(pterm.LightCyan("My Jobs"))
	fmt.Fprintf(&b, " (%d of %d", view.Matching, view.Total)
	if view.PageCount > 0 {
		fmt.Fprintf(&b, ", page %d/%d", view.Page, view.PageCount)
	}
	b.WriteString(")")

	if view.Query != "" {
		fmt.Fprintf(&b, "  search: %q", view.Query)
	}
	source := "All Sources"
	if view.Source != "" {
		source = view.Source.Label()
	}
	fmt.Fprintf(&b, "  source: %s", source)
	return b.String()
}

// Card renders one job card as a titled box.
func Card(c joblist.Card) string {
	lines := []string{
		pterm.Gray("ID:           ") + string(c.ID),
		pterm.Gray("Company:      ") + c.Company,
		pterm.Gray("Date Applied: ") + c.DateApplied,
		pterm.Gray("Applied From: ") + c.AppliedFrom,
	}
	if c.ApplicationLink != "" {
		lines = append(lines, pterm.Gray("Link:         ")+pterm.Blue(c.ApplicationLink))
	}
	if c.Note != "" {
		note := c.Note
		if c.ReadMore {
			note += " " + pterm.Yellow(ReadMoreHint)
		}
		lines = append(lines, pterm.Gray("Note:         ")+note)
	}

	title := c.Title
	if title == "" {
		title = "(untitled)"
	}
	return pterm.DefaultBox.WithTitle(pterm.LightGreen(title)).Sprintln(strings.Join(lines, "\n"))
}

// Pagination renders page buttons with the current one bracketed. It is
// empty when everything fits on one page.
func Pagination(page, count int) string {
	if count <= 1 {
		return ""
	}
	parts := make([]string, count)
	for i := 1; i <= count; i++ {
		if i == page {
			parts[i-1] = pterm.LightGreen(fmt.Sprintf("[%d]", i))
		} else {
			parts[i-1] = fmt.Sprintf(" %d ", i)
		}
	}
	return "Pages:" + strings.Join(parts, "")
}

// NoteOverlay renders the full note with a hint to close it.
func NoteOverlay(note string) string {
	return pterm.DefaultBox.WithTitle("Note").Sprintln(note + "\n\n" + pterm.Gray("(close to dismiss)"))
}

// ErrorBox renders a dismissible error message.
func ErrorBox(message string) string {
	return pterm.DefaultBox.WithTitle(pterm.Red("Error")).Sprintln(message + "\n\n" + pterm.Gray("(dismiss to clear)"))
}

// Sources lists the canonical sources with their labels.
func Sources(w io.Writer) {
	for _, s := range joblist.Sources {
		fmt.Fprintf(w, "  %-14s %s\n", s, pterm.Gray(s.Label()))
	}
}
