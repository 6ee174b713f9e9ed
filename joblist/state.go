package joblist

import "time"

// State is the explicit value every view of the list is derived from.
// Transitions return a new State and never mutate the receiver's slice, so
// a State captured earlier stays valid.
type State struct {
	Jobs   []Job
	Query  string
	Source Source
	Page   int

	// SelectedNote holds the full note shown in the overlay; nil when closed.
	SelectedNote *string
}

// NewState is the empty list on mount.
func NewState() State {
	return State{Jobs: []Job{}, Page: 1}
}

// Replace installs a freshly fetched list wholesale. Later duplicates of an
// ID are dropped so IDs stay unique.
func (s State) Replace(jobs []Job) State {
	seen := make(map[ID]struct{}, len(jobs))
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if _, dup := seen[job.ID]; dup {
			continue
		}
		seen[job.ID] = struct{}{}
		out = append(out, job)
	}
	s.Jobs = out
	return s
}

// Prepend puts a newly created job at the front. An existing entry with the
// same ID is replaced.
func (s State) Prepend(job Job) State {
	out := make([]Job, 0, len(s.Jobs)+1)
	out = append(out, job)
	for _, j := range s.Jobs {
		if j.ID != job.ID {
			out = append(out, j)
		}
	}
	s.Jobs = out
	return s
}

// Remove drops the job with the given ID, if present.
func (s State) Remove(id ID) State {
	out := make([]Job, 0, len(s.Jobs))
	for _, j := range s.Jobs {
		if j.ID != id {
			out = append(out, j)
		}
	}
	s.Jobs = out
	return s
}

// Find returns the job with the given ID.
func (s State) Find(id ID) (Job, bool) {
	for _, j := range s.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return Job{}, false
}

// WithQuery sets the search text and goes back to page 1.
func (s State) WithQuery(q string) State {
	s.Query = q
	s.Page = 1
	return s
}

// WithSource sets the source filter ("" for all) and goes back to page 1.
func (s State) WithSource(src Source) State {
	s.Source = src
	s.Page = 1
	return s
}

// SelectPage moves to page n without clamping; a page past the last one
// renders empty.
func (s State) SelectPage(n int) State {
	s.Page = n
	return s
}

// ReadMore opens the overlay with the full note of job id.
func (s State) ReadMore(id ID) (State, bool) {
	job, ok := s.Find(id)
	if !ok {
		return s, false
	}
	note := job.Note
	s.SelectedNote = &note
	return s, true
}

// CloseNote dismisses the overlay.
func (s State) CloseNote() State {
	s.SelectedNote = nil
	return s
}

// Filtered is the filter stage applied to the full list.
func (s State) Filtered() []Job {
	return Filter(s.Jobs, s.Query, s.Source)
}

// CurrentPage is the slice of the filtered list shown on the current page.
func (s State) CurrentPage() []Job {
	return Paginate(s.Filtered(), s.Page, PageSize)
}

// View is everything needed to render one screen.
type View struct {
	Cards     []Card  `json:"cards"`
	Page      int     `json:"page"`
	PageCount int     `json:"page_count"`
	Matching  int     `json:"matching"`
	Total     int     `json:"total"`
	Query     string  `json:"query,omitempty"`
	Source    Source  `json:"source,omitempty"`
	Note      *string `json:"note,omitempty"`
}

// View derives the rendered screen from s, formatting dates in loc.
func (s State) View(loc *time.Location) View {
	filtered := s.Filtered()
	page := Paginate(filtered, s.Page, PageSize)

	cards := make([]Card, len(page))
	for i, job := range page {
		cards[i] = CardFor(job, loc)
	}

	return View{
		Cards:     cards,
		Page:      s.Page,
		PageCount: PageCount(len(filtered), PageSize),
		Matching:  len(filtered),
		Total:     len(s.Jobs),
		Query:     s.Query,
		Source:    s.Source,
		Note:      s.SelectedNote,
	}
}
