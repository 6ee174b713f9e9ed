// Package tracker drives the job list against the API: it owns the
// joblist.State, applies fetch/create/delete results to it, and runs the
// login, registration and logout flows through an injected session store.
package tracker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/jobtrack/api"
	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/joblist"
	"github.com/teranos/jobtrack/logger"
	"github.com/teranos/jobtrack/session"
)

// User-facing messages.
const (
	DeletePrompt          = "Are you sure you want to delete this job?"
	MsgLoginSuccessful    = "Login successful"
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
	MsgCreateFailed       = "Error creating job"
)

// API is the subset of *api.Client the tracker uses.
type API interface {
	Register(ctx context.Context, req api.RegisterRequest) (api.RegisterResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (api.LoginResponse, error)
	Logout(ctx context.Context, sess session.Session) error
	ListJobs(ctx context.Context, sess session.Session) ([]joblist.Job, error)
	CreateJob(ctx context.Context, sess session.Session, in api.JobInput) (joblist.Job, error)
	DeleteJob(ctx context.Context, sess session.Session, id joblist.ID) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm answers yes without asking (jobs rm --yes).
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Options configures a Tracker.
type Options struct {
	API       API
	Sessions  *session.Store
	Confirmer Confirmer
	Logger    *zap.SugaredLogger
	// Location formats card dates; nil means time.Local.
	Location *time.Location
}

// Tracker holds the list state and runs user actions against the API.
// Methods are safe for concurrent use; each result is applied under a
// mutex, so a late response simply overwrites with its own update.
type Tracker struct {
	api       API
	sessions  *session.Store
	confirmer Confirmer
	logger    *zap.SugaredLogger
	loc       *time.Location

	mu        sync.Mutex
	state     joblist.State
	form      Form
	createErr string
}

// New builds a Tracker with an empty list.
func New(opts Options) *Tracker {
	t := &Tracker{
		api:       opts.API,
		sessions:  opts.Sessions,
		confirmer: opts.Confirmer,
		logger:    opts.Logger,
		loc:       opts.Location,
		state:     joblist.NewState(),
	}
	if t.sessions == nil {
		t.sessions = session.NewMemoryStore()
	}
	if t.confirmer == nil {
		t.confirmer = AlwaysConfirm
	}
	if t.logger == nil {
		t.logger = logger.ComponentLogger("tracker")
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	return t
}

// State returns the current list state.
func (t *Tracker) State() joblist.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// View renders the current state.
func (t *Tracker) View() joblist.View {
	return t.State().View(t.loc)
}

// Location is the time zone cards are formatted in.
func (t *Tracker) Location() *time.Location {
	return t.loc
}

// Form returns the create form as last submitted; empty after a success.
func (t *Tracker) Form() Form {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.form
}

// CreateError is the message of the last failed create, "" if dismissed.
func (t *Tracker) CreateError() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createErr
}

// DismissError clears the create error.
func (t *Tracker) DismissError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.createErr = ""
}

// Session returns the stored session.
func (t *Tracker) Session(ctx context.Context) (session.Session, error) {
	return t.sessions.Load(ctx)
}

func (t *Tracker) update(fn func(joblist.State) joblist.State) joblist.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = fn(t.state)
	return t.state
}

// Fetch replaces the list with the server's. On failure the error is
// logged and the previous list is kept.
func (t *Tracker) Fetch(ctx context.Context) error {
	sess, err := t.sessions.Require(ctx)
	if err != nil {
		return err
	}

	jobs, err := t.api.ListJobs(ctx, sess)
	if err != nil {
		t.logger.Errorw("Error fetching jobs", logger.FieldError, err)
		return errors.Wrap(err, "fetch jobs")
	}

	state := t.update(func(s joblist.State) joblist.State { return s.Replace(jobs) })
	t.logger.Debugw("Fetched jobs", logger.FieldCount, len(state.Jobs))
	return nil
}

// Create validates form and submits it. On success the server's record is
// prepended and the form reset. Validation errors send nothing. A server
// failure keeps the form and records the server's message, or
// MsgCreateFailed when it sent none, as the create error.
func (t *Tracker) Create(ctx context.Context, form Form) (joblist.Job, error) {
	t.mu.Lock()
	t.form = form
	t.mu.Unlock()

	in, err := form.Input()
	if err != nil {
		return joblist.Job{}, err
	}

	sess, err := t.sessions.Require(ctx)
	if err != nil {
		return joblist.Job{}, err
	}

	job, err := t.api.CreateJob(ctx, sess, in)
	if err != nil {
		msg := api.ServerMessage(err)
		if msg == "" {
			msg = MsgCreateFailed
		}
		t.logger.Errorw("Error creating job", logger.FieldError, err)
		t.mu.Lock()
		t.createErr = msg
		t.mu.Unlock()
		return joblist.Job{}, &FlowError{Message: msg, Err: err}
	}

	t.mu.Lock()
	t.state = t.state.Prepend(job)
	t.form = Form{}
	t.createErr = ""
	t.mu.Unlock()

	t.logger.Infow("Created job", logger.FieldJobID, string(job.ID))
	return job, nil
}

// DeleteOutcome is the result of a delete attempt.
type DeleteOutcome int

const (
	DeleteCancelled DeleteOutcome = iota
	Deleted
	DeleteFailed
)

func (o DeleteOutcome) String() string {
	switch o {
	case DeleteCancelled:
		return "cancelled"
	case Deleted:
		return "deleted"
	case DeleteFailed:
		return "failed"
	}
	return "unknown"
}

// Delete asks for confirmation, then deletes job id. A declined prompt
// sends nothing. On success the job is removed locally without a
// re-fetch; on failure the error is logged and the list is unchanged.
func (t *Tracker) Delete(ctx context.Context, id joblist.ID) (DeleteOutcome, error) {
	ok, err := t.confirmer.Confirm(ctx, DeletePrompt)
	if err != nil {
		return DeleteCancelled, errors.Wrap(err, "confirm delete")
	}
	if !ok {
		t.logger.Debugw("Delete cancelled", logger.FieldJobID, string(id))
		return DeleteCancelled, nil
	}

	sess, err := t.sessions.Require(ctx)
	if err != nil {
		return DeleteFailed, err
	}

	if err := t.api.DeleteJob(ctx, sess, id); err != nil {
		t.logger.Errorw("Error deleting job", logger.FieldJobID, string(id), logger.FieldError, err)
		return DeleteFailed, errors.Wrapf(err, "delete job %s", id)
	}

	t.update(func(s joblist.State) joblist.State { return s.Remove(id) })
	t.logger.Infow("Deleted job", logger.FieldJobID, string(id))
	return Deleted, nil
}

// Search sets the query and returns to page 1.
func (t *Tracker) Search(query string) joblist.State {
	t.logger.Debugw("Search", logger.FieldQuery, query)
	return t.update(func(s joblist.State) joblist.State { return s.WithQuery(query) })
}

// FilterSource sets the source filter ("" for all) and returns to page 1.
func (t *Tracker) FilterSource(src joblist.Source) joblist.State {
	t.logger.Debugw("Filter source", logger.FieldSource, string(src))
	return t.update(func(s joblist.State) joblist.State { return s.WithSource(src) })
}

// SelectPage moves to page n as given; pages past the end render empty.
func (t *Tracker) SelectPage(n int) joblist.State {
	t.logger.Debugw("Select page", logger.FieldPage, n)
	return t.update(func(s joblist.State) joblist.State { return s.SelectPage(n) })
}

// NextPage advances one page, stopping at the last.
func (t *Tracker) NextPage() joblist.State {
	return t.update(func(s joblist.State) joblist.State {
		last := joblist.PageCount(len(s.Filtered()), joblist.PageSize)
		if s.Page < last {
			return s.SelectPage(s.Page + 1)
		}
		return s
	})
}

// PrevPage goes back one page, stopping at 1.
func (t *Tracker) PrevPage() joblist.State {
	return t.update(func(s joblist.State) joblist.State {
		if s.Page > 1 {
			return s.SelectPage(s.Page - 1)
		}
		return s
	})
}

// ReadMore opens the full note of job id; false if there is no such job.
func (t *Tracker) ReadMore(id joblist.ID) bool {
	found := false
	t.update(func(s joblist.State) joblist.State {
		next, ok := s.ReadMore(id)
		found = ok
		return next
	})
	return found
}

// CloseNote dismisses the note overlay.
func (t *Tracker) CloseNote() {
	t.update(func(s joblist.State) joblist.State { return s.CloseNote() })
}
