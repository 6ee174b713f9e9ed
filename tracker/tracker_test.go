package tracker

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/jobtrack/api"
	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/internal/testing/fakeapi"
	"github.com/teranos/jobtrack/joblist"
	"github.com/teranos/jobtrack/session"
)

type fixture struct {
	srv      *fakeapi.Server
	tracker  *Tracker
	sessions *session.Store
	logs     *observer.ObservedLogs
	asked    []string
	answer   bool
}

// newFixture starts a fake API with user "Ada" logged in.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{srv: fakeapi.New(t), sessions: session.NewMemoryStore(), answer: true}

	client, err := api.New(api.Options{
		BaseURL:    f.srv.URL(),
		HTTPClient: f.srv.Client(),
		Logger:     zap.NewNop().Sugar(),
	})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs

	f.tracker = New(Options{
		API:      client,
		Sessions: f.sessions,
		Confirmer: ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
			f.asked = append(f.asked, prompt)
			return f.answer, nil
		}),
		Logger:   zap.New(core).Sugar(),
		Location: time.UTC,
	})

	require.NoError(t, f.sessions.Save(context.Background(), session.Session{
		Token:    f.srv.IssueToken("Ada"),
		UserName: "Ada",
	}))
	return f
}

func (f *fixture) seed(t *testing.T, jobs ...joblist.Job) {
	t.Helper()
	f.srv.SeedJobs("Ada", jobs...)
	require.NoError(t, f.tracker.Fetch(context.Background()))
}

func (f *fixture) countRequests(method string) int {
	n := 0
	for _, r := range f.srv.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func jobIDs(jobs []joblist.Job) []joblist.ID {
	out := make([]joblist.ID, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func validForm() Form {
	return Form{
		Company:         "Globex",
		JobTitle:        "Platform Engineer",
		AppliedFrom:     "direct email",
		ApplicationLink: "https://globex.example/careers/42",
		Note:            "met at meetup",
	}
}

func TestFetch_ReplacesList(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		joblist.Job{Company: "Acme", JobTitle: "Engineer"},
		joblist.Job{Company: "Initech", JobTitle: "Analyst"},
	)

	assert.Equal(t, []joblist.ID{"1", "2"}, jobIDs(f.tracker.State().Jobs))

	f.srv.SeedJobs("Ada", joblist.Job{Company: "Hooli"})
	require.NoError(t, f.tracker.Fetch(context.Background()))
	assert.Len(t, f.tracker.State().Jobs, 3)
}

func TestFetch_FailureKeepsList(t *testing.T) {
	f := newFixture(t)
	f.seed(t, joblist.Job{Company: "Acme"})

	f.srv.Fail("GET /api/myjobs", http.StatusInternalServerError, "boom")
	err := f.tracker.Fetch(context.Background())
	require.Error(t, err)

	assert.Equal(t, []joblist.ID{"1"}, jobIDs(f.tracker.State().Jobs))
	assert.Equal(t, 1, f.logs.FilterMessage("Error fetching jobs").Len())
}

func TestFetch_RequiresSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Clear(context.Background()))

	err := f.tracker.Fetch(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNotAuthenticated))
	assert.Empty(t, f.srv.Requests())
}

func TestDelete_Confirmed(t *testing.T) {
	f := newFixture(t)
	f.seed(t, joblist.Job{Company: "A"}, joblist.Job{Company: "B"})

	outcome, err := f.tracker.Delete(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, Deleted, outcome)
	assert.Equal(t, []string{DeletePrompt}, f.asked)
	assert.Equal(t, []joblist.ID{"2"}, jobIDs(f.tracker.State().Jobs))

	// Removal is local; no re-fetch after the delete.
	assert.Equal(t, 1, f.countRequests(http.MethodGet))
	assert.Equal(t, 1, f.countRequests(http.MethodDelete))
}

func TestDelete_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.seed(t, joblist.Job{Company: "A"}, joblist.Job{Company: "B"})
	f.answer = false

	outcome, err := f.tracker.Delete(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, DeleteCancelled, outcome)
	assert.Equal(t, []joblist.ID{"1", "2"}, jobIDs(f.tracker.State().Jobs))
	assert.Zero(t, f.countRequests(http.MethodDelete))
}

func TestDelete_ServerFailureLeavesListUnchanged(t *testing.T) {
	f := newFixture(t)
	f.seed(t, joblist.Job{Company: "A"}, joblist.Job{Company: "B"})
	f.srv.Fail("DELETE /api/myjobs/:id", http.StatusInternalServerError, "nope")

	outcome, err := f.tracker.Delete(context.Background(), "1")
	assert.Error(t, err)
	assert.Equal(t, DeleteFailed, outcome)
	assert.Equal(t, []joblist.ID{"1", "2"}, jobIDs(f.tracker.State().Jobs))
	assert.Equal(t, 1, f.logs.FilterMessage("Error deleting job").Len())
}

func TestDelete_ConfirmerError(t *testing.T) {
	f := newFixture(t)
	f.tracker.confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
		return false, errors.New("interrupted")
	})

	outcome, err := f.tracker.Delete(context.Background(), "1")
	assert.Error(t, err)
	assert.Equal(t, DeleteCancelled, outcome)
	assert.Zero(t, f.countRequests(http.MethodDelete))
}

func TestCreate_PrependsAndResetsForm(t *testing.T) {
	f := newFixture(t)
	f.seed(t, joblist.Job{Company: "A"}, joblist.Job{Company: "B"}, joblist.Job{Company: "C"}, joblist.Job{Company: "D"})

	job, err := f.tracker.Create(context.Background(), validForm())
	require.NoError(t, err)

	assert.Equal(t, joblist.ID("5"), job.ID)
	assert.Equal(t, []joblist.ID{"5", "1", "2", "3", "4"}, jobIDs(f.tracker.State().Jobs))
	assert.True(t, f.tracker.Form().Empty())
	assert.Empty(t, f.tracker.CreateError())

	stored := f.srv.Jobs("Ada")
	require.Len(t, stored, 5)
	assert.Equal(t, joblist.SourceDirectEmail, stored[4].AppliedFrom)
}

func TestCreate_ServerMessage(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail("POST /api/myjobs", http.StatusUnprocessableEntity, "Duplicate application")

	form := validForm()
	_, err := f.tracker.Create(context.Background(), form)
	require.Error(t, err)

	assert.Equal(t, "Duplicate application", UserMessage(err))
	assert.Equal(t, "Duplicate application", f.tracker.CreateError())
	assert.Equal(t, form, f.tracker.Form(), "fields stay intact")
	assert.Empty(t, f.tracker.State().Jobs)

	f.tracker.DismissError()
	assert.Empty(t, f.tracker.CreateError())
}

func TestCreate_FallbackMessage(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail("POST /api/myjobs", http.StatusInternalServerError, "")

	_, err := f.tracker.Create(context.Background(), validForm())
	require.Error(t, err)
	assert.Equal(t, MsgCreateFailed, UserMessage(err))
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
}

func TestCreate_ValidationSendsNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
	}{
		{"missing company", func(f *Form) { f.Company = "  " }},
		{"missing title", func(f *Form) { f.JobTitle = "" }},
		{"missing source", func(f *Form) { f.AppliedFrom = "" }},
		{"unknown source", func(f *Form) { f.AppliedFrom = "Craigslist" }},
		{"relative link", func(f *Form) { f.ApplicationLink = "careers/42" }},
		{"javascript link", func(f *Form) { f.ApplicationLink = "javascript:alert(1)" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			form := validForm()
			tt.mutate(&form)

			_, err := f.tracker.Create(context.Background(), form)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidRequestError(err))
			assert.Empty(t, f.srv.Requests())
			assert.Equal(t, form, f.tracker.Form())
		})
	}
}

func TestForm_Input(t *testing.T) {
	in, err := Form{Company: " Acme ", JobTitle: "Dev", AppliedFrom: "linkedin"}.Input()
	require.NoError(t, err)
	assert.Equal(t, api.JobInput{Company: "Acme", JobTitle: "Dev", AppliedFrom: joblist.SourceLinkedIn}, in)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Clear(context.Background()))
	f.srv.AddUser("Grace", "grace@example.com", "hopper")

	sess, err := f.tracker.Login(context.Background(), "grace@example.com", "hopper")
	require.NoError(t, err)
	assert.Equal(t, "Grace", sess.UserName)

	stored, err := f.tracker.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sess, stored)
	assert.True(t, f.srv.TokenValid(stored.Token))
}

func TestLogin_FailureCollapses(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Clear(context.Background()))
	f.srv.AddUser("Grace", "grace@example.com", "hopper")

	_, err := f.tracker.Login(context.Background(), "grace@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, MsgLoginFailed, UserMessage(err))
	assert.Equal(t, MsgLoginFailed, err.Error())
	assert.True(t, errors.IsUnauthorizedError(err))

	stored, err := f.tracker.Session(context.Background())
	require.NoError(t, err)
	assert.False(t, stored.Authenticated())
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	msg, err := f.tracker.Register(context.Background(), "Linus", "linus@example.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	_, err = f.tracker.Register(context.Background(), "Linus", "linus@example.com", "pw")
	require.Error(t, err)
	assert.Equal(t, MsgRegistrationFailed, UserMessage(err))
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.seed(t, joblist.Job{Company: "A"})
	token := f.srv.Requests()[0].Authorization

	require.NoError(t, f.tracker.Logout(context.Background()))

	stored, err := f.tracker.Session(context.Background())
	require.NoError(t, err)
	assert.False(t, stored.Authenticated())
	assert.Empty(t, f.tracker.State().Jobs)
	assert.False(t, f.srv.TokenValid(token[len("Bearer "):]))
}

func TestLogout_FailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail("POST /api/logout", http.StatusInternalServerError, "")

	require.Error(t, f.tracker.Logout(context.Background()))

	stored, err := f.tracker.Session(context.Background())
	require.NoError(t, err)
	assert.True(t, stored.Authenticated())
	assert.Equal(t, 1, f.logs.FilterMessage("Logout failed").Len())
}

func TestNavigation(t *testing.T) {
	f := newFixture(t)
	jobs := make([]joblist.Job, 20)
	for i := range jobs {
		jobs[i] = joblist.Job{Company: fmt.Sprintf("Company %d", i), JobTitle: "Engineer", Note: "short"}
	}
	jobs[3].Company = "Acme"
	f.seed(t, jobs...)

	assert.Equal(t, 2, f.tracker.NextPage().Page)
	assert.Equal(t, 2, f.tracker.NextPage().Page, "stops at the last page")
	assert.Equal(t, 1, f.tracker.PrevPage().Page)
	assert.Equal(t, 1, f.tracker.PrevPage().Page, "stops at page 1")

	f.tracker.SelectPage(9)
	assert.Empty(t, f.tracker.View().Cards)

	st := f.tracker.Search("ACME")
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, []joblist.ID{"4"}, jobIDs(st.CurrentPage()))

	f.tracker.SelectPage(2)
	st = f.tracker.FilterSource(joblist.SourceDice)
	assert.Equal(t, 1, st.Page)
	assert.Empty(t, st.CurrentPage())

	require.True(t, f.tracker.ReadMore("4"))
	require.NotNil(t, f.tracker.View().Note)
	assert.Equal(t, "short", *f.tracker.View().Note)
	f.tracker.CloseNote()
	assert.Nil(t, f.tracker.View().Note)
	assert.False(t, f.tracker.ReadMore("999"))
}

func TestConcurrentUpdates(t *testing.T) {
	f := newFixture(t)
	f.seed(t, joblist.Job{Company: "A"}, joblist.Job{Company: "B"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			f.tracker.Search(fmt.Sprintf("q%d", i))
		}(i)
		go func() {
			defer wg.Done()
			_ = f.tracker.Fetch(context.Background())
		}()
	}
	wg.Wait()

	assert.Len(t, f.tracker.State().Jobs, 2)
}

func TestNavigation_LogsSelections(t *testing.T) {
	f := newFixture(t)

	f.tracker.Search("acme")
	f.tracker.FilterSource(joblist.SourceDice)
	f.tracker.SelectPage(4611686018427387905)

	search := f.logs.FilterMessage("Search").All()
	require.Len(t, search, 1)
	assert.Equal(t, "acme", search[0].ContextMap()["query"])

	source := f.logs.FilterMessage("Filter source").All()
	require.Len(t, source, 1)
	assert.Equal(t, "Dice", source[0].ContextMap()["source"])

	page := f.logs.FilterMessage("Select page").All()
	require.Len(t, page, 1)
	assert.Equal(t, int64(4611686018427387905), page[0].ContextMap()["page"])

	assert.Empty(t, f.tracker.View().Cards)
}
