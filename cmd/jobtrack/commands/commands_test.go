package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jobtrack/config"
	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/internal/testing/fakeapi"
	"github.com/teranos/jobtrack/joblist"
	"github.com/teranos/jobtrack/tracker"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		API: config.APIConfig{
			BaseURL:        baseURL,
			TimeoutSeconds: 5,
		},
		Storage: config.StorageConfig{Path: filepath.Join(t.TempDir(), "state", "jobtrack.db")},
	}
}

func openTestApp(t *testing.T, cfg *config.Config, confirmer tracker.Confirmer) *App {
	t.Helper()
	app, err := OpenApp(cfg, confirmer)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestOpenApp_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, "ftp://example.com")
	_, err := OpenApp(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, errors.GetAllHints(err), "run 'jobtrack config validate' for details")
}

func TestLoginWhoamiLogout(t *testing.T) {
	srv := fakeapi.New(t)
	srv.AddUser("Ada", "ada@example.com", "pw")
	cfg := testConfig(t, srv.URL())
	ctx := context.Background()

	app := openTestApp(t, cfg, nil)

	var out bytes.Buffer
	err := Whoami(ctx, app, &out, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotAuthenticated))

	out.Reset()
	require.NoError(t, Login(ctx, app, &out, Credentials{Email: "ada@example.com", Password: "pw"}, false))
	assert.Contains(t, out.String(), tracker.MsgLoginSuccessful)
	assert.Contains(t, out.String(), "Welcome, Ada")
	require.NoError(t, app.Close())

	// the session survives reopening the local store
	app = openTestApp(t, cfg, nil)
	out.Reset()
	require.NoError(t, Whoami(ctx, app, &out, false))
	assert.Equal(t, "Ada\n", out.String())

	out.Reset()
	require.NoError(t, Logout(ctx, app, &out))
	assert.Equal(t, "Logged out\n", out.String())

	err = Whoami(ctx, app, &out, false)
	assert.True(t, errors.Is(err, errors.ErrNotAuthenticated))
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := fakeapi.New(t)
	srv.AddUser("Ada", "ada@example.com", "pw")
	app := openTestApp(t, testConfig(t, srv.URL()), nil)

	var out bytes.Buffer
	err := Login(context.Background(), app, &out, Credentials{Email: "ada@example.com", Password: "nope"}, false)
	require.Error(t, err)
	assert.Equal(t, tracker.MsgLoginFailed, tracker.UserMessage(err))
	assert.Empty(t, out.String())
}

func TestRegister_JSON(t *testing.T) {
	srv := fakeapi.New(t)
	app := openTestApp(t, testConfig(t, srv.URL()), nil)

	var out bytes.Buffer
	require.NoError(t, Register(context.Background(), app, &out, Credentials{Name: "Ada", Email: "ada@example.com", Password: "pw"}, true))

	var body map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Contains(t, body, "message")
}

// loggedIn opens an App whose session belongs to Ada.
func loggedIn(t *testing.T, srv *fakeapi.Server, confirmer tracker.Confirmer) *App {
	t.Helper()
	srv.AddUser("Ada", "ada@example.com", "pw")
	app := openTestApp(t, testConfig(t, srv.URL()), confirmer)
	var out bytes.Buffer
	require.NoError(t, Login(context.Background(), app, &out, Credentials{Email: "ada@example.com", Password: "pw"}, false))
	return app
}

func TestListJobs(t *testing.T) {
	srv := fakeapi.New(t)
	app := loggedIn(t, srv, nil)
	srv.SeedJobs("Ada",
		joblist.Job{Company: "Acme", JobTitle: "Backend Engineer", AppliedFrom: joblist.SourceLinkedIn, CreatedAt: "2024-03-05T10:00:00Z"},
		joblist.Job{Company: "Globex", JobTitle: "SRE", AppliedFrom: joblist.SourceIndeed, CreatedAt: "2024-03-06T10:00:00Z"},
	)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, ListJobs(ctx, app, &out, ListOptions{Page: 1}, false))
	assert.Contains(t, out.String(), "Acme")
	assert.Contains(t, out.String(), "Globex")

	out.Reset()
	require.NoError(t, ListJobs(ctx, app, &out, ListOptions{Search: "acme", Page: 1}, false))
	assert.Contains(t, out.String(), "Acme")
	assert.NotContains(t, out.String(), "Globex")

	out.Reset()
	require.NoError(t, ListJobs(ctx, app, &out, ListOptions{Source: "indeed", Page: 1}, true))
	var view joblist.View
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	require.Len(t, view.Cards, 1)
	assert.Equal(t, "Globex", view.Cards[0].Company)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, joblist.SourceIndeed, view.Source)
}

func TestListJobs_UnknownSource(t *testing.T) {
	srv := fakeapi.New(t)
	app := loggedIn(t, srv, nil)

	var out bytes.Buffer
	err := ListJobs(context.Background(), app, &out, ListOptions{Source: "Monster", Page: 1}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	assert.Empty(t, srv.Jobs("Ada"))
}

func TestListJobs_NotLoggedIn(t *testing.T) {
	srv := fakeapi.New(t)
	app := openTestApp(t, testConfig(t, srv.URL()), nil)

	var out bytes.Buffer
	err := ListJobs(context.Background(), app, &out, ListOptions{Page: 1}, false)
	assert.True(t, errors.Is(err, errors.ErrNotAuthenticated))
	assert.Empty(t, srv.Requests())
}

func TestAddJob(t *testing.T) {
	srv := fakeapi.New(t)
	app := loggedIn(t, srv, nil)

	var out bytes.Buffer
	err := AddJob(context.Background(), app, &out, tracker.Form{
		Company:     "Initech",
		JobTitle:    "Staff Engineer",
		AppliedFrom: "direct email",
		Note:        "Referred by Peter",
	}, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Added job 1")
	assert.Contains(t, out.String(), "Staff Engineer")
	assert.Contains(t, out.String(), "Direct Email")

	jobs := srv.Jobs("Ada")
	require.Len(t, jobs, 1)
	assert.Equal(t, joblist.SourceDirectEmail, jobs[0].AppliedFrom)
}

func TestAddJob_ServerFailureShowsErrorBox(t *testing.T) {
	srv := fakeapi.New(t)
	app := loggedIn(t, srv, nil)
	srv.Fail("POST /api/myjobs", 500, "")

	var out bytes.Buffer
	err := AddJob(context.Background(), app, &out, tracker.Form{
		Company:     "Initech",
		JobTitle:    "Staff Engineer",
		AppliedFrom: "LinkedIn",
	}, false)
	require.Error(t, err)
	assert.Contains(t, out.String(), tracker.MsgCreateFailed)
}

func TestRemoveJob(t *testing.T) {
	srv := fakeapi.New(t)
	app := loggedIn(t, srv, tracker.AlwaysConfirm)
	srv.SeedJobs("Ada", joblist.Job{Company: "Acme", JobTitle: "Engineer", AppliedFrom: joblist.SourceDice})

	var out bytes.Buffer
	require.NoError(t, RemoveJob(context.Background(), app, &out, "1", false))
	assert.Equal(t, "Deleted job 1\n", out.String())
	assert.Empty(t, srv.Jobs("Ada"))
}

func TestRemoveJob_Cancelled(t *testing.T) {
	srv := fakeapi.New(t)
	decline := tracker.ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
	app := loggedIn(t, srv, decline)
	srv.SeedJobs("Ada", joblist.Job{Company: "Acme", JobTitle: "Engineer", AppliedFrom: joblist.SourceDice})
	before := len(srv.Requests())

	var out bytes.Buffer
	require.NoError(t, RemoveJob(context.Background(), app, &out, "1", true))

	var body map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, tracker.DeleteCancelled.String(), body["outcome"])
	assert.Len(t, srv.Jobs("Ada"), 1)
	assert.Len(t, srv.Requests(), before)
}

func TestRemoveJob_NotFound(t *testing.T) {
	srv := fakeapi.New(t)
	app := loggedIn(t, srv, tracker.AlwaysConfirm)

	var out bytes.Buffer
	err := RemoveJob(context.Background(), app, &out, "99", false)
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestShowNote(t *testing.T) {
	srv := fakeapi.New(t)
	app := loggedIn(t, srv, nil)
	long := "Panel interview with three engineers. " +
		"Asked about distributed caches, then a take-home exercise due Friday. " +
		"Follow up with the recruiter next week."
	srv.SeedJobs("Ada", joblist.Job{Company: "Acme", JobTitle: "Engineer", AppliedFrom: joblist.SourceGlassdoor, Note: long})
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, ShowNote(ctx, app, &out, "1", false))
	assert.Contains(t, out.String(), "Follow up with the recruiter next week.")

	err := ShowNote(ctx, app, &out, "42", false)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(user, []byte(`
[api]
base_url = "https://jobs.example.com"
colour = "blue"
`), 0600))

	loaded, err := config.LoadPaths(config.Paths{User: user})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, GetConfigValue(&out, loaded, "api.base_url"))
	assert.Equal(t, "https://jobs.example.com\n", out.String())

	err = GetConfigValue(&out, loaded, "api.nope")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	var cfg config.Config
	require.NoError(t, loaded.Viper.Unmarshal(&cfg))

	out.Reset()
	require.NoError(t, ValidateConfig(&out, &cfg, loaded.Files))
	assert.Contains(t, out.String(), `unknown key "api.colour"`)
	assert.Contains(t, out.String(), "Configuration is valid")

	out.Reset()
	require.NoError(t, ShowConfig(&out, &cfg, config.FormatTOML))
	assert.Contains(t, out.String(), "https://jobs.example.com")

	out.Reset()
	ConfigWhere(&out, loaded)
	assert.Contains(t, out.String(), "[user]")
	assert.Contains(t, out.String(), user)

	cfg.API.BaseURL = "not a url"
	assert.Error(t, ValidateConfig(&out, &cfg, nil))
}

func TestLogSettings(t *testing.T) {
	t.Setenv("JOBTRACK_OUTPUT", "")

	tests := []struct {
		name          string
		args          []string
		cfg           *config.Config
		wantJSON      bool
		wantVerbosity int
	}{
		{"defaults", []string{"ls"}, nil, false, 0},
		{"json flag", []string{"ls", "--json", "-vv"}, nil, true, 2},
		{"log.json config", []string{"ls", "-v"}, &config.Config{Log: config.LogConfig{JSON: true}}, true, 1},
		{"config off", []string{"ls"}, &config.Config{}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := &cobra.Command{Use: "jobtrack"}
			root.PersistentFlags().CountP("verbose", "v", "")
			root.PersistentFlags().Bool("json", false, "")

			var gotJSON bool
			var gotVerbosity int
			root.AddCommand(&cobra.Command{
				Use: "ls",
				Run: func(cmd *cobra.Command, args []string) {
					gotJSON, gotVerbosity = LogSettings(cmd, tt.cfg)
				},
			})
			root.SetArgs(tt.args)
			require.NoError(t, root.Execute())

			assert.Equal(t, tt.wantJSON, gotJSON)
			assert.Equal(t, tt.wantVerbosity, gotVerbosity)
		})
	}
}
