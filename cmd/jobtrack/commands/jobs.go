package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jobtrack/display"
	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/joblist"
	"github.com/teranos/jobtrack/tracker"
)

// JobsCmd groups the job list commands
var JobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List, add and remove job applications",
	Long: `Manage the job applications you are tracking.

Examples:
  jobtrack jobs ls                          # First page of all jobs
  jobtrack jobs ls --search acme --page 2   # Filter by company or title
  jobtrack jobs ls --source "Direct Email"  # Filter by source
  jobtrack jobs add --company Acme --title "Backend Engineer" --source LinkedIn
  jobtrack jobs rm 42                       # Asks before deleting
  jobtrack jobs note 42                     # Full note of a job`,
}

var jobsListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List jobs, one page at a time",
	Args:    cobra.NoArgs,
	RunE:    runJobsList,
}

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job application",
	Args:  cobra.NoArgs,
	RunE:  runJobsAdd,
}

var jobsRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a job application",
	Args:    cobra.ExactArgs(1),
	RunE:    runJobsRemove,
}

var jobsNoteCmd = &cobra.Command{
	Use:   "note <id>",
	Short: "Show the full note of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsNote,
}

// ListOptions select what jobs ls shows.
type ListOptions struct {
	Search string
	Source string
	Page   int
}

var (
	listOpts ListOptions
	addForm  tracker.Form
	rmYes    bool
)

func init() {
	jobsListCmd.Flags().StringVar(&listOpts.Search, "search", "", "match company or title (case-insensitive)")
	jobsListCmd.Flags().StringVar(&listOpts.Source, "source", "", "only jobs applied from this source")
	jobsListCmd.Flags().IntVar(&listOpts.Page, "page", 1, "page number (15 jobs per page)")

	jobsAddCmd.Flags().StringVar(&addForm.Company, "company", "", "company name (required)")
	jobsAddCmd.Flags().StringVar(&addForm.JobTitle, "title", "", "job title (required)")
	jobsAddCmd.Flags().StringVar(&addForm.AppliedFrom, "source", "", "where you applied (required)")
	jobsAddCmd.Flags().StringVar(&addForm.ApplicationLink, "link", "", "application URL")
	jobsAddCmd.Flags().StringVar(&addForm.Note, "note", "", "free-form note")

	jobsRemoveCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "delete without asking")

	JobsCmd.AddCommand(jobsListCmd)
	JobsCmd.AddCommand(jobsAddCmd)
	JobsCmd.AddCommand(jobsRemoveCmd)
	JobsCmd.AddCommand(jobsNoteCmd)
}

func runJobsList(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	return ListJobs(cmd.Context(), app, cmd.OutOrStdout(), listOpts, display.ShouldOutputJSON(cmd))
}

// ListJobs fetches the list and renders the requested page.
func ListJobs(ctx context.Context, app *App, w io.Writer, opts ListOptions, asJSON bool) error {
	src, err := joblist.ParseSource(opts.Source)
	if err != nil {
		return err
	}
	if err := app.Tracker.Fetch(ctx); err != nil {
		return err
	}

	app.Tracker.Search(opts.Search)
	app.Tracker.FilterSource(src)
	app.Tracker.SelectPage(opts.Page)

	view := app.Tracker.View()
	if asJSON {
		return display.OutputJSON(w, view)
	}
	display.RenderView(w, view)
	return nil
}

func runJobsAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	return AddJob(cmd.Context(), app, cmd.OutOrStdout(), addForm, display.ShouldOutputJSON(cmd))
}

// AddJob creates a job from form and prints the stored record.
func AddJob(ctx context.Context, app *App, w io.Writer, form tracker.Form, asJSON bool) error {
	job, err := app.Tracker.Create(ctx, form)
	if err != nil {
		if msg := app.Tracker.CreateError(); msg != "" && !asJSON {
			fmt.Fprint(w, display.ErrorBox(msg))
		}
		return err
	}
	if asJSON {
		return display.OutputJSON(w, job)
	}
	fmt.Fprintln(w, pterm.Green("Added job "+string(job.ID)))
	fmt.Fprint(w, display.Card(joblist.CardFor(job, app.Tracker.Location())))
	return nil
}

func runJobsRemove(cmd *cobra.Command, args []string) error {
	confirmer := stdinConfirmer(cmd)
	if rmYes {
		confirmer = tracker.AlwaysConfirm
	}
	app, err := openApp(cmd, confirmer)
	if err != nil {
		return err
	}
	defer app.Close()

	return RemoveJob(cmd.Context(), app, cmd.OutOrStdout(), joblist.ID(args[0]), display.ShouldOutputJSON(cmd))
}

// RemoveJob asks for confirmation and deletes job id.
func RemoveJob(ctx context.Context, app *App, w io.Writer, id joblist.ID, asJSON bool) error {
	outcome, err := app.Tracker.Delete(ctx, id)
	if asJSON {
		if jsonErr := display.OutputJSON(w, map[string]string{"id": string(id), "outcome": outcome.String()}); jsonErr != nil {
			return jsonErr
		}
		return err
	}
	switch outcome {
	case tracker.Deleted:
		fmt.Fprintln(w, pterm.Green("Deleted job "+string(id)))
	case tracker.DeleteCancelled:
		fmt.Fprintln(w, "Cancelled")
	}
	return err
}

func runJobsNote(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	return ShowNote(cmd.Context(), app, cmd.OutOrStdout(), joblist.ID(args[0]), display.ShouldOutputJSON(cmd))
}

// ShowNote fetches the list and prints the full note of job id.
func ShowNote(ctx context.Context, app *App, w io.Writer, id joblist.ID, asJSON bool) error {
	if err := app.Tracker.Fetch(ctx); err != nil {
		return err
	}
	if !app.Tracker.ReadMore(id) {
		return errors.Mark(errors.Newf("no job with id %s", id), errors.ErrNotFound)
	}
	note := app.Tracker.View().Note
	if asJSON {
		return display.OutputJSON(w, map[string]string{"id": string(id), "note": *note})
	}
	fmt.Fprint(w, display.NoteOverlay(*note))
	return nil
}
