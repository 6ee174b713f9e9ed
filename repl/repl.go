// Package repl is the interactive job browser: a line-oriented loop where
// each input line is one action on the tracker, after which the current
// page is rendered again.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/teranos/jobtrack/display"
	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/joblist"
	"github.com/teranos/jobtrack/logger"
	"github.com/teranos/jobtrack/tracker"
)

// Prompt is printed before every input line.
const Prompt = "jobtrack> "

const helpText = `Commands:
  search [text]          filter by company or title (empty clears)
  source [tag|all]       filter by source (see 'sources')
  page <n> | next | prev change page
  more <id>              show the full note of a job
  close                  close the note or dismiss an error
  rm <id>                delete a job (asks first)
  add --company C --title T --source S [--link URL] [--note N]
  refresh                reload from the server
  sources                list source tags
  whoami                 show the logged-in user
  help                   this text
  quit                   leave`

// REPL reads actions from a scanner and applies them to a tracker.
type REPL struct {
	tracker *tracker.Tracker
	in      *bufio.Scanner
	out     io.Writer
	logger  *zap.SugaredLogger
}

// New builds a REPL. in is shared with any LineConfirmer the tracker uses,
// so confirmation answers are read from the same stream.
func New(t *tracker.Tracker, in *bufio.Scanner, out io.Writer) *REPL {
	return &REPL{
		tracker: t,
		in:      in,
		out:     out,
		logger:  logger.ComponentLogger("repl"),
	}
}

// Run fetches the list, renders it and processes lines until quit, end of
// input or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	ctx = logger.WithComponent(ctx, "repl")
	if err := r.tracker.Fetch(ctx); err != nil {
		r.printError(err)
		if errors.Is(err, errors.ErrNotAuthenticated) {
			return err
		}
	}
	r.render()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.out, Prompt)
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		if done := r.Exec(ctx, r.in.Text()); done {
			return nil
		}
	}
}

// Exec runs one input line and reports whether the loop should stop.
func (r *REPL) Exec(ctx context.Context, line string) bool {
	args, err := shellquote.Split(line)
	if err != nil {
		r.logger.Debugw("Quote parsing failed, using simple split", "line", line, logger.FieldError, err)
		args = strings.Fields(line)
	}
	if len(args) == 0 {
		return false
	}

	cmd, rest := strings.ToLower(args[0]), args[1:]
	r.logger.Debugw("Command", logger.FieldOperation, cmd, logger.FieldCount, len(rest))

	switch cmd {
	case "quit", "exit", "q":
		return true

	case "help", "?":
		fmt.Fprintln(r.out, helpText)
		return false

	case "whoami":
		r.whoami(ctx)
		return false

	case "sources":
		display.Sources(r.out)
		return false

	case "search":
		r.tracker.Search(strings.Join(rest, " "))

	case "source":
		arg := strings.Join(rest, " ")
		if strings.EqualFold(arg, "all") {
			arg = ""
		}
		src, err := joblist.ParseSource(arg)
		if err != nil {
			r.printError(err)
			return false
		}
		r.tracker.FilterSource(src)

	case "page":
		if len(rest) != 1 {
			r.printError(errors.NewInvalidRequestError("usage: page <n>"))
			return false
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			r.printError(errors.NewInvalidRequestError("page must be a number, got %q", rest[0]))
			return false
		}
		r.tracker.SelectPage(n)

	case "next", "n":
		r.tracker.NextPage()

	case "prev", "p":
		r.tracker.PrevPage()

	case "more":
		id, ok := r.idArg(rest, "more")
		if !ok {
			return false
		}
		if !r.tracker.ReadMore(id) {
			r.printError(errors.Mark(errors.Newf("no job with id %s", id), errors.ErrNotFound))
			return false
		}

	case "close":
		r.tracker.CloseNote()
		r.tracker.DismissError()

	case "rm", "delete":
		id, ok := r.idArg(rest, "rm")
		if !ok {
			return false
		}
		outcome, err := r.tracker.Delete(ctx, id)
		switch outcome {
		case tracker.Deleted:
			fmt.Fprintln(r.out, pterm.Green("Deleted job "+string(id)))
		case tracker.DeleteCancelled:
			fmt.Fprintln(r.out, pterm.Gray("Cancelled"))
		case tracker.DeleteFailed:
			fmt.Fprintln(r.out, pterm.Red("Failed to delete job "+string(id)))
			r.logger.Debugw("Delete failed", logger.FieldJobID, string(id), logger.FieldError, err)
		}

	case "add":
		form, err := ParseForm(rest)
		if err != nil {
			r.printError(err)
			return false
		}
		job, err := r.tracker.Create(ctx, form)
		if err != nil {
			if msg := r.tracker.CreateError(); msg != "" {
				fmt.Fprint(r.out, display.ErrorBox(msg))
			} else {
				r.printError(err)
			}
			return false
		}
		fmt.Fprintln(r.out, pterm.Green("Added job "+string(job.ID)))

	case "refresh":
		if err := r.tracker.Fetch(ctx); err != nil {
			r.printError(err)
		}

	default:
		fmt.Fprintf(r.out, "Unknown command %q (try 'help')\n", cmd)
		return false
	}

	r.render()
	return false
}

func (r *REPL) render() {
	display.RenderView(r.out, r.tracker.View())
}

func (r *REPL) whoami(ctx context.Context) {
	sess, err := r.tracker.Session(ctx)
	if err != nil {
		r.printError(err)
		return
	}
	if !sess.Authenticated() {
		fmt.Fprintln(r.out, "Not logged in")
		return
	}
	fmt.Fprintln(r.out, sess.UserName)
}

func (r *REPL) idArg(args []string, cmd string) (joblist.ID, bool) {
	if len(args) != 1 {
		r.printError(errors.NewInvalidRequestError("usage: %s <id>", cmd))
		return "", false
	}
	return joblist.ID(args[0]), true
}

func (r *REPL) printError(err error) {
	fmt.Fprintln(r.out, pterm.Red("Error: ")+tracker.UserMessage(err))
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintln(r.out, pterm.Gray("  hint: "+hint))
	}
}

// ParseForm reads the add command's flags into a form.
func ParseForm(args []string) (tracker.Form, error) {
	var form tracker.Form
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&form.Company, "company", "", "company name")
	fs.StringVar(&form.JobTitle, "title", "", "job title")
	fs.StringVar(&form.AppliedFrom, "source", "", "where you applied")
	fs.StringVar(&form.ApplicationLink, "link", "", "application URL")
	fs.StringVar(&form.Note, "note", "", "free-form note")

	if err := fs.Parse(args); err != nil {
		return tracker.Form{}, errors.Mark(errors.Wrap(err, "add"), errors.ErrInvalidRequest)
	}
	if fs.NArg() > 0 {
		return tracker.Form{}, errors.NewInvalidRequestError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return form, nil
}
