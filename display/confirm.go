package display

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/jobtrack/errors"
)

// TerminalConfirmer asks with pterm's interactive yes/no prompt. It needs
// a real terminal.
type TerminalConfirmer struct{}

// Confirm shows prompt and waits for y/n, defaulting to no.
func (TerminalConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(prompt)
	if err != nil {
		return false, errors.Wrap(err, "confirm prompt")
	}
	return ok, nil
}

// LineConfirmer asks on Out and reads the answer as a line from In. Only
// "y" and "yes" (any case) confirm; end of input declines.
type LineConfirmer struct {
	In  *bufio.Scanner
	Out io.Writer
}

// NewLineConfirmer reads answers from r.
func NewLineConfirmer(r io.Reader, w io.Writer) *LineConfirmer {
	return &LineConfirmer{In: bufio.NewScanner(r), Out: w}
}

// Confirm writes "prompt [y/N]: " and reads one line.
func (c *LineConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(c.Out, "%s %s: ", prompt, pterm.Gray("[y/N]"))
	if !c.In.Scan() {
		if err := c.In.Err(); err != nil {
			return false, errors.Wrap(err, "read confirmation")
		}
		fmt.Fprintln(c.Out)
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(c.In.Text())) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
