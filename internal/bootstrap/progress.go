package bootstrap

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Reporter prints human readable bootstrap progress.
type Reporter struct {
	out  io.Writer
	good func(a ...any) string
	bad  func(a ...any) string
	dim  func(a ...any) string
}

// NewReporter writes progress to w, colouring glyphs only when w is a terminal.
func NewReporter(w io.Writer) *Reporter {
	good := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgHiRed, color.Bold)
	dim := color.New(color.FgHiBlack)
	if !isTerminal(w) {
		good.DisableColor()
		bad.DisableColor()
		dim.DisableColor()
	}
	return &Reporter{
		out:  w,
		good: good.SprintFunc(),
		bad:  bad.SprintFunc(),
		dim:  dim.SprintFunc(),
	}
}

func (r *Reporter) Banner(name string) {
	fmt.Fprintf(r.out, "\n🦦 Setting up %s for the first time...\n", name)
}

// Step starts a progress line; exactly one of OK, Fail or Note finishes it
// on the same line, directly after the label.
func (r *Reporter) Step(label string) {
	fmt.Fprintf(r.out, "   %s... ", label)
}

func (r *Reporter) OK(detail string) {
	if detail == "" {
		fmt.Fprintln(r.out, r.good("✓"))
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", r.good("✓"), detail)
}

func (r *Reporter) Fail() {
	fmt.Fprintf(r.out, "%s\n\n", r.bad("✗"))
}

func (r *Reporter) Note(msg string) {
	fmt.Fprintln(r.out, r.dim(msg))
}

// Line prints a free-standing indented message.
func (r *Reporter) Line(msg string) {
	fmt.Fprintf(r.out, "   %s\n", msg)
}

// Ready announces a successful bootstrap.
func (r *Reporter) Ready(name string) {
	fmt.Fprintf(r.out, "   Ready! Starting %s...\n\n", name)
}

// Diagnose prints a fatal bootstrap error with its hints.
func (r *Reporter) Diagnose(err *Error) {
	fmt.Fprintf(r.out, "   %s\n", err.Error())
	for _, hint := range err.Hints {
		fmt.Fprintf(r.out, "   %s\n", hint)
	}
	fmt.Fprintln(r.out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
