// Package diag implements evscript's three-severity diagnostic model
// (spec §7): warn (printed, uncounted), error (printed, counted,
// escalates to fatal at a checkpoint), and fatal (printed, process
// exits 1). No example repo in the retrieved pack does colourised
// diagnostics; the teacher and its siblings report errors with plain
// fmt.Errorf/fmt.Fprintln. The ANSI escapes here are therefore
// hand-written rather than pulled from a palette library, in the
// teacher's terse single-purpose-function style; TTY detection uses
// golang.org/x/term, the direct ecosystem sibling of golang.org/x/sys
// (already part of the module's dependency graph) and the standard
// non-stdlib way to test a file descriptor for terminal-ness.
package diag

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	ansiReset         = "\x1b[0m"
	ansiBrightMagenta = "\x1b[95m"
	ansiBrightRed     = "\x1b[91m"
)

// Fatal is the error type returned (and, at the CLI boundary,
// reported and exit(1)'d) for unrecoverable inconsistencies: out of
// pool, undeclared variable, missing primitive, and the other causes
// enumerated in spec §7.
type Fatal struct {
	msg string
}

func (f *Fatal) Error() string { return f.msg }

// Fatalf builds a Fatal diagnostic.
func Fatalf(format string, args ...any) error {
	return &Fatal{msg: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err is (or wraps) a Fatal diagnostic.
func IsFatal(err error) bool {
	var f *Fatal
	return errors.As(err, &f)
}

// Reporter prints warn/error/fatal diagnostics to an output stream,
// colourising severity prefixes when that stream is a terminal, and
// tracks the error count for the error-escalation checkpoint policy.
type Reporter struct {
	w         io.Writer
	colour    bool
	errors    int
}

// NewReporter returns a Reporter writing to w, auto-detecting colour
// support when w is backed by an *os.File connected to a terminal.
func NewReporter(w io.Writer) *Reporter {
	colour := false
	if f, ok := w.(*os.File); ok {
		colour = term.IsTerminal(int(f.Fd()))
	}
	return &Reporter{w: w, colour: colour}
}

func (r *Reporter) prefix(label, ansi string) string {
	if !r.colour {
		return label + ":"
	}
	return ansi + label + ":" + ansiReset
}

// Warn reports a non-fatal observation. Does not affect ErrorCount.
func (r *Reporter) Warn(format string, args ...any) {
	fmt.Fprintf(r.w, "%s %s\n", r.prefix("warn", ansiBrightMagenta), fmt.Sprintf(format, args...))
}

// Error reports a counted error and continues compilation.
func (r *Reporter) Error(format string, args ...any) {
	r.errors++
	fmt.Fprintf(r.w, "%s %s\n", r.prefix("error", ansiBrightRed), fmt.Sprintf(format, args...))
}

// Fatal reports a fatal diagnostic. The caller is responsible for
// terminating the process with exit code 1 (the CLI boundary does
// this; library callers may prefer to propagate the error instead).
func (r *Reporter) Fatal(err error) {
	fmt.Fprintf(r.w, "%s %s\n", r.prefix("fatal", ansiBrightRed), err.Error())
}

// ErrorCount returns the number of Error calls so far.
func (r *Reporter) ErrorCount() int { return r.errors }

// Checkpoint escalates accumulated errors to a fatal diagnostic if
// any were reported, per spec §7's "errors... at a checkpoint,
// escalate to fatal" policy.
func (r *Reporter) Checkpoint(context string) error {
	if r.errors == 0 {
		return nil
	}
	return Fatalf("%d error(s) encountered during %s", r.errors, context)
}
