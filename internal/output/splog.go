// Package output is the "with_output_stream" sink of §4.4: progress lines
// go to stdout, diagnostics to stderr, colorized when the terminal supports
// it. Modeled on the teacher's Splog.
package output

import (
	"fmt"
	"io"
	"os"
)

// Splog is a small writer-backed logger split into a progress stream and a
// diagnostic stream, per §6: "Diagnostic messages go to the standard error
// stream; progress lines to the standard output stream."
type Splog struct {
	out io.Writer
	err io.Writer
}

// New returns a Splog writing progress to stdout and diagnostics to stderr.
func New() *Splog {
	return &Splog{out: os.Stdout, err: os.Stderr}
}

// NewWithWriters returns a Splog writing to the given streams, for tests.
func NewWithWriters(out, err io.Writer) *Splog {
	return &Splog{out: out, err: err}
}

// Info writes a progress line.
func (s *Splog) Info(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

// Diag writes a diagnostic line.
func (s *Splog) Diag(format string, args ...interface{}) {
	fmt.Fprintf(s.err, format+"\n", args...)
}

// Writer exposes the progress stream for callers that want to pass it
// directly as a transaction's output sink.
func (s *Splog) Writer() io.Writer { return s.out }

// Newline writes a blank progress line.
func (s *Splog) Newline() {
	fmt.Fprintln(s.out)
}
