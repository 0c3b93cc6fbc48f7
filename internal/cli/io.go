package cli

import (
	"fmt"
	"io"
)

// IO handles command output. Results go to stdout, diagnostics to stderr.
// Quiet suppresses informational chatter but never results or errors.
type IO struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	quiet  bool
}

// NewIO creates a new IO instance.
func NewIO(in io.Reader, out, errOut io.Writer, quiet bool) *IO {
	return &IO{in: in, out: out, errOut: errOut, quiet: quiet}
}

// Println writes a result line to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted result output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// Infoln writes an informational line to stdout unless quiet.
func (o *IO) Infoln(a ...any) {
	if o.quiet {
		return
	}

	_, _ = fmt.Fprintln(o.out, a...)
}

// ErrPrintln writes a line to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}
