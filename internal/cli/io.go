package cli

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// IO handles command input and output. Warnings are printed to stderr
// both before the first line of output and at the end, so they survive
// truncation by head or tail.
type IO struct {
	in       *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	style    *lipgloss.Renderer
	warnings []string
	started  bool
}

// NewIO creates a new IO instance. in may be nil.
func NewIO(in io.Reader, out, errOut io.Writer) *IO {
	o := &IO{out: out, errOut: errOut, style: lipgloss.NewRenderer(out)}
	if in != nil {
		o.in = bufio.NewReader(in)
	}

	return o
}

// Warn records a warning.
//
// Parameters:
//   - issue: what went wrong
//   - action: what the user should do about it
//
// Any warning makes the command exit with code 1 even when it produced
// output.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, fmt.Sprintf("%s: %s", issue, action))
}

// Println writes to stdout. On first call, any collected warnings
// are printed to stderr first.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout. On first call, any collected
// warnings are printed to stderr first.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Style returns the lipgloss renderer bound to stdout. Styles rendered
// through it drop colors when stdout is not a terminal.
func (o *IO) Style() *lipgloss.Renderer {
	return o.style
}

// Finish prints warnings to stderr and returns exit code.
// Returns 1 if any warnings, 0 otherwise.
func (o *IO) Finish() int {
	o.flushWarningsStart()

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) flushWarningsStart() {
	if !o.started && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, "warning:", w)
		}

		o.started = true
	}
}
