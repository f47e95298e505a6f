package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
)

// ask prompts for one line of input. On a terminal the prompt supports line
// editing and tab completion over choices; otherwise the answer is read from
// the command input with the label on stderr.
func (a *app) ask(o *IO, label string, choices []string) (string, error) {
	if isTerminal(a.in) {
		line := liner.NewLiner()
		defer line.Close()

		line.SetCtrlCAborts(true)
		line.SetCompleter(func(prefix string) []string {
			var out []string

			for _, c := range choices {
				if strings.HasPrefix(c, prefix) {
					out = append(out, c)
				}
			}

			return out
		})

		answer, err := line.Prompt(label)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return "", errAborted
			}

			return "", fmt.Errorf("reading input: %w", err)
		}

		return strings.TrimSpace(answer), nil
	}

	_, _ = io.WriteString(o.errOut, label)

	return o.ReadLine()
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func (a *app) confirm(o *IO, question string) (bool, error) {
	answer, err := a.ask(o, question+" (yes/no): ", []string{"yes", "no"})
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ReadLine reads one line of input without its line ending.
func (o *IO) ReadLine() (string, error) {
	if o.in == nil {
		return "", errNoInput
	}

	line, err := o.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", errNoInput
		}

		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}
