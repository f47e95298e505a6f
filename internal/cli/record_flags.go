package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/record"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"

	flag "github.com/spf13/pflag"
)

// addRecordFlags registers the flags that set payload fields.
func addRecordFlags(fs *flag.FlagSet) {
	fs.String("system", "", "Business system")
	fs.String("sub-module", "", "Sub-module of the system (free text for "+record.OtherOption+")")
	fs.String("questioner", "", "Employee who asked")
	fs.String("difficulty", "MID", "Difficulty (HIGH|MID|LOW)")
	fs.String("priority", "MID", "Priority (HIGH|MID|LOW)")
	fs.String("date", "", "Question date, YYYY-MM-DD[THH:MM] (default now)")
	fs.String("question-type", "", "How the question arrived")
	fs.String("question-type-other", "", "Free-text question type (with --question-type="+record.OtherOption+")")
	fs.Bool("done", false, "Mark the work item completed")
	fs.String("closed", "", "Closing date, YYYY-MM-DD[THH:MM] (default now with --done)")
	fs.Int("minutes", 0, "Minutes spent (with --done)")
	fs.String("note", "", "Free-text note")
}

// recordInput applies changed flags onto a payload, checking picked values
// against the form options.
type recordInput struct {
	fs   *flag.FlagSet
	opts refdata.FormOptions
	loc  *time.Location
	now  time.Time
}

func (in *recordInput) str(name string) (string, bool) {
	if !in.fs.Changed(name) {
		return "", false
	}

	v, _ := in.fs.GetString(name)

	return strings.TrimSpace(v), true
}

func (in *recordInput) apply(p *record.Payload) error {
	err := in.applyPicks(p)
	if err != nil {
		return err
	}

	for _, name := range []string{"difficulty", "priority"} {
		v, ok := in.str(name)
		if !ok {
			continue
		}

		level := record.ParseLevel(v)
		if !level.Known() {
			return fmt.Errorf("%w: --%s: %w: %q", errInvalidFlag, name, record.ErrInvalidLevel, v)
		}

		if name == "difficulty" {
			p.Difficulty = level
		} else {
			p.Priority = level
		}
	}

	if v, ok := in.str("date"); ok {
		p.QuestionDate, err = in.inputTime("date", v)
		if err != nil {
			return err
		}
	}

	return in.applyCompletion(p)
}

// applyPicks sets the fields chosen from reference data.
func (in *recordInput) applyPicks(p *record.Payload) error {
	system, systemChanged := in.str("system")
	if systemChanged {
		if !slices.Contains(in.opts.SystemNames(), system) {
			return fmt.Errorf("%w: --system: unknown system %q (see kpi options)", errInvalidFlag, system)
		}

		p.System = system
	}

	sub, subChanged := in.str("sub-module")
	if subChanged {
		p.SubModule = sub
	}

	if (systemChanged || subChanged) && p.System != record.OtherOption {
		choices := in.opts.SubModulesOf(p.System)
		if len(choices) > 0 && !slices.Contains(choices, p.SubModule) {
			return fmt.Errorf("%w: --sub-module: %q is not a sub-module of %s (want one of %s)",
				errInvalidFlag, p.SubModule, p.System, strings.Join(choices, ", "))
		}
	}

	if v, ok := in.str("questioner"); ok {
		if !slices.Contains(in.opts.EmployeeNames(), v) {
			return fmt.Errorf("%w: --questioner: unknown employee %q (see kpi options)", errInvalidFlag, v)
		}

		p.Questioner = v
	}

	choice, choiceChanged := in.str("question-type")
	text, textChanged := in.str("question-type-other")

	if choiceChanged || textChanged {
		cat, err := record.ResolveCategory(choice, text)
		if err != nil {
			return fmt.Errorf("%w: --question-type: %w", errInvalidFlag, err)
		}

		if !cat.Other && !slices.Contains(in.opts.QuestionTypeNames(), cat.Value) {
			return fmt.Errorf("%w: --question-type: unknown question type %q (see kpi options)", errInvalidFlag, cat.Value)
		}

		p.QuestionType = cat.String()
	}

	if v, ok := in.str("note"); ok {
		p.Note = v
	}

	return nil
}

// applyCompletion sets done state, closing date and minutes. Reopening a
// record clears both.
func (in *recordInput) applyCompletion(p *record.Payload) error {
	if in.fs.Lookup("pending") != nil && in.fs.Changed("pending") {
		pending, _ := in.fs.GetBool("pending")
		if pending {
			p.IsDone = false
			p.ClosedDate = ""
			p.Minutes = nil
		}
	}

	if in.fs.Changed("done") {
		p.IsDone, _ = in.fs.GetBool("done")
	}

	if v, ok := in.str("closed"); ok {
		closed, err := in.inputTime("closed", v)
		if err != nil {
			return err
		}

		p.ClosedDate = closed
	} else if in.fs.Changed("done") && p.IsDone && p.ClosedDate == "" {
		p.ClosedDate = in.now.In(in.loc).Format(record.InputLayout)
	}

	if in.fs.Changed("minutes") {
		minutes, _ := in.fs.GetInt("minutes")
		p.Minutes = &minutes
	}

	return nil
}

// inputTime normalises a date flag to record.InputLayout in the configured
// zone. A bare day means midnight.
func (in *recordInput) inputTime(name, v string) (string, error) {
	for _, layout := range []string{record.InputLayout, "2006-01-02 15:04", time.DateOnly} {
		t, err := time.ParseInLocation(layout, v, in.loc)
		if err == nil {
			return t.Format(record.InputLayout), nil
		}
	}

	return "", fmt.Errorf("%w: --%s: %q (want YYYY-MM-DD or YYYY-MM-DDTHH:MM)", errInvalidFlag, name, v)
}
