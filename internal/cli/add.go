package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/calvinalkan/kpi-tracker/internal/record"

	flag "github.com/spf13/pflag"
)

// AddCmd returns the add command.
func AddCmd(a *app) *Command {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	addRecordFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "add [flags]",
		Short: "Log a work item",
		Long: `Log a work item handled by the logged-in user.

--system, --questioner and --question-type are required. Choices come from
the reference sheets (see kpi options). Picking ` + record.OtherOption + ` as system makes
--sub-module free text; picking it as question type requires
--question-type-other.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execAdd(ctx, o, a, fs)
		},
	}
}

var errMissingRequired = errors.New("missing required flags")

func execAdd(ctx context.Context, o *IO, a *app, fs *flag.FlagSet) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	var missing []string

	for _, name := range []string{"system", "questioner", "question-type"} {
		if !fs.Changed(name) {
			missing = append(missing, "--"+name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", errMissingRequired, missing)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	opts, err := st.FormOptions(ctx)
	if err != nil {
		return fmt.Errorf("fetching form options: %w", err)
	}

	now := a.now()
	p := record.Payload{
		Handler:      u.Name,
		Difficulty:   record.LevelMid,
		Priority:     record.LevelMid,
		QuestionDate: now.In(a.cfg.Location).Format(record.InputLayout),
	}

	in := recordInput{fs: fs, opts: opts, loc: a.cfg.Location, now: now}

	err = in.apply(&p)
	if err != nil {
		return err
	}

	err = st.AppendRecord(ctx, p)
	if err != nil {
		return err
	}

	o.Println(fmt.Sprintf("Logged %s for %s at %s", describe(&p), p.Questioner, p.QuestionDate))

	return nil
}

func describe(p *record.Payload) string {
	if p.SubModule == "" {
		return p.System
	}

	return p.System + "/" + p.SubModule
}
