package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/calvinalkan/kpi-tracker/internal/record"
	"github.com/calvinalkan/kpi-tracker/internal/store"

	flag "github.com/spf13/pflag"
)

// UpdateCmd returns the update command.
func UpdateCmd(a *app) *Command {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	addRecordFlags(fs)
	fs.Bool("pending", false, "Reopen the work item (clears closing date and minutes)")

	return &Command{
		Flags: fs,
		Usage: "update <row> [flags]",
		Short: "Change fields of a work item",
		Long: `Change fields of the work item at the given row (see the ROW column of
kpi ls). Only the given flags change; id, handler and creation time are
kept. Non-admins can only update their own work items.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execUpdate(ctx, o, a, fs, args)
		},
	}
}

var errConflictingDone = errors.New("--done and --pending cannot be used together")

func execUpdate(ctx context.Context, o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: row", errMissingArg)
	}

	rowIndex, err := strconv.Atoi(args[0])
	if err != nil || rowIndex < 2 {
		return fmt.Errorf("%w: row %q (want a row number of kpi ls)", errInvalidFlag, args[0])
	}

	if fs.Changed("done") && fs.Changed("pending") {
		return errConflictingDone
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	u, err := a.freshUser(ctx, st)
	if err != nil {
		return err
	}

	records, err := a.visibleRecords(ctx, st, u)
	if err != nil {
		return err
	}

	var current *record.Record

	for i := range records {
		if records[i].RowIndex == rowIndex {
			current = &records[i]

			break
		}
	}

	if current == nil {
		return fmt.Errorf("%w: %d", store.ErrRowNotFound, rowIndex)
	}

	opts, err := st.FormOptions(ctx)
	if err != nil {
		return fmt.Errorf("fetching form options: %w", err)
	}

	p := record.PayloadFrom(current)
	in := recordInput{fs: fs, opts: opts, loc: a.cfg.Location, now: a.now()}

	err = in.apply(&p)
	if err != nil {
		return err
	}

	err = st.UpdateRecord(ctx, rowIndex, p)
	if err != nil {
		return err
	}

	o.Println(fmt.Sprintf("Updated row %d (%s)", rowIndex, describe(&p)))

	return nil
}
