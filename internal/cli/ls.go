package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/aggregate"
	"github.com/calvinalkan/kpi-tracker/internal/filter"
	"github.com/calvinalkan/kpi-tracker/internal/record"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"
)

const defaultLimit = 100

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	addFilterFlags(fs)
	fs.String("range", "", "Quick date range (today|week|month|all)")
	fs.String("sort", string(record.FieldQuestionDate), "Sort by field (e.g. questionDate, system, minutes)")
	fs.Bool("asc", false, "Sort ascending (default descending)")
	fs.Int("limit", defaultLimit, "Maximum records to show (0 = all)")
	fs.Bool("json", false, "Print records as JSON")

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List work items",
		Long: `List work items, newest question date first. Admins see every user's
work items and may filter them with --person; other users see their own.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execLs(ctx, o, a, fs)
		},
	}
}

// addFilterFlags registers the criteria flags shared by ls and dashboard.
func addFilterFlags(fs *flag.FlagSet) {
	fs.String("person", "", "Only work items of this handler (admins)")
	fs.String("system", "", "Only this system")
	fs.String("sub-module", "", "Sub-module contains text")
	fs.String("questioner", "", "Only this questioner")
	fs.String("question-type", "", "Only this question type")
	fs.String("difficulty", "", "Only this difficulty (HIGH|MID|LOW)")
	fs.String("priority", "", "Only this priority (HIGH|MID|LOW)")
	fs.Bool("done", false, "Only completed work items")
	fs.Bool("pending", false, "Only open work items")
	fs.String("from", "", "Question date on or after day (YYYY-MM-DD)")
	fs.String("to", "", "Question date on or before day (YYYY-MM-DD)")
}

var errDoneAndPending = errors.New("--done and --pending cannot be used together")

// criteriaFrom builds filter criteria from the flags of addFilterFlags.
func criteriaFrom(fs *flag.FlagSet, u refdata.User, now time.Time, loc *time.Location) (filter.Criteria, error) {
	var c filter.Criteria

	c.Person, _ = fs.GetString("person")
	if c.Person != "" && !u.IsAdmin {
		return filter.Criteria{}, fmt.Errorf("--person: %w", errAdminOnly)
	}

	c.System, _ = fs.GetString("system")
	c.SubModule, _ = fs.GetString("sub-module")
	c.Questioner, _ = fs.GetString("questioner")
	c.QuestionType, _ = fs.GetString("question-type")

	for _, name := range []string{"difficulty", "priority"} {
		v, _ := fs.GetString(name)
		if v == "" {
			continue
		}

		level := record.ParseLevel(v)
		if !level.Known() {
			return filter.Criteria{}, fmt.Errorf("%w: --%s: %w: %q", errInvalidFlag, name, record.ErrInvalidLevel, v)
		}

		if name == "difficulty" {
			c.Difficulty = level
		} else {
			c.Priority = level
		}
	}

	done, _ := fs.GetBool("done")
	pending, _ := fs.GetBool("pending")

	switch {
	case done && pending:
		return filter.Criteria{}, errDoneAndPending
	case done:
		c.Done = filter.Yes
	case pending:
		c.Done = filter.No
	}

	if fs.Lookup("range") != nil {
		if name, _ := fs.GetString("range"); name != "" {
			if fs.Changed("from") || fs.Changed("to") {
				return filter.Criteria{}, fmt.Errorf("%w: --range cannot be combined with --from/--to", errInvalidFlag)
			}

			var err error

			c.From, c.To, err = filter.Preset(name, now.In(loc))
			if err != nil {
				return filter.Criteria{}, fmt.Errorf("%w: --range: %w", errInvalidFlag, err)
			}

			return c, nil
		}
	}

	var err error

	from, _ := fs.GetString("from")

	c.From, err = filter.ParseDay(from, loc)
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("%w: --from: %w", errInvalidFlag, err)
	}

	to, _ := fs.GetString("to")

	c.To, err = filter.ParseDay(to, loc)
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("%w: --to: %w", errInvalidFlag, err)
	}

	return c, nil
}

func execLs(ctx context.Context, o *IO, a *app, fs *flag.FlagSet) error {
	sortName, _ := fs.GetString("sort")

	field, err := record.ParseField(sortName)
	if err != nil {
		return fmt.Errorf("%w: --sort: %w", errInvalidFlag, err)
	}

	limit, _ := fs.GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("%w: --limit must be non-negative", errInvalidFlag)
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

	criteria, err := criteriaFrom(fs, u, a.now(), a.cfg.Location)
	if err != nil {
		return err
	}

	records, err := a.visibleRecords(ctx, st, u)
	if err != nil {
		return err
	}

	matched := filter.Apply(records, criteria)

	// Apply may return its input; sort a copy.
	sorted := append([]record.Record(nil), matched...)

	dir := aggregate.Desc
	if asc, _ := fs.GetBool("asc"); asc {
		dir = aggregate.Asc
	}

	aggregate.SortRecords(sorted, field, dir)

	shown := sorted
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	if asJSON, _ := fs.GetBool("json"); asJSON {
		return printRecordsJSON(o, shown)
	}

	if len(shown) == 0 {
		o.Println("No work items")

		return nil
	}

	printRecords(o, shown, u.IsAdmin)

	if len(shown) < len(sorted) {
		o.Println(fmt.Sprintf("Showing %s of %s work items (use --limit)",
			humanize.Comma(int64(len(shown))), humanize.Comma(int64(len(sorted)))))
	}

	return nil
}

func printRecords(o *IO, records []record.Record, withHandler bool) {
	headers := []string{"ROW", "ID"}
	if withHandler {
		headers = append(headers, "HANDLER")
	}

	headers = append(headers, "SYSTEM", "SUB-MODULE", "QUESTIONER", "DIFF", "PRIO",
		"DATE", "TYPE", "DONE", "MIN", "CREATED")

	rows := make([][]string, 0, len(records))

	for i := range records {
		r := &records[i]

		row := []string{strconv.Itoa(r.RowIndex), r.Value(record.FieldID)}
		if withHandler {
			row = append(row, r.HandlerName)
		}

		row = append(row,
			orDash(r.System),
			orDash(r.SubModule),
			orDash(r.Questioner),
			orDash(r.Difficulty.String()),
			orDash(r.Priority.String()),
			displayTime(r.QuestionDate, r.QuestionDateRaw),
			orDash(r.QuestionType.String()),
			doneMark(r.IsDone),
			minutesCell(r),
			displayTime(r.CreatedAt, ""),
		)

		rows = append(rows, row)
	}

	printTable(o, headers, rows)
}

// printRecordsJSON emits one object per record keyed by field name.
func printRecordsJSON(o *IO, records []record.Record) error {
	out := make([]map[string]string, 0, len(records))

	for i := range records {
		obj := make(map[string]string, len(record.Fields))
		for _, f := range record.Fields {
			obj[string(f)] = records[i].Value(f)
		}

		out = append(out, obj)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	o.Println(string(data))

	return nil
}

const displayLayout = "2006-01-02 15:04"

func displayTime(t time.Time, raw string) string {
	if !t.IsZero() {
		return t.Format(displayLayout)
	}

	return orDash(raw)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func doneMark(done bool) string {
	if done {
		return "yes"
	}

	return "no"
}

func minutesCell(r *record.Record) string {
	if !r.IsDone {
		return "-"
	}

	return strconv.Itoa(r.Minutes)
}
